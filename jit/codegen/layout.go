//go:build (amd64 && linux) || (amd64 && darwin)

// Package codegen holds precompiled x86-64 machine code for a core subset
// of opcodes, plus the vm.NativeState offsets that code is built against;
// the JIT engines place these bodies into a buffer (jit/codebuf) at run
// time. The bodies contain no relocations.
//
// Systems of this kind usually obtain their routine bodies by scanning
// the host binary for prologue/epilogue marker bytes bracketing each
// opcode's compiled function at startup. Go gives no portable, stable way
// to read a running function's compiled bytes back out (no
// symbol-to-bytes API, and the bytes a build produces aren't guaranteed
// stable across toolchain versions) — so instead of runtime
// self-inspection, these templates are authored ahead of time as Go byte
// literals, against the fixed ABI this package defines over
// vm.NativeState. Every generated routine follows the System V AMD64
// convention: RDI holds a pointer to a vm.NativeState for the instruction
// being compiled.
package codegen

import (
	"unsafe"

	"dispatchbench/vm"
)

var layoutProbe vm.NativeState

// Byte offsets into vm.NativeState, fixed once at package init and shared
// by every template below.
var (
	OffsetPC            = int(unsafe.Offsetof(layoutProbe.PC))
	OffsetState         = int(unsafe.Offsetof(layoutProbe.State))
	OffsetSteps         = int(unsafe.Offsetof(layoutProbe.Steps))
	OffsetSP            = int(unsafe.Offsetof(layoutProbe.SP))
	OffsetStack         = int(unsafe.Offsetof(layoutProbe.Stack))
	OffsetStepLimit     = int(unsafe.Offsetof(layoutProbe.StepLimit))
	OffsetJumpTableAddr = int(unsafe.Offsetof(layoutProbe.JumpTableAddr))
)

// nativeStateHalted mirrors vm.StateHalted as a plain int32, for the Halt
// template to assign directly (raw machine code can't reference a Go typed
// constant).
var nativeStateHalted = int32(vm.StateHalted)
