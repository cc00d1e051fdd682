//go:build (amd64 && linux) || (amd64 && darwin)

// Package trampoline bridges a plain Go call into the System V AMD64
// convention the generated code in jit/codegen and jit/asm is built
// against. A Go func value is not a reliable way to do this: since Go
// 1.17 the compiler calls Go functions through its own internal
// register-based ABI (ABIInternal), which does not put the first two
// arguments in RDI/RSI — casting a raw code address into a funcval and
// calling it reads whatever ABIInternal happened to leave in those
// registers instead of the actual arguments, corrupting memory on the
// first call.
//
// These two entry points are real assembly (trampoline_amd64.s),
// declared with Go's classic stack-argument calling convention (the
// default for a bare TEXT symbol, ABI0), which loads its arguments from
// the stack and can place them in RDI/RSI itself before jumping into
// generated code. This is the same shape go-interpreter/wagon uses to
// call into its own JIT output.
package trampoline

import "dispatchbench/vm"

// CallRoutine invokes the machine code at addr as a standalone semantic
// routine (engine/calljit's ABI): RDI = ns, RSI = imm.
func CallRoutine(addr uintptr, ns *vm.NativeState, imm int32)

// CallEntry invokes the machine code at addr as a whole compiled
// program's entry point (engine/inlinejit's ABI): RDI = ns only.
func CallEntry(addr uintptr, ns *vm.NativeState)
