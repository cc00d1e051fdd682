//go:build (amd64 && linux) || (amd64 && darwin)

package codegen

import (
	"dispatchbench/jit/asm"
	"dispatchbench/vm"
)

// Template is a precompiled native routine body for one opcode, addressed
// against RDI = *vm.NativeState per the layout this package fixes. Code
// ends in a bare "ret" when used standalone (engine/calljit calls it as a
// function); engine/inlinejit strips that trailing byte and splices the
// body into a larger generated block instead.
//
// Bounds checking (stack overflow/underflow) is deliberately not part of
// these bodies: the engines that use them check SP against the operation's
// stack effect first — engine/calljit in Go before entering native code,
// engine/inlinejit in a compare emitted ahead of the body from the MinSP/
// PushesNet metadata below — and hand the instruction to the interpreter
// when the check fails. That keeps every template body branch-free.
type Template struct {
	Opcode vm.Opcode
	Code   []byte

	// MinSP is the lowest stack pointer value (before the operation) the
	// caller must guarantee for this template to be safe to run: -1 if
	// the instruction reads nothing off the stack, 0 if it reads one
	// slot, 1 if it reads two. PushesNet is the net change in SP this
	// instruction makes when it runs to completion (used by the caller
	// to check there's room before a push).
	MinSP     int
	PushesNet int
}

// Templates holds one entry per opcode this package can compile natively.
// Opcodes absent here (Break, Print, Rand, Swap, Over, Rot, Pick, Mul, Mod,
// Div, SQRT, SHL, SHR, Greater, Get, Set, JE, JNE) have no native form: both JIT engines route
// them through vm.Dispatch instead — per instruction in engine/calljit,
// and by leaving the instruction's address out of the compiled buffer in
// engine/inlinejit, whose run loop interprets unmapped addresses.
var Templates = map[vm.Opcode]*Template{}

func register(t *Template) { Templates[t.Opcode] = t }

func init() {
	register(&Template{
		Opcode: vm.Nop,
		Code:   asm.Ret(),
		MinSP:  -1,
	})

	register(&Template{
		Opcode: vm.Halt,
		Code: concat(
			asm.StoreMemRDIImm32(int32(OffsetState), nativeStateHalted),
			asm.Ret(),
		),
		MinSP: -1,
	})

	// Push takes its immediate in ESI (System V's second integer
	// argument register), since one compiled routine serves every Push
	// in the program regardless of what it pushes.
	register(&Template{
		Opcode: vm.Push,
		Code: concat(
			asm.LoadMemRDI(asm.ECX, int32(OffsetSP)),
			asm.IncReg(asm.ECX),
			asm.StoreMemRDI(asm.ECX, int32(OffsetSP)),
			asm.StoreMemSIB(asm.ESI, asm.ECX, int32(OffsetStack)),
			asm.Ret(),
		),
		MinSP:     -1,
		PushesNet: 1,
	})

	register(&Template{
		Opcode: vm.Inc,
		Code: concat(
			asm.LoadMemRDI(asm.ECX, int32(OffsetSP)),
			asm.LoadMemSIB(asm.EAX, asm.ECX, int32(OffsetStack)),
			asm.IncReg(asm.EAX),
			asm.StoreMemSIB(asm.EAX, asm.ECX, int32(OffsetStack)),
			asm.Ret(),
		),
		MinSP: 0,
	})

	register(&Template{
		Opcode: vm.Dec,
		Code: concat(
			asm.LoadMemRDI(asm.ECX, int32(OffsetSP)),
			asm.LoadMemSIB(asm.EAX, asm.ECX, int32(OffsetStack)),
			asm.DecReg(asm.EAX),
			asm.StoreMemSIB(asm.EAX, asm.ECX, int32(OffsetStack)),
			asm.Ret(),
		),
		MinSP: 0,
	})

	register(binaryTemplate(vm.Add, asm.AddRegReg))
	register(binaryTemplate(vm.Sub, asm.SubRegReg))
	register(binaryTemplate(vm.And, asm.AndRegReg))
	register(binaryTemplate(vm.Or, asm.OrRegReg))
	register(binaryTemplate(vm.Xor, asm.XorRegReg))

	register(&Template{
		Opcode: vm.Dup,
		Code: concat(
			asm.LoadMemRDI(asm.ECX, int32(OffsetSP)),
			asm.LoadMemSIB(asm.EAX, asm.ECX, int32(OffsetStack)),
			asm.IncReg(asm.ECX),
			asm.StoreMemRDI(asm.ECX, int32(OffsetSP)),
			asm.StoreMemSIB(asm.EAX, asm.ECX, int32(OffsetStack)),
			asm.Ret(),
		),
		MinSP:     0,
		PushesNet: 1,
	})

	register(&Template{
		Opcode: vm.Drop,
		Code: concat(
			asm.LoadMemRDI(asm.ECX, int32(OffsetSP)),
			asm.DecReg(asm.ECX),
			asm.StoreMemRDI(asm.ECX, int32(OffsetSP)),
			asm.Ret(),
		),
		MinSP:     0,
		PushesNet: -1,
	})

	// Jump takes its displacement in ESI, same convention as Push.
	register(&Template{
		Opcode: vm.Jump,
		Code: concat(
			asm.AddMemRDIReg(asm.ESI, int32(OffsetPC)),
			asm.Ret(),
		),
		MinSP: -1,
	})
}

// binaryTemplate builds the Add/Sub/And/Or/Xor shape: a = pop (top), b =
// pop (second), push op(a, b) — op computed in-register as op(eax, edx)
// with eax holding a and edx holding b, matching vm.opBinaryArith's
// argument order.
func binaryTemplate(op vm.Opcode, emit func(dst, src asm.Reg) []byte) *Template {
	return &Template{
		Opcode: op,
		Code: concat(
			asm.LoadMemRDI(asm.ECX, int32(OffsetSP)),
			asm.LoadMemSIB(asm.EAX, asm.ECX, int32(OffsetStack)), // a
			asm.DecReg(asm.ECX),
			asm.LoadMemSIB(asm.EDX, asm.ECX, int32(OffsetStack)), // b
			emit(asm.EAX, asm.EDX),
			asm.StoreMemSIB(asm.EAX, asm.ECX, int32(OffsetStack)),
			asm.StoreMemRDI(asm.ECX, int32(OffsetSP)),
			asm.Ret(),
		),
		MinSP:     1,
		PushesNet: -1,
	}
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
