//go:build (amd64 && linux) || (amd64 && darwin)

// Package inlinejit implements inline JIT dispatch. Rather than call out
// to a shared routine per instruction (engine/calljit), this engine
// copies every instruction's routine body directly into one generated
// buffer, in program order, and chains them through an inline jump table
// rather than returning to Go between instructions. The routine bodies
// come from jit/codegen's hand-authored byte templates (see its doc
// comment for why they are authored ahead of time rather than harvested
// from compiled functions at startup).
//
// Compilation walks the program from address 0, following each
// instruction's own length. Instructions whose opcode has a native
// template become a compiled block; the rest (Print, the conditional
// branches, division, and every other untemplated opcode) get no block,
// and generated code reaching one of those addresses returns to Go, which
// interprets that one instruction and re-enters native code at the next
// compiled block. Addresses the walk never visits (the second word of a
// Push/Jump/JE/JNE) are likewise unmapped, so a stray jump into immediate
// data is interpreted from scratch — exactly what the switch engine does
// with it — instead of decoding the walk's idea of the instruction stream.
//
// The same return-to-Go path carries every other irregular exit: a block
// whose stack precondition fails returns with nothing changed and the
// interpreter executes the faulting instruction (reproducing its exact
// partial-pop semantics), and a pc that leaves program memory entirely
// returns so the interpreter can raise the synthetic Break the decoder
// defines for it. Generated code never needs to know any of those rules;
// it only ever declines.
package inlinejit

import (
	"fmt"
	"runtime"
	"unsafe"

	"dispatchbench/engine"
	"dispatchbench/jit/asm"
	"dispatchbench/jit/codebuf"
	"dispatchbench/jit/codegen"
	"dispatchbench/jit/trampoline"
	"dispatchbench/vm"
)

func init() {
	engine.Register("inlinejit", func() engine.Engine { return New() })
}

type Engine struct{}

func New() *Engine { return &Engine{} }

func (e *Engine) Name() string { return "inlinejit" }

func (e *Engine) Run(cpu *vm.CPU, stepLimit uint64) error {
	code, offsets, exitOff := compileProgram(cpu.Pmem)

	buf, err := codebuf.New(len(code))
	if err != nil {
		return fmt.Errorf("inlinejit: %w", err)
	}
	defer buf.Close()
	buf.WriteAt(0, code)
	if err := buf.MakeExecutable(); err != nil {
		return fmt.Errorf("inlinejit: %w", err)
	}

	base := buf.Addr()
	exitAddr := uint64(base) + uint64(exitOff)
	table := make([]uint64, vm.ProgramSize)
	for addr, off := range offsets {
		if off < 0 {
			// No block at this address: immediate data, an untemplated
			// opcode, or anything past the last real instruction. Native
			// control landing here hands back to the interpreter below.
			table[addr] = exitAddr
			continue
		}
		table[addr] = uint64(base) + uint64(off)
	}
	tableAddr := uint64(uintptr(unsafe.Pointer(&table[0])))

	for cpu.CanStep(stepLimit) {
		if cpu.PC < 0 || cpu.PC >= vm.ProgramSize || offsets[cpu.PC] < 0 {
			stepInterpret(cpu)
			continue
		}
		stepsBefore := cpu.Steps
		ns := cpu.ExportWithLimit(stepLimit)
		ns.JumpTableAddr = tableAddr
		trampoline.CallEntry(base+uintptr(offsets[cpu.PC]), &ns)
		cpu.Import(ns)
		if cpu.CanStep(stepLimit) && cpu.Steps == stepsBefore {
			// The entry block completed nothing and the run isn't over:
			// its stack precondition failed. Interpreting the instruction
			// applies the exact fault semantics native code declines to.
			stepInterpret(cpu)
		}
	}
	runtime.KeepAlive(table)
	return nil
}

// stepInterpret executes exactly one instruction the way the switch engine
// would: decode at pc, dispatch, advance.
func stepInterpret(cpu *vm.CPU) {
	inst := vm.Decode(cpu.Pmem, cpu.PC)
	vm.Dispatch(cpu, inst)
	cpu.PC += inst.Length
	cpu.Steps++
}

// Fixed block layout (the contract compileProgram keeps): every block is
// [stepLimitCheck][stateCheck][stack preconditions][opcode body]
// [pc+=length][steps++][pc bounds check][load next block from the jump
// table][indirect jump]. Every check jumps to one shared exit stub — a
// bare ret — appended after the last block; the run loop disambiguates
// why the native code came back from what the checks left behind (steps
// at the limit, state no longer Running, pc unmapped, or nothing changed
// at all, which can only mean a precondition bailed).
//
// offsets[addr] is the byte offset of addr's block in code, or -1 if addr
// has no block. exitOff is the offset of the shared exit stub, which
// doubles as the jump-table target for every unmapped address.
func compileProgram(mem *vm.ProgramMemory) (code []byte, offsets []int, exitOff int) {
	offsets = make([]int, vm.ProgramSize)
	for i := range offsets {
		offsets[i] = -1
	}

	var buf []byte
	var checks []int // offsets of jcc instructions, all patched to the exit stub

	for addr := 0; addr < vm.ProgramSize; {
		inst := vm.Decode(mem, addr)
		t, has := codegen.Templates[inst.Opcode]
		if !has {
			addr += inst.Length
			continue
		}
		offsets[addr] = len(buf)

		buf = append(buf, asm.LoadMemRDI64(asm.EAX, int32(codegen.OffsetStepLimit))...)
		buf = append(buf, asm.CmpMemRDI64Reg(int32(codegen.OffsetSteps), asm.EAX)...)
		checks = append(checks, len(buf))
		buf = append(buf, asm.JccRel32(asm.CondAE)...)

		buf = append(buf, asm.CmpMemRDIImm32(int32(codegen.OffsetState), 0)...)
		checks = append(checks, len(buf))
		buf = append(buf, asm.JccRel32(asm.CondNE)...)

		// Stack preconditions, from the template's own metadata. A
		// violated one exits with the instruction not yet started, and the
		// run loop interprets it instead.
		if t.MinSP >= 0 {
			buf = append(buf, asm.CmpMemRDIImm32(int32(codegen.OffsetSP), int32(t.MinSP))...)
			checks = append(checks, len(buf))
			buf = append(buf, asm.JccRel32(asm.CondL)...)
		}
		if t.PushesNet > 0 {
			buf = append(buf, asm.CmpMemRDIImm32(int32(codegen.OffsetSP), int32(vm.StackCapacity-t.PushesNet))...)
			checks = append(checks, len(buf))
			buf = append(buf, asm.JccRel32(asm.CondGE)...)
		}

		buf = append(buf, opcodeBody(inst)...)

		buf = append(buf, asm.AddMemRDIImm32(int32(codegen.OffsetPC), int32(inst.Length))...)
		buf = append(buf, asm.AddMemRDIImm8_64(int32(codegen.OffsetSteps), 1)...)
		buf = append(buf, asm.LoadMemRDI(asm.EAX, int32(codegen.OffsetPC))...)

		// A Jump is free to send pc anywhere a 32-bit signed displacement
		// reaches. table has exactly ProgramSize entries; indexing it from
		// generated code with no bounds check would read arbitrary memory
		// past it and jump to whatever garbage address that holds. Catch
		// both directions (negative pc reads back as a huge unsigned
		// value) with one unsigned compare before touching the table.
		buf = append(buf, asm.CmpRegImm32(asm.EAX, int32(vm.ProgramSize))...)
		checks = append(checks, len(buf))
		buf = append(buf, asm.JccRel32(asm.CondAE)...)

		buf = append(buf, asm.LoadMemRDI64(asm.EBX, int32(codegen.OffsetJumpTableAddr))...)
		buf = append(buf, asm.IndirectJmpMemSIB(asm.EBX, asm.EAX)...)

		addr += inst.Length
	}

	exitOff = len(buf)
	buf = append(buf, asm.Ret()...)

	for _, off := range checks {
		asm.PatchRel32(buf, off, 6, 0, uintptr(exitOff))
	}

	return buf, offsets, exitOff
}

// opcodeBody returns the straight-line bytes implementing inst's opcode,
// with any immediate baked in directly (there is no function call here to
// pass it through a register, unlike engine/calljit).
func opcodeBody(inst vm.DecodedInstruction) []byte {
	switch inst.Opcode {
	case vm.Push:
		return concat(
			asm.LoadMemRDI(asm.ECX, int32(codegen.OffsetSP)),
			asm.IncReg(asm.ECX),
			asm.StoreMemRDI(asm.ECX, int32(codegen.OffsetSP)),
			storeStackImm32(asm.ECX, inst.Immediate),
		)
	case vm.Jump:
		return asm.AddMemRDIImm32(int32(codegen.OffsetPC), inst.Immediate)
	default:
		t := codegen.Templates[inst.Opcode]
		return t.Code[:len(t.Code)-1] // strip the standalone template's ret
	}
}

// storeStackImm32 encodes "mov dword [rdi+index*4+OffsetStack], imm32" —
// codegen's asm package has no SIB+immediate form since nothing else needs
// one, so it's built directly here from the same opcode/ModRM/SIB shapes.
func storeStackImm32(index asm.Reg, imm int32) []byte {
	modrm := byte(0x80 | (0 << 3) | 0x04)
	sib := byte((2 << 6) | (byte(index) << 3) | 0x07)
	buf := []byte{0xC7, modrm, sib}
	buf = append(buf, le32(int32(codegen.OffsetStack))...)
	return append(buf, le32(imm)...)
}

func le32(v int32) []byte {
	buf := make([]byte, 4)
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
	buf[2] = byte(v >> 16)
	buf[3] = byte(v >> 24)
	return buf
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
