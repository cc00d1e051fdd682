// Package threaded dispatches through a table of dispatch
// handles rather than a direct opcode-indexed call. A real threaded
// interpreter ends every handler with a jump straight to the address the
// table holds for the next instruction, resolved once per opcode rather
// than once per handler invocation. Go has no computed goto and no portable
// way to jump to an arbitrary label, so the "jump" here is a table lookup
// followed by an ordinary call — threaded dispatch degraded to a resolved
// jump table.
//
// Two variants are registered. "threaded" resolves the opcode-to-handle
// mapping on every fetch, same as the opcode-to-routine lookup the
// subroutine engine does. "threaded-cached" predecodes the program once and
// caches the resolved handle in DecodedInstruction.ServiceRoutineHandle, so
// the steady-state loop never touches the opcode-to-handle table at all —
// an inline cache, in miniature.
package threaded

import (
	"dispatchbench/engine"
	"dispatchbench/vm"
)

func init() {
	engine.Register("threaded", func() engine.Engine { return New() })
	engine.Register("threaded-cached", func() engine.Engine { return NewCached() })
}

// handle is the dispatch target a real threaded interpreter would store as
// a label address. Here it is just the opcode value again, but kept as a
// distinct type so the indirection through handleRoutines is explicit
// rather than reusing vm.Opcode as an array index directly.
type handle int

var opcodeToHandle [256]handle
var handleRoutines [256]vm.Routine

func init() {
	for op := 0; op < 256; op++ {
		opcodeToHandle[op] = handle(op)
		handleRoutines[op] = vm.RoutineFor(vm.Opcode(op))
	}
}

func runHandle(cpu *vm.CPU, h handle, inst vm.DecodedInstruction) {
	r := handleRoutines[h]
	if r == nil {
		vm.Dispatch(cpu, vm.DecodedInstruction{Opcode: vm.Break, Length: 1})
		return
	}
	r(cpu, inst)
}

type Engine struct{}

func New() *Engine { return &Engine{} }

func (e *Engine) Name() string { return "threaded" }

func (e *Engine) Run(cpu *vm.CPU, stepLimit uint64) error {
	for cpu.CanStep(stepLimit) {
		inst := vm.Decode(cpu.Pmem, cpu.PC)
		runHandle(cpu, opcodeToHandle[inst.Opcode], inst)
		cpu.PC += inst.Length
		cpu.Steps++
	}
	return nil
}

// CachedEngine is the predecoded-with-cached-handle variant: the
// opcode-to-handle resolution happens once per address, up front, instead
// of once per visit.
type CachedEngine struct{}

func NewCached() *CachedEngine { return &CachedEngine{} }

func (e *CachedEngine) Name() string { return "threaded-cached" }

func (e *CachedEngine) Run(cpu *vm.CPU, stepLimit uint64) error {
	decoded := make([]vm.DecodedInstruction, vm.ProgramSize)
	for addr := 0; addr < vm.ProgramSize; addr++ {
		inst := vm.Decode(cpu.Pmem, addr)
		inst.ServiceRoutineHandle = int(opcodeToHandle[inst.Opcode])
		decoded[addr] = inst
	}

	for cpu.CanStep(stepLimit) {
		inst := fetch(decoded, cpu.Pmem, cpu.PC)
		runHandle(cpu, handle(inst.ServiceRoutineHandle), inst)
		cpu.PC += inst.Length
		cpu.Steps++
	}
	return nil
}

// fetch returns the precomputed, handle-tagged instruction at pc, or decodes
// and tags one fresh when pc falls outside the precomputed table. A
// Jump/JE/JNE is free to send pc anywhere a 32-bit signed displacement
// reaches, not just inside program memory, and an out-of-range pc must
// fault to Break rather than panic on the index.
func fetch(decoded []vm.DecodedInstruction, pmem *vm.ProgramMemory, pc int) vm.DecodedInstruction {
	if pc >= 0 && pc < len(decoded) {
		return decoded[pc]
	}
	inst := vm.Decode(pmem, pc)
	inst.ServiceRoutineHandle = int(opcodeToHandle[inst.Opcode])
	return inst
}
