// Package predecoded runs a whole-program decode pass once before
// execution; the loop then indexes the resulting array by pc instead of
// calling vm.Decode on every fetch, but dispatches through the same
// tagged match as the switch engine.
package predecoded

import (
	"dispatchbench/engine"
	"dispatchbench/vm"
)

func init() {
	engine.Register("predecoded", func() engine.Engine { return New() })
}

type Engine struct{}

func New() *Engine { return &Engine{} }

func (e *Engine) Name() string { return "predecoded" }

func (e *Engine) Run(cpu *vm.CPU, stepLimit uint64) error {
	decoded := make([]vm.DecodedInstruction, vm.ProgramSize)
	for addr := 0; addr < vm.ProgramSize; addr++ {
		decoded[addr] = vm.Decode(cpu.Pmem, addr)
	}

	for cpu.CanStep(stepLimit) {
		inst := fetch(decoded, cpu.Pmem, cpu.PC)
		vm.Execute(cpu, inst)
		cpu.PC += inst.Length
		cpu.Steps++
	}
	return nil
}

// fetch returns the precomputed instruction at pc, or decodes it fresh when
// pc falls outside the precomputed table. A Jump/JE/JNE is free to send pc
// anywhere a 32-bit signed displacement reaches, not just inside program
// memory, and an out-of-range pc must fault to Break rather than panic.
func fetch(decoded []vm.DecodedInstruction, pmem *vm.ProgramMemory, pc int) vm.DecodedInstruction {
	if pc < 0 || pc >= len(decoded) {
		return vm.Decode(pmem, pc)
	}
	return decoded[pc]
}
