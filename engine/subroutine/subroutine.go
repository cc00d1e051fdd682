// Package subroutine implements subroutine-table dispatch: an
// opcode-indexed table of Go functions instead of a switch statement. Each
// routine is the same semantic behavior vm.Execute provides; the table only
// changes how the opcode is mapped to that behavior.
package subroutine

import (
	"dispatchbench/engine"
	"dispatchbench/vm"
)

func init() {
	engine.Register("subroutine", func() engine.Engine { return New() })
}

type Engine struct{}

func New() *Engine { return &Engine{} }

func (e *Engine) Name() string { return "subroutine" }

func (e *Engine) Run(cpu *vm.CPU, stepLimit uint64) error {
	for cpu.CanStep(stepLimit) {
		inst := vm.Decode(cpu.Pmem, cpu.PC)
		// vm.Dispatch selects the opcode's routine from an opcode-indexed
		// function table rather than a tagged match — the only way this
		// loop differs from switchengine's.
		vm.Dispatch(cpu, inst)
		cpu.PC += inst.Length
		cpu.Steps++
	}
	return nil
}
