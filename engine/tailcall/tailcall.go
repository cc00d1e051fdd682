// Package tailcall implements tail-call-chained dispatch: each
// instruction's handler is meant to
// directly invoke the handler for the next instruction, rather than return
// to a central loop. Go gives no guarantee that a self-recursive call is
// compiled as a tail call, so a handler calling itself directly would grow
// the goroutine stack by one frame per guest instruction; a long-running
// guest program would eventually exhaust it. This engine instead returns the
// next handler to run instead of calling it, and an outer trampoline does
// the calling — the chain-of-handlers shape survives, the stack growth does
// not.
package tailcall

import (
	"dispatchbench/engine"
	"dispatchbench/vm"
)

func init() {
	engine.Register("tailcall", func() engine.Engine { return New() })
}

type Engine struct{}

func New() *Engine { return &Engine{} }

func (e *Engine) Name() string { return "tailcall" }

// step is the handler for a single instruction. It returns the handler for
// the next instruction, or nil when the chain should stop.
type step func(cpu *vm.CPU, stepLimit uint64) step

func runStep(cpu *vm.CPU, stepLimit uint64) step {
	if !cpu.CanStep(stepLimit) {
		return nil
	}
	inst := vm.Decode(cpu.Pmem, cpu.PC)
	vm.Execute(cpu, inst)
	cpu.PC += inst.Length
	cpu.Steps++
	return runStep
}

func (e *Engine) Run(cpu *vm.CPU, stepLimit uint64) error {
	for next := step(runStep); next != nil; {
		next = next(cpu, stepLimit)
	}
	return nil
}
