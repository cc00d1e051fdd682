// Package switchengine implements the simplest dispatch strategy: decode
// on every fetch, dispatch via a tagged match (vm.Execute's switch), no
// precomputation at all. Every other engine is judged against this one.
package switchengine

import (
	"dispatchbench/engine"
	"dispatchbench/vm"
)

func init() {
	engine.Register("switch", func() engine.Engine { return New() })
}

type Engine struct{}

func New() *Engine { return &Engine{} }

func (e *Engine) Name() string { return "switch" }

// Run is the canonical fetch-decode-execute loop: decode at pc, dispatch,
// then uniformly advance pc and steps. The non-JIT engines differ only in
// how decode and dispatch are implemented; this is the baseline they're
// all checked against.
func (e *Engine) Run(cpu *vm.CPU, stepLimit uint64) error {
	for cpu.CanStep(stepLimit) {
		inst := vm.Decode(cpu.Pmem, cpu.PC)
		vm.Execute(cpu, inst)
		cpu.PC += inst.Length
		cpu.Steps++
	}
	return nil
}
