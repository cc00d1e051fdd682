//go:build (amd64 && linux) || (amd64 && darwin)

// Package calljit implements call-threaded JIT dispatch. Once, before the
// run starts, every opcode with a native template (jit/codegen) gets its
// body placed into one executable buffer; from then on, dispatching an
// instruction means calling its compiled address directly instead of
// switching on a Go value or indexing a Go function-table (the difference
// from engine/subroutine is where the routine lives, not how it's
// reached). Opcodes with no template still go through vm.Dispatch, so a
// program using them runs with identical results, just without the native
// fast path for those instructions.
package calljit

import (
	"fmt"

	"dispatchbench/engine"
	"dispatchbench/jit/codebuf"
	"dispatchbench/jit/codegen"
	"dispatchbench/jit/trampoline"
	"dispatchbench/vm"
)

func init() {
	engine.Register("calljit", func() engine.Engine { return New() })
}

type Engine struct {
	buf      *codebuf.Buffer
	routines map[vm.Opcode]uintptr
}

func New() *Engine { return &Engine{} }

func (e *Engine) Name() string { return "calljit" }

func (e *Engine) compile() error {
	size := 0
	for _, t := range codegen.Templates {
		size += len(t.Code)
	}
	if size == 0 {
		size = 64
	}
	buf, err := codebuf.New(size)
	if err != nil {
		return fmt.Errorf("calljit: %w", err)
	}

	routines := make(map[vm.Opcode]uintptr, len(codegen.Templates))
	offset := 0
	for op, t := range codegen.Templates {
		buf.WriteAt(offset, t.Code)
		routines[op] = buf.Addr() + uintptr(offset)
		offset += len(t.Code)
	}
	if err := buf.MakeExecutable(); err != nil {
		return fmt.Errorf("calljit: %w", err)
	}

	e.buf = buf
	e.routines = routines
	return nil
}

func (e *Engine) Run(cpu *vm.CPU, stepLimit uint64) error {
	// Compiled once per engine instance and kept mapped for the engine's
	// whole lifetime: the buffer must stay executable across Run calls,
	// since nothing recompiles it on the second one.
	if e.buf == nil {
		if err := e.compile(); err != nil {
			return err
		}
	}

	for cpu.CanStep(stepLimit) {
		inst := vm.Decode(cpu.Pmem, cpu.PC)
		addr, ok := e.routines[inst.Opcode]
		if !ok || !boundsOK(cpu, inst.Opcode) {
			vm.Dispatch(cpu, inst)
		} else {
			ns := cpu.Export()
			trampoline.CallRoutine(addr, &ns, inst.Immediate)
			cpu.Import(ns)
		}
		cpu.PC += inst.Length
		cpu.Steps++
	}
	return nil
}

// boundsOK reproduces, in Go, the stack-depth precondition each template
// in jit/codegen assumes instead of checking for itself.
func boundsOK(cpu *vm.CPU, op vm.Opcode) bool {
	t, ok := codegen.Templates[op]
	if !ok {
		return false
	}
	sp := cpu.SP()
	if sp < t.MinSP {
		return false
	}
	if t.PushesNet > 0 && sp+t.PushesNet >= vm.StackCapacity {
		return false
	}
	return true
}
