//go:build !((amd64 && linux) || (amd64 && darwin))

package inlinejit

import (
	"errors"

	"dispatchbench/engine"
	"dispatchbench/vm"
)

// ErrJITUnsupported is returned by Run on any platform inlinejit's code
// generator doesn't target.
var ErrJITUnsupported = errors.New("inlinejit: native code generation is only implemented for amd64 on linux and darwin")

func init() {
	engine.Register("inlinejit", func() engine.Engine { return &Engine{} })
}

type Engine struct{}

func (e *Engine) Name() string { return "inlinejit" }

func (e *Engine) Run(cpu *vm.CPU, stepLimit uint64) error {
	return ErrJITUnsupported
}
