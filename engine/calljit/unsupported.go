//go:build !((amd64 && linux) || (amd64 && darwin))

// Package calljit on unsupported platforms registers a stub that reports
// why it can't run, instead of silently disappearing from --engine's
// choices.
package calljit

import (
	"errors"

	"dispatchbench/engine"
	"dispatchbench/vm"
)

// ErrJITUnsupported is returned by Run on any platform calljit's code
// generator doesn't target.
var ErrJITUnsupported = errors.New("calljit: native code generation is only implemented for amd64 on linux and darwin")

func init() {
	engine.Register("calljit", func() engine.Engine { return &Engine{} })
}

type Engine struct{}

func (e *Engine) Name() string { return "calljit" }

func (e *Engine) Run(cpu *vm.CPU, stepLimit uint64) error {
	return ErrJITUnsupported
}
