// Package engine defines the common contract every dispatch engine
// implements. The engines themselves live in subpackages (switchengine,
// predecoded, subroutine, tailcall, threaded, and the calljit and inlinejit
// packages, whose native backends sit behind build tags). Engines never communicate with
// each other; each one independently drives the same vm.CPU to the same
// post-conditions.
package engine

import "dispatchbench/vm"

// Engine is one execution strategy for the guest stack machine. Run drives
// cpu until it stops being Running (a fault or a Halt) or stepLimit is
// reached (the CPU is then left Running), mutating it in place. The returned error is reserved for host-level setup
// failures — allocating/protecting executable memory, in the JIT engines —
// never for guest-level faults, which are reported through cpu.State. A
// guest fault is never recovered: it ends the run, and the harness turns
// it into the exit status.
type Engine interface {
	Name() string
	Run(cpu *vm.CPU, stepLimit uint64) error
}

// Registry is populated by each engine package's init(), keyed by the name
// the CLI's --engine flag accepts. Using an explicit registry instead of a
// giant switch in main means the harness only blank-imports the engine
// packages; each one adds itself here when imported.
var Registry = map[string]func() Engine{}

// Register adds a constructor under name. Engine packages call this from
// init().
func Register(name string, make func() Engine) {
	Registry[name] = make
}

// Names returns every registered engine name, in a stable (insertion-order
// independent, alphabetic) order — used by the harness's list-engines
// subcommand.
func Names() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	// simple insertion sort: the registry is small (at most 8 engines) and
	// this avoids pulling in "sort" for eight elements.
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j] < names[j-1]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
	return names
}
