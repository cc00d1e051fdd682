package vm

import "math/rand/v2"

// State is the CPU's execution status.
type State int

const (
	StateRunning State = iota
	StateHalted
	StateBreak
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "Running"
	case StateHalted:
		return "Halted"
	case StateBreak:
		return "Break"
	default:
		return "Running"
	}
}

// CPU is the simulated processor: program counter, data stack, execution
// status and step counter, plus a read-only handle to program memory.
// Exactly one CPU is constructed per run; for the
// duration of execution it is owned exclusively by whichever engine is
// running it.
type CPU struct {
	PC    int
	State State
	Steps uint64

	stack dataStack
	Pmem  *ProgramMemory

	rng *rand.Rand
}

// New constructs a CPU with an empty stack, PC at 0, and Running state,
// bound to the given (shared, read-only) program memory.
func New(mem *ProgramMemory) *CPU {
	return &CPU{
		PC:    0,
		State: StateRunning,
		stack: newDataStack(),
		Pmem:  mem,
		// Seeded from process entropy; Rand makes no reproducibility
		// promise, so there is nothing to reproduce here.
		rng: rand.New(rand.NewPCG(uint64(rand.Uint32()), uint64(rand.Uint32()))),
	}
}

// SP is the data stack pointer, -1 when empty.
func (c *CPU) SP() int { return c.stack.sp }

// Stack returns the live stack contents, bottom to top.
func (c *CPU) Stack() []uint32 { return c.stack.contents() }

// fault transitions the CPU to Break. It never advances pc: the caller
// (always a semantic routine or a stack primitive) must return immediately
// afterward so the current instruction's remaining effects don't run.
func (c *CPU) fault() {
	c.State = StateBreak
}

// CanStep reports whether the CPU is still eligible to execute another
// instruction under stepLimit.
func (c *CPU) CanStep(stepLimit uint64) bool {
	return c.State == StateRunning && c.Steps < stepLimit
}
