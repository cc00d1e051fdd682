package vm

// NativeState is the CPU's mutable register file laid out for direct
// access by JIT-generated machine code (engine/calljit, engine/inlinejit).
// Field order and types form part of the JIT ABI: jit/codegen computes
// byte offsets into this struct with unsafe.Offsetof, since generated code
// in another package cannot see CPU's unexported fields directly. Changing
// field order here requires regenerating every template in jit/codegen.
type NativeState struct {
	PC    int32
	State int32
	Steps uint64
	SP    int32
	Stack [StackCapacity]uint32

	// StepLimit and JumpTableAddr are scratch fields only the inline JIT
	// engine (engine/inlinejit) uses: the generated code checks Steps
	// against StepLimit itself, and resolves "which compiled block is
	// pc now" through the table JumpTableAddr points at, rather than
	// returning to Go between every instruction.
	StepLimit     uint64
	JumpTableAddr uint64
}

// Export snapshots cpu into a NativeState a JIT engine can hand to
// generated code as a flat, ABI-stable struct.
func (c *CPU) Export() NativeState {
	return NativeState{
		PC:    int32(c.PC),
		State: int32(c.State),
		Steps: c.Steps,
		SP:    int32(c.stack.sp),
		Stack: c.stack.words,
	}
}

// ExportWithLimit is Export plus the step limit the inline JIT bakes into
// its generated bounds check.
func (c *CPU) ExportWithLimit(stepLimit uint64) NativeState {
	n := c.Export()
	n.StepLimit = stepLimit
	return n
}

// Import copies a NativeState's fields back into cpu, after generated code
// has finished mutating it. Used after every native-compiled instruction
// (calljit) or after a whole compiled run (inlinejit) hands control back.
func (c *CPU) Import(n NativeState) {
	c.PC = int(n.PC)
	c.State = State(n.State)
	c.Steps = n.Steps
	c.stack.sp = int(n.SP)
	c.stack.words = n.Stack
}
