package vm

// This file holds the one definition of what each opcode does to CPU
// state, shared verbatim across every dispatch engine. Nothing
// here knows about decoding or dispatch; each routine receives the already
// decoded instruction (for its immediate, when it has one) and mutates cpu
// in place.
//
// Routines do not read cpu.State themselves: every engine loop runs one
// only while the CPU is Running (CPU.CanStep). Every routine that touches
// the stack bails out the instant a push/pop primitive reports failure — a
// single fault keeps the rest of the instruction's effects from running.

// push stores v on the stack, faulting the CPU on overflow instead of
// silently dropping the value.
func push(cpu *CPU, v uint32) bool {
	if !cpu.stack.push(v) {
		cpu.fault()
		return false
	}
	return true
}

// Execute runs the semantic routine for inst against cpu. It does not
// advance PC by inst.Length; callers own that (the pc += length advance
// happens in the engine's main loop, uniformly, after Execute returns —
// branches adjust PC themselves and then get the uniform advance applied
// on top).
func Execute(cpu *CPU, inst DecodedInstruction) {
	switch inst.Opcode {
	case Nop:
		// no effect
	case Halt:
		cpu.State = StateHalted
	case Break:
		cpu.fault()
	case Push:
		push(cpu, uint32(inst.Immediate))
	case Print:
		v, ok := cpu.stack.pop()
		if !ok {
			cpu.fault()
			return
		}
		emitPrint(int32(v))
	case Swap:
		opSwap(cpu)
	case Dup:
		opDup(cpu)
	case Over:
		opOver(cpu)
	case Drop:
		if _, ok := cpu.stack.pop(); !ok {
			cpu.fault()
		}
	case Rot:
		opRot(cpu)
	case Pick:
		opPick(cpu)
	case Inc:
		opUnaryArith(cpu, func(a uint32) uint32 { return a + 1 })
	case Dec:
		opUnaryArith(cpu, func(a uint32) uint32 { return a - 1 })
	case Add:
		opBinaryArith(cpu, func(a, b uint32) uint32 { return a + b })
	case Sub:
		// a is first-popped, b is second-popped; result is a-b. Guest
		// programs depend on this order.
		opBinaryArith(cpu, func(a, b uint32) uint32 { return a - b })
	case Mul:
		opBinaryArith(cpu, func(a, b uint32) uint32 { return a * b })
	case Mod:
		opDivMod(cpu, true)
	case Div:
		opDivMod(cpu, false)
	case SQRT:
		opSqrt(cpu)
	case And:
		opBinaryArith(cpu, func(a, b uint32) uint32 { return a & b })
	case Or:
		opBinaryArith(cpu, func(a, b uint32) uint32 { return a | b })
	case Xor:
		opBinaryArith(cpu, func(a, b uint32) uint32 { return a ^ b })
	case SHL:
		// The shift count is on top (first-popped); the value below it is
		// what gets shifted. [Push 1, Push 3, SHL] leaves 8.
		opBinaryArith(cpu, func(a, b uint32) uint32 { return b << (a & 0x1F) })
	case SHR:
		opBinaryArith(cpu, func(a, b uint32) uint32 { return b >> (a & 0x1F) })
	case Greater:
		opGreater(cpu)
	case Rand:
		push(cpu, cpu.rng.Uint32())
	case Get:
		opGet(cpu)
	case Set:
		opSet(cpu)
	case JE:
		opBranchIf(cpu, inst.Immediate, func(v uint32) bool { return v == 0 })
	case JNE:
		opBranchIf(cpu, inst.Immediate, func(v uint32) bool { return v != 0 })
	case Jump:
		cpu.PC += int(inst.Immediate)
	default:
		cpu.fault()
	}
}

func opSwap(cpu *CPU) {
	a, ok1 := cpu.stack.pop()
	b, ok2 := cpu.stack.pop()
	if !ok1 || !ok2 {
		cpu.fault()
		return
	}
	if push(cpu, a) {
		push(cpu, b)
	}
}

func opDup(cpu *CPU) {
	a, ok := cpu.stack.pop()
	if !ok {
		cpu.fault()
		return
	}
	if push(cpu, a) {
		push(cpu, a)
	}
}

func opOver(cpu *CPU) {
	// ... a b -> ... a b a
	if cpu.stack.sp < 1 {
		cpu.fault()
		return
	}
	v, ok := cpu.stack.get(cpu.stack.sp - 1)
	if !ok {
		cpu.fault()
		return
	}
	push(cpu, v)
}

func opRot(cpu *CPU) {
	// ... a b c -> ... b c a
	c, ok1 := cpu.stack.pop()
	b, ok2 := cpu.stack.pop()
	a, ok3 := cpu.stack.pop()
	if !ok1 || !ok2 || !ok3 {
		cpu.fault()
		return
	}
	if push(cpu, b) && push(cpu, c) {
		push(cpu, a)
	}
}

func opPick(cpu *CPU) {
	n, ok := cpu.stack.pop()
	if !ok {
		cpu.fault()
		return
	}
	idx := cpu.stack.sp - int(n)
	v, ok := cpu.stack.get(idx)
	if !ok {
		cpu.fault()
		return
	}
	push(cpu, v)
}

func opUnaryArith(cpu *CPU, f func(uint32) uint32) {
	a, ok := cpu.stack.pop()
	if !ok {
		cpu.fault()
		return
	}
	push(cpu, f(a))
}

// opBinaryArith pops a then b (a was on top) and pushes f(a, b).
func opBinaryArith(cpu *CPU, f func(a, b uint32) uint32) {
	a, ok1 := cpu.stack.pop()
	b, ok2 := cpu.stack.pop()
	if !ok1 || !ok2 {
		cpu.fault()
		return
	}
	push(cpu, f(a, b))
}

func opDivMod(cpu *CPU, mod bool) {
	a, ok1 := cpu.stack.pop()
	b, ok2 := cpu.stack.pop()
	if !ok1 || !ok2 {
		cpu.fault()
		return
	}
	if b == 0 {
		cpu.fault()
		return
	}
	if mod {
		push(cpu, a%b)
	} else {
		push(cpu, a/b)
	}
}

func opSqrt(cpu *CPU) {
	a, ok := cpu.stack.pop()
	if !ok {
		cpu.fault()
		return
	}
	push(cpu, isqrt(a))
}

func isqrt(v uint32) uint32 {
	if v == 0 {
		return 0
	}
	x := v
	var y uint32 = (x + 1) / 2
	for y < x {
		x = y
		y = (x + v/x) / 2
	}
	return x
}

func opGreater(cpu *CPU) {
	a, ok1 := cpu.stack.pop()
	b, ok2 := cpu.stack.pop()
	if !ok1 || !ok2 {
		cpu.fault()
		return
	}
	if a > b {
		push(cpu, 1)
	} else {
		push(cpu, 0)
	}
}

func opGet(cpu *CPU) {
	i, ok := cpu.stack.pop()
	if !ok {
		cpu.fault()
		return
	}
	v, ok := cpu.stack.get(int(i))
	if !ok {
		cpu.fault()
		return
	}
	push(cpu, v)
}

func opSet(cpu *CPU) {
	i, ok1 := cpu.stack.pop()
	v, ok2 := cpu.stack.pop()
	if !ok1 || !ok2 {
		cpu.fault()
		return
	}
	if !cpu.stack.set(int(i), v) {
		cpu.fault()
	}
}

func opBranchIf(cpu *CPU, imm int32, predicate func(uint32) bool) {
	v, ok := cpu.stack.pop()
	if !ok {
		cpu.fault()
		return
	}
	if predicate(v) {
		cpu.PC += int(imm)
	}
}
