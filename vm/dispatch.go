package vm

// Routine is the function shape subroutine-table dispatch invokes. Most
// entries in routines call the same op* helpers semantics.go defines for
// Execute; the rest (Halt, Break, Push, Print, Drop, Jump and the
// arithmetic/bitwise closures) repeat the body of Execute's matching case.
// Only how the opcode selects which code runs differs.
type Routine func(cpu *CPU, inst DecodedInstruction)

var routines [256]Routine

func init() {
	routines[Nop] = func(cpu *CPU, inst DecodedInstruction) {}
	routines[Halt] = func(cpu *CPU, inst DecodedInstruction) { cpu.State = StateHalted }
	routines[Break] = func(cpu *CPU, inst DecodedInstruction) { cpu.fault() }
	routines[Push] = func(cpu *CPU, inst DecodedInstruction) { push(cpu, uint32(inst.Immediate)) }
	routines[Print] = func(cpu *CPU, inst DecodedInstruction) {
		v, ok := cpu.stack.pop()
		if !ok {
			cpu.fault()
			return
		}
		emitPrint(int32(v))
	}
	routines[Swap] = func(cpu *CPU, inst DecodedInstruction) { opSwap(cpu) }
	routines[Dup] = func(cpu *CPU, inst DecodedInstruction) { opDup(cpu) }
	routines[Over] = func(cpu *CPU, inst DecodedInstruction) { opOver(cpu) }
	routines[Drop] = func(cpu *CPU, inst DecodedInstruction) {
		if _, ok := cpu.stack.pop(); !ok {
			cpu.fault()
		}
	}
	routines[Rot] = func(cpu *CPU, inst DecodedInstruction) { opRot(cpu) }
	routines[Pick] = func(cpu *CPU, inst DecodedInstruction) { opPick(cpu) }
	routines[Inc] = func(cpu *CPU, inst DecodedInstruction) {
		opUnaryArith(cpu, func(a uint32) uint32 { return a + 1 })
	}
	routines[Dec] = func(cpu *CPU, inst DecodedInstruction) {
		opUnaryArith(cpu, func(a uint32) uint32 { return a - 1 })
	}
	routines[Add] = func(cpu *CPU, inst DecodedInstruction) {
		opBinaryArith(cpu, func(a, b uint32) uint32 { return a + b })
	}
	routines[Sub] = func(cpu *CPU, inst DecodedInstruction) {
		opBinaryArith(cpu, func(a, b uint32) uint32 { return a - b })
	}
	routines[Mul] = func(cpu *CPU, inst DecodedInstruction) {
		opBinaryArith(cpu, func(a, b uint32) uint32 { return a * b })
	}
	routines[Mod] = func(cpu *CPU, inst DecodedInstruction) { opDivMod(cpu, true) }
	routines[Div] = func(cpu *CPU, inst DecodedInstruction) { opDivMod(cpu, false) }
	routines[SQRT] = func(cpu *CPU, inst DecodedInstruction) { opSqrt(cpu) }
	routines[And] = func(cpu *CPU, inst DecodedInstruction) {
		opBinaryArith(cpu, func(a, b uint32) uint32 { return a & b })
	}
	routines[Or] = func(cpu *CPU, inst DecodedInstruction) {
		opBinaryArith(cpu, func(a, b uint32) uint32 { return a | b })
	}
	routines[Xor] = func(cpu *CPU, inst DecodedInstruction) {
		opBinaryArith(cpu, func(a, b uint32) uint32 { return a ^ b })
	}
	routines[SHL] = func(cpu *CPU, inst DecodedInstruction) {
		opBinaryArith(cpu, func(a, b uint32) uint32 { return b << (a & 0x1F) })
	}
	routines[SHR] = func(cpu *CPU, inst DecodedInstruction) {
		opBinaryArith(cpu, func(a, b uint32) uint32 { return b >> (a & 0x1F) })
	}
	routines[Greater] = func(cpu *CPU, inst DecodedInstruction) { opGreater(cpu) }
	routines[Rand] = func(cpu *CPU, inst DecodedInstruction) { push(cpu, cpu.rng.Uint32()) }
	routines[Get] = func(cpu *CPU, inst DecodedInstruction) { opGet(cpu) }
	routines[Set] = func(cpu *CPU, inst DecodedInstruction) { opSet(cpu) }
	routines[JE] = func(cpu *CPU, inst DecodedInstruction) {
		opBranchIf(cpu, inst.Immediate, func(v uint32) bool { return v == 0 })
	}
	routines[JNE] = func(cpu *CPU, inst DecodedInstruction) {
		opBranchIf(cpu, inst.Immediate, func(v uint32) bool { return v != 0 })
	}
	routines[Jump] = func(cpu *CPU, inst DecodedInstruction) { cpu.PC += int(inst.Immediate) }
}

// RoutineFor returns the routine table entry for op, for engines that build
// their own indirection on top of the opcode-to-routine mapping (the
// threaded engine's handle table).
func RoutineFor(op Opcode) Routine {
	return routines[op]
}

// Dispatch calls the routine table entry for inst.Opcode. Decode never
// produces an Opcode without a table entry (unrecognized opcodes decode to
// Break), so the nil case below is unreachable in practice; it faults rather
// than panicking out of defense against a hand-built DecodedInstruction.
func Dispatch(cpu *CPU, inst DecodedInstruction) {
	r := routines[inst.Opcode]
	if r == nil {
		cpu.fault()
		return
	}
	r(cpu, inst)
}
