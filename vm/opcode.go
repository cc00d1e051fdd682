// Package vm implements the guest instruction set, CPU state, and the
// engine-independent semantics shared by every dispatch engine. The engines
// themselves (switch, predecoded, subroutine, tail-call, threaded and the
// two JIT variants) live in sibling packages under engine/ and jit/.
package vm

// Opcode identifies one guest instruction. Values are stable and grouped by
// category: the call-threaded and inline JIT engines index jump/relocation
// tables by these numbers, so they must never be reordered or renumbered
// without reviewing every engine package.
type Opcode byte

const (
	Nop   Opcode = 0x00
	Halt  Opcode = 0x01
	Break Opcode = 0x02

	Push Opcode = 0x10

	Print Opcode = 0x11

	Swap Opcode = 0x20
	Dup  Opcode = 0x21
	Over Opcode = 0x22
	Drop Opcode = 0x23
	Rot  Opcode = 0x24
	Pick Opcode = 0x25

	Inc  Opcode = 0x30
	Dec  Opcode = 0x31
	Add  Opcode = 0x32
	Sub  Opcode = 0x33
	Mul  Opcode = 0x34
	Mod  Opcode = 0x35
	Div  Opcode = 0x36
	SQRT Opcode = 0x37

	And Opcode = 0x40
	Or  Opcode = 0x41
	Xor Opcode = 0x42
	SHL Opcode = 0x43
	SHR Opcode = 0x44

	Greater Opcode = 0x50

	Rand Opcode = 0x51

	Get Opcode = 0x60
	Set Opcode = 0x61

	JE   Opcode = 0x70
	JNE  Opcode = 0x71
	Jump Opcode = 0x72
)

// immediateTaking is the full set of opcodes whose length is 2 (the word
// following them is a signed 32-bit immediate).
var immediateTaking = map[Opcode]bool{
	Push: true,
	JE:   true,
	JNE:  true,
	Jump: true,
}

// HasImmediate reports whether op is length 2 (carries an immediate word).
func (op Opcode) HasImmediate() bool {
	return immediateTaking[op]
}

// Length returns the instruction length in words: 1 for inherent opcodes,
// 2 for immediate-taking ones.
func (op Opcode) Length() int {
	if op.HasImmediate() {
		return 2
	}
	return 1
}

var opcodeNames = map[Opcode]string{
	Nop: "nop", Halt: "halt", Break: "break",
	Push: "push", Print: "print",
	Swap: "swap", Dup: "dup", Over: "over", Drop: "drop", Rot: "rot", Pick: "pick",
	Inc: "inc", Dec: "dec", Add: "add", Sub: "sub", Mul: "mul", Mod: "mod", Div: "div", SQRT: "sqrt",
	And: "and", Or: "or", Xor: "xor", SHL: "shl", SHR: "shr",
	Greater: "greater", Rand: "rand",
	Get: "get", Set: "set",
	JE: "je", JNE: "jne", Jump: "jump",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "break"
}

// recognized is the set of opcodes the decoder will accept; anything else
// decodes to Break.
var recognized = func() map[Opcode]bool {
	m := make(map[Opcode]bool, len(opcodeNames))
	for op := range opcodeNames {
		m[op] = true
	}
	return m
}()

// DecodedInstruction is the result of decoding program memory at a given
// address. Decoding never fails visibly: an
// out-of-range address, a truncated immediate, or an unrecognized opcode
// all decode to (Break, length 1).
type DecodedInstruction struct {
	Opcode    Opcode
	Length    int
	Immediate int32

	// ServiceRoutineHandle is populated only by the predecoded-threaded
	// engine variant (the inline-cache flavor): it caches the
	// dispatch target resolved for Opcode so repeated execution of the
	// same address skips the table lookup.
	ServiceRoutineHandle int
}

// breakInstruction is the synthetic instruction yielded by every decode
// failure.
var breakInstruction = DecodedInstruction{Opcode: Break, Length: 1}

// Decode reads the instruction at addr in mem. It never panics and never
// returns an error: every failure mode collapses to Break, length 1.
func Decode(mem *ProgramMemory, addr int) DecodedInstruction {
	word, ok := mem.Word(addr)
	if !ok {
		return breakInstruction
	}
	op := Opcode(word)
	if !recognized[op] {
		return breakInstruction
	}
	if !op.HasImmediate() {
		return DecodedInstruction{Opcode: op, Length: 1}
	}
	imm, ok := mem.Word(addr + 1)
	if !ok {
		return breakInstruction
	}
	return DecodedInstruction{Opcode: op, Length: 2, Immediate: int32(imm)}
}
