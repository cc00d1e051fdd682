package vm

// ProgramSize is the fixed capacity of program memory, in 32-bit words.
const ProgramSize = 512

// ProgramMemory is an immutable, fixed-capacity sequence of 32-bit words.
// Once constructed it is never mutated: the decoder and every engine treat
// it as a read-only handle, shared without synchronization because nothing
// ever writes to it again.
type ProgramMemory struct {
	words [ProgramSize]uint32
}

// NewProgramMemory builds a ProgramMemory from words, padding with Nop (0)
// or truncating to ProgramSize as needed. The truncate/pad rule is part of the data
// model's contract, so it lives here rather than duplicated in every
// caller of the loader.
func NewProgramMemory(words []uint32) *ProgramMemory {
	mem := &ProgramMemory{}
	n := len(words)
	if n > ProgramSize {
		n = ProgramSize
	}
	copy(mem.words[:n], words[:n])
	return mem
}

// Word returns the word at addr and whether addr was in range. Out-of-range
// reads are not a panic: callers (chiefly Decode) turn them into a decode
// fault.
func (mem *ProgramMemory) Word(addr int) (uint32, bool) {
	if addr < 0 || addr >= ProgramSize {
		return 0, false
	}
	return mem.words[addr], true
}

// Words returns a copy of the full backing array (used by program.Write),
// so a caller cannot mutate program memory through what it gets back.
func (mem *ProgramMemory) Words() [ProgramSize]uint32 {
	return mem.words
}
