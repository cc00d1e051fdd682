package vm

import "testing"

func TestDecodeNoImmediate(t *testing.T) {
	mem := NewProgramMemory([]uint32{uint32(Dup), uint32(Halt)})
	inst := Decode(mem, 0)
	if inst.Opcode != Dup || inst.Length != 1 {
		t.Fatalf("got %+v", inst)
	}
}

func TestDecodeWithImmediate(t *testing.T) {
	mem := NewProgramMemory([]uint32{uint32(Push), 42})
	inst := Decode(mem, 0)
	if inst.Opcode != Push || inst.Length != 2 || inst.Immediate != 42 {
		t.Fatalf("got %+v", inst)
	}
}

func TestDecodeTruncatedImmediateFaults(t *testing.T) {
	// Push in the last word of program memory: its immediate would sit
	// past the end.
	words := make([]uint32, ProgramSize)
	words[ProgramSize-1] = uint32(Push)
	mem := NewProgramMemory(words)
	inst := Decode(mem, ProgramSize-1)
	if inst.Opcode != Break {
		t.Fatalf("expected synthetic Break, got %+v", inst)
	}
}

func TestDecodeUnknownOpcodeFaults(t *testing.T) {
	mem := NewProgramMemory([]uint32{0xFF})
	inst := Decode(mem, 0)
	if inst.Opcode != Break || inst.Length != 1 {
		t.Fatalf("got %+v", inst)
	}
}

func TestDecodeOutOfRangeFaults(t *testing.T) {
	mem := NewProgramMemory(nil)
	inst := Decode(mem, ProgramSize)
	if inst.Opcode != Break {
		t.Fatalf("got %+v", inst)
	}
}
