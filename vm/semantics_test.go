package vm

import "testing"

func TestExecutePush(t *testing.T) {
	cpu := New(NewProgramMemory(nil))
	Execute(cpu, DecodedInstruction{Opcode: Push, Immediate: 5})
	if cpu.SP() != 0 || cpu.Stack()[0] != 5 {
		t.Fatalf("got sp=%d stack=%v", cpu.SP(), cpu.Stack())
	}
}

func TestExecuteSubOrder(t *testing.T) {
	// a is first-popped (top), b second-popped; result is a - b.
	cpu := New(NewProgramMemory(nil))
	cpu.stack.push(3) // b
	cpu.stack.push(9) // a (top)
	Execute(cpu, DecodedInstruction{Opcode: Sub})
	v, ok := cpu.stack.pop()
	if !ok || v != 6 {
		t.Fatalf("got %d, %v", v, ok)
	}
}

func TestExecuteDivByZeroFaults(t *testing.T) {
	cpu := New(NewProgramMemory(nil))
	cpu.stack.push(0)
	cpu.stack.push(10)
	Execute(cpu, DecodedInstruction{Opcode: Div})
	if cpu.State != StateBreak {
		t.Fatalf("got %v", cpu.State)
	}
}

func TestExecuteOverflowFaultsWithoutPartialEffect(t *testing.T) {
	cpu := New(NewProgramMemory(nil))
	for i := 0; i < StackCapacity; i++ {
		cpu.stack.push(uint32(i))
	}
	spBefore := cpu.SP()
	Execute(cpu, DecodedInstruction{Opcode: Push, Immediate: 1})
	if cpu.State != StateBreak {
		t.Fatalf("expected Break, got %v", cpu.State)
	}
	if cpu.SP() != spBefore {
		t.Fatalf("stack should be unchanged on overflow fault")
	}
}

func TestExecuteRotUnderflowFaults(t *testing.T) {
	cpu := New(NewProgramMemory(nil))
	cpu.stack.push(1)
	cpu.stack.push(2)
	Execute(cpu, DecodedInstruction{Opcode: Rot})
	if cpu.State != StateBreak {
		t.Fatalf("expected Break, got %v", cpu.State)
	}
}

func TestExecuteRot(t *testing.T) {
	cpu := New(NewProgramMemory(nil))
	cpu.stack.push(1) // a
	cpu.stack.push(2) // b
	cpu.stack.push(3) // c (top)
	Execute(cpu, DecodedInstruction{Opcode: Rot})
	if got := cpu.Stack(); len(got) != 3 || got[0] != 2 || got[1] != 3 || got[2] != 1 {
		t.Fatalf("got %v, want [2 3 1]", got)
	}
}

func TestExecuteJumpAdjustsPC(t *testing.T) {
	cpu := New(NewProgramMemory(nil))
	cpu.PC = 10
	Execute(cpu, DecodedInstruction{Opcode: Jump, Immediate: -4})
	if cpu.PC != 6 {
		t.Fatalf("got pc=%d", cpu.PC)
	}
}

func TestExecuteJEBranchesOnZero(t *testing.T) {
	cpu := New(NewProgramMemory(nil))
	cpu.PC = 0
	cpu.stack.push(0)
	Execute(cpu, DecodedInstruction{Opcode: JE, Immediate: 8})
	if cpu.PC != 8 {
		t.Fatalf("got pc=%d", cpu.PC)
	}
}

func TestExecuteJNESkipsOnZero(t *testing.T) {
	cpu := New(NewProgramMemory(nil))
	cpu.PC = 0
	cpu.stack.push(0)
	Execute(cpu, DecodedInstruction{Opcode: JNE, Immediate: 8})
	if cpu.PC != 0 {
		t.Fatalf("got pc=%d", cpu.PC)
	}
}

func TestExecuteGreater(t *testing.T) {
	cpu := New(NewProgramMemory(nil))
	cpu.stack.push(2) // b
	cpu.stack.push(5) // a (top)
	Execute(cpu, DecodedInstruction{Opcode: Greater})
	v, _ := cpu.stack.pop()
	if v != 1 {
		t.Fatalf("5 > 2 should push 1, got %d", v)
	}
}

func TestExecuteSQRT(t *testing.T) {
	cpu := New(NewProgramMemory(nil))
	cpu.stack.push(81)
	Execute(cpu, DecodedInstruction{Opcode: SQRT})
	v, _ := cpu.stack.pop()
	if v != 9 {
		t.Fatalf("got %d", v)
	}
}

func TestExecutePick(t *testing.T) {
	// ... 10 20 30 n=1 -> picks the slot one below the top (after popping
	// n), i.e. 20, and pushes it back on: ... 10 20 30 20.
	cpu := New(NewProgramMemory(nil))
	cpu.stack.push(10)
	cpu.stack.push(20)
	cpu.stack.push(30)
	cpu.stack.push(1)
	Execute(cpu, DecodedInstruction{Opcode: Pick})
	got := cpu.Stack()
	want := []uint32{10, 20, 30, 20}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestExecutePickOutOfRangeFaults(t *testing.T) {
	cpu := New(NewProgramMemory(nil))
	cpu.stack.push(5)
	cpu.stack.push(100) // n far larger than the stack is deep
	Execute(cpu, DecodedInstruction{Opcode: Pick})
	if cpu.State != StateBreak {
		t.Fatalf("expected Break, got %v", cpu.State)
	}
}

func TestExecuteGet(t *testing.T) {
	cpu := New(NewProgramMemory(nil))
	cpu.stack.push(111) // index 0
	cpu.stack.push(222) // index 1
	cpu.stack.push(0)   // absolute index to read
	Execute(cpu, DecodedInstruction{Opcode: Get})
	v, ok := cpu.stack.pop()
	if !ok || v != 111 {
		t.Fatalf("got %d, %v", v, ok)
	}
}

func TestExecuteGetBadIndexFaults(t *testing.T) {
	cpu := New(NewProgramMemory(nil))
	cpu.stack.push(5)
	cpu.stack.push(50) // out of StackCapacity range
	Execute(cpu, DecodedInstruction{Opcode: Get})
	if cpu.State != StateBreak {
		t.Fatalf("expected Break, got %v", cpu.State)
	}
}

func TestExecuteSet(t *testing.T) {
	cpu := New(NewProgramMemory(nil))
	cpu.stack.push(10) // index 0, to be overwritten
	cpu.stack.push(20) // index 1
	cpu.stack.push(99) // value to write
	cpu.stack.push(0)  // absolute index to write it to (top)
	Execute(cpu, DecodedInstruction{Opcode: Set})
	got := cpu.Stack()
	want := []uint32{99, 20}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestExecuteSetBadIndexFaults(t *testing.T) {
	cpu := New(NewProgramMemory(nil))
	cpu.stack.push(5)   // value
	cpu.stack.push(999) // out of StackCapacity range
	Execute(cpu, DecodedInstruction{Opcode: Set})
	if cpu.State != StateBreak {
		t.Fatalf("expected Break, got %v", cpu.State)
	}
}

func TestExecuteShiftLeftCountOnTop(t *testing.T) {
	cpu := New(NewProgramMemory(nil))
	cpu.stack.push(1) // value to shift
	cpu.stack.push(3) // count (top)
	Execute(cpu, DecodedInstruction{Opcode: SHL})
	v, ok := cpu.stack.pop()
	if !ok || v != 8 {
		t.Fatalf("1 << 3 should push 8, got %d, %v", v, ok)
	}
}

func TestExecuteShiftRightCountOnTop(t *testing.T) {
	cpu := New(NewProgramMemory(nil))
	cpu.stack.push(1) // value to shift
	cpu.stack.push(3) // count (top)
	Execute(cpu, DecodedInstruction{Opcode: SHR})
	v, ok := cpu.stack.pop()
	if !ok || v != 0 {
		t.Fatalf("1 >> 3 should push 0, got %d, %v", v, ok)
	}
}

func TestExecuteShiftCountMasked(t *testing.T) {
	// Counts are masked to the low 5 bits, so 33 shifts by 1.
	cpu := New(NewProgramMemory(nil))
	cpu.stack.push(2)
	cpu.stack.push(33)
	Execute(cpu, DecodedInstruction{Opcode: SHL})
	v, _ := cpu.stack.pop()
	if v != 4 {
		t.Fatalf("2 << (33 & 31) should push 4, got %d", v)
	}
}

func TestExecuteMod(t *testing.T) {
	cpu := New(NewProgramMemory(nil))
	cpu.stack.push(5)  // b (divisor)
	cpu.stack.push(13) // a (dividend, top)
	Execute(cpu, DecodedInstruction{Opcode: Mod})
	v, ok := cpu.stack.pop()
	if !ok || v != 3 {
		t.Fatalf("13 %% 5 should push 3, got %d, %v", v, ok)
	}
}

func TestExecuteModByZeroFaults(t *testing.T) {
	cpu := New(NewProgramMemory(nil))
	cpu.stack.push(0) // b (divisor)
	cpu.stack.push(7) // a (dividend, top)
	Execute(cpu, DecodedInstruction{Opcode: Mod})
	if cpu.State != StateBreak {
		t.Fatalf("expected Break, got %v", cpu.State)
	}
}

// TestExecuteRandShape asserts only the shape of Rand's effect (one value
// pushed), never its content: the generator is deliberately unseeded.
func TestExecuteRandShape(t *testing.T) {
	cpu := New(NewProgramMemory(nil))
	Execute(cpu, DecodedInstruction{Opcode: Rand})
	if cpu.State != StateRunning || cpu.SP() != 0 {
		t.Fatalf("got state=%v sp=%d", cpu.State, cpu.SP())
	}
}

func TestExecuteUnknownOpcodeFaults(t *testing.T) {
	cpu := New(NewProgramMemory(nil))
	Execute(cpu, DecodedInstruction{Opcode: Opcode(0xEE)})
	if cpu.State != StateBreak {
		t.Fatalf("got %v", cpu.State)
	}
}
