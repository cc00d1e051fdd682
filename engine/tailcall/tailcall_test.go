package tailcall

import (
	"testing"

	"github.com/stretchr/testify/require"

	"dispatchbench/vm"
)

func TestRunSmoke(t *testing.T) {
	mem := vm.NewProgramMemory([]uint32{
		uint32(vm.Push), 7,
		uint32(vm.Push), 5,
		uint32(vm.Add),
		uint32(vm.Halt),
	})
	cpu := vm.New(mem)
	require.NoError(t, New().Run(cpu, 100))

	require.Equal(t, vm.StateHalted, cpu.State)
	require.EqualValues(t, 4, cpu.Steps)
	require.Equal(t, []uint32{12}, cpu.Stack())
}

// TestRunLongProgramDoesNotOverflowGoroutineStack exercises the reason
// this engine returns the next step rather than calling it directly
// (package doc comment): a guest program long enough to blow a
// self-recursive Go call stack must still complete normally.
func TestRunLongProgramDoesNotOverflowGoroutineStack(t *testing.T) {
	// Jump -2 at address 0 lands back on itself every time (0 + -2 + 2 ==
	// 0), so this never runs off the end of program memory no matter how
	// high stepLimit goes.
	mem := vm.NewProgramMemory([]uint32{uint32(vm.Jump), uint32(int32(-2))})
	cpu := vm.New(mem)
	require.NoError(t, New().Run(cpu, 2_000_000))

	require.Equal(t, vm.StateRunning, cpu.State)
	require.EqualValues(t, 2_000_000, cpu.Steps)
}
