package subroutine

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

func TestRunDivByZeroFaults(t *testing.T) {
	// The divisor is the second-popped value, so the 0 goes on the stack
	// first; the faulting Div still counts its own step.
	mem := vm.NewProgramMemory([]uint32{
		uint32(vm.Push), 0,
		uint32(vm.Push), 5,
		uint32(vm.Div),
		uint32(vm.Halt),
	})
	cpu := vm.New(mem)
	require.NoError(t, New().Run(cpu, 100))

	require.Equal(t, vm.StateBreak, cpu.State)
	require.EqualValues(t, 3, cpu.Steps)
}
