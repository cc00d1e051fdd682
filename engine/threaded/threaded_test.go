package threaded

import (
	"testing"

	"github.com/stretchr/testify/require"

	"dispatchbench/vm"
)

func smokeProgram() *vm.ProgramMemory {
	return vm.NewProgramMemory([]uint32{
		uint32(vm.Push), 7,
		uint32(vm.Push), 5,
		uint32(vm.Add),
		uint32(vm.Halt),
	})
}

func TestThreadedRunSmoke(t *testing.T) {
	cpu := vm.New(smokeProgram())
	require.NoError(t, New().Run(cpu, 100))

	require.Equal(t, vm.StateHalted, cpu.State)
	require.EqualValues(t, 4, cpu.Steps)
	require.Equal(t, []uint32{12}, cpu.Stack())
}

func TestThreadedCachedRunSmoke(t *testing.T) {
	cpu := vm.New(smokeProgram())
	require.NoError(t, NewCached().Run(cpu, 100))

	require.Equal(t, vm.StateHalted, cpu.State)
	require.EqualValues(t, 4, cpu.Steps)
	require.Equal(t, []uint32{12}, cpu.Stack())
}

// TestThreadedVariantsAgree checks the two registered variants ("resolve
// every fetch" vs. "resolve once, cache the handle") never disagree, since
// they are meant to be a pure performance variant of the same dispatch.
func TestThreadedVariantsAgree(t *testing.T) {
	mem := vm.NewProgramMemory([]uint32{
		uint32(vm.Push), 0,
		uint32(vm.Push), 3,
		uint32(vm.Div),
		uint32(vm.Halt),
	})

	plain := vm.New(mem)
	require.NoError(t, New().Run(plain, 1000))

	cached := vm.New(mem)
	require.NoError(t, NewCached().Run(cached, 1000))

	require.Equal(t, plain.State, cached.State)
	require.Equal(t, plain.PC, cached.PC)
	require.Equal(t, plain.Steps, cached.Steps)
	require.Equal(t, plain.Stack(), cached.Stack())
}
