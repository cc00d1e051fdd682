package program

import (
	"testing"

	"github.com/stretchr/testify/require"

	"dispatchbench/vm"
)

func TestLoadPadsShortImage(t *testing.T) {
	data := []byte{0x07, 0, 0, 0, 0x01, 0, 0, 0} // words 0x07, 0x01 (Halt), little-endian
	mem, err := Load(data)
	require.NoError(t, err)

	w0, ok := mem.Word(0)
	require.True(t, ok)
	require.EqualValues(t, 0x07, w0)

	w2, ok := mem.Word(2)
	require.True(t, ok)
	require.Zero(t, w2, "words past the image should be zero-padded")
}

func TestLoadRejectsOversizeImage(t *testing.T) {
	_, err := Load(make([]byte, MaxBytes+4))
	require.Error(t, err)
}

func TestLoadRejectsPartialWord(t *testing.T) {
	_, err := Load([]byte{1, 2, 3})
	require.Error(t, err)
}

// TestRoundTrip: Write then Load must reproduce byte-identical program
// memory, for every program that fits.
func TestRoundTrip(t *testing.T) {
	words := make([]uint32, 0, vm.ProgramSize)
	for i := 0; i < 40; i++ {
		words = append(words, uint32(i*37+1))
	}
	mem := vm.NewProgramMemory(words)

	data := Write(mem)
	require.Len(t, data, MaxBytes)

	roundTripped, err := Load(data)
	require.NoError(t, err)
	require.Equal(t, mem.Words(), roundTripped.Words())
}

func TestRoundTripEmptyProgram(t *testing.T) {
	mem := vm.NewProgramMemory(nil)
	data := Write(mem)

	roundTripped, err := Load(data)
	require.NoError(t, err)
	require.Equal(t, mem.Words(), roundTripped.Words())
}
