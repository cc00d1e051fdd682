// Package program loads and writes the fixed-size binary image a guest
// program is distributed as: vm.ProgramSize little-endian 32-bit words,
// padded with zero words if the input is shorter. Images are read word by
// word with encoding/binary rather than by unsafe-casting a byte slice.
package program

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"dispatchbench/vm"
)

// MaxBytes is the largest input image Load accepts: one 32-bit word per
// program slot.
const MaxBytes = vm.ProgramSize * 4

// Load decodes a little-endian image into program memory. An image larger
// than MaxBytes is rejected outright — truncating it silently would run a
// different program than the one given. A shorter image is zero-padded,
// matching vm.NewProgramMemory.
func Load(data []byte) (*vm.ProgramMemory, error) {
	if len(data) > MaxBytes {
		return nil, fmt.Errorf("program: image is %d bytes, exceeds the %d-byte limit (%d words)", len(data), MaxBytes, vm.ProgramSize)
	}
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("program: image length %d is not a multiple of 4 bytes", len(data))
	}

	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4 : i*4+4])
	}
	return vm.NewProgramMemory(words), nil
}

// Write serializes mem back into a little-endian byte image the full
// vm.ProgramSize words long. Round-tripping an image through Write then
// Load reproduces the same ProgramMemory — trailing zero words included,
// since Load would reconstruct exactly those from a shorter input anyway.
func Write(mem *vm.ProgramMemory) []byte {
	words := mem.Words()
	var buf bytes.Buffer
	buf.Grow(len(words) * 4)
	var word [4]byte
	for _, w := range words {
		binary.LittleEndian.PutUint32(word[:], w)
		buf.Write(word[:])
	}
	return buf.Bytes()
}
