//go:build (amd64 && linux) || (amd64 && darwin)

// Package codebuf manages the executable memory the call-threaded and
// inline JIT engines generate machine code into. Allocation goes through
// edsrzf/mmap-go (anonymous mapping), and the writable-to-executable
// transition goes through golang.org/x/sys/unix's Mprotect, since mmap-go
// has no way to re-protect memory it already mapped. Both deps are
// grounded on go-interpreter/wagon's JIT backend, which allocates its
// generated code the same way.
package codebuf

import (
	"fmt"
	"unsafe"

	"github.com/edsrzf/mmap-go"
	"golang.org/x/sys/unix"
)

// PaddingByte fills unused buffer space with int3 (0xCC), so control that
// falls off the end of a routine traps instead of running into whatever
// bytes happen to follow (wagon's x86.PaddingByte convention).
const PaddingByte = 0xCC

// Buffer is a page of generated machine code. It is writable immediately
// after New, and becomes executable (and no longer writable) after
// MakeExecutable — the two states never overlap.
type Buffer struct {
	mem mmap.MMap
}

// New allocates a size-byte anonymous buffer, mapped read-write and filled
// with PaddingByte. size is rounded up to a whole page by the OS.
func New(size int) (*Buffer, error) {
	mem, err := mmap.MapRegion(nil, size, mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return nil, fmt.Errorf("codebuf: mmap: %w", err)
	}
	for i := range mem {
		mem[i] = PaddingByte
	}
	return &Buffer{mem: mem}, nil
}

// Len reports the buffer's size in bytes.
func (b *Buffer) Len() int { return len(b.mem) }

// WriteAt copies code into the buffer starting at offset.
func (b *Buffer) WriteAt(offset int, code []byte) {
	copy(b.mem[offset:], code)
}

// Bytes exposes the raw buffer; it may be written only until
// MakeExecutable is called.
func (b *Buffer) Bytes() []byte { return b.mem }

// Addr returns the address of the buffer's first byte. Relocation patching
// needs this to compute rel32 displacements between emitted code.
func (b *Buffer) Addr() uintptr {
	return uintptr(unsafe.Pointer(&b.mem[0]))
}

// MakeExecutable flips the buffer from writable to executable. Calling
// WriteAt after this returns is undefined.
func (b *Buffer) MakeExecutable() error {
	if err := unix.Mprotect(b.mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		return fmt.Errorf("codebuf: mprotect: %w", err)
	}
	return nil
}

// Close unmaps the buffer.
func (b *Buffer) Close() error {
	return b.mem.Unmap()
}
