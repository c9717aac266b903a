// Package buffer provides memory regions suitable for direct io: the
// start address and the length are both multiples of the requested
// alignment.
package buffer

import (
	"errors"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ErrAllocation is wrapped by every error returned from Alloc
var ErrAllocation = errors.New("failed to allocate aligned memory")

// Aligned is an anonymous memory mapping sliced down to an aligned
// window. It lives outside the go heap, so it must be released
// explicitly.
type Aligned struct {
	mapping []byte // the region returned by mmap, needed for munmap
	data    []byte // aligned window handed to callers
	align   int
}

// Alloc maps a zero-filled region of size bytes whose address is a
// multiple of align. size must be a positive multiple of align and align
// must be a power of two.
func Alloc(size, align int) (*Aligned, error) {
	if align <= 0 || align&(align-1) != 0 {
		return nil, fmt.Errorf("%w: alignment %d is not a power of two", ErrAllocation, align)
	}
	if size <= 0 || size%align != 0 {
		return nil, fmt.Errorf("%w: size %d is not a positive multiple of %d", ErrAllocation, size, align)
	}

	// mmap hands back page aligned memory, so only alignments larger
	// than a page need slack to slide the window forward
	length := size
	if align > os.Getpagesize() {
		length += align
	}

	mapping, err := unix.Mmap(-1, 0, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap %d bytes: %w", ErrAllocation, length, err)
	}

	off := 0
	if rem := int(uintptr(unsafe.Pointer(&mapping[0])) & uintptr(align-1)); rem != 0 {
		off = align - rem
	}

	return &Aligned{
		mapping: mapping,
		data:    mapping[off : off+size : off+size],
		align:   align,
	}, nil
}

// Bytes returns the aligned region, or nil once released
func (b *Aligned) Bytes() []byte {
	return b.data
}

// Len returns the usable size in bytes
func (b *Aligned) Len() int {
	return len(b.data)
}

// Align returns the alignment the buffer was allocated with
func (b *Aligned) Align() int {
	return b.align
}

// Zero clears the buffer contents
func (b *Aligned) Zero() {
	clear(b.data)
}

// Released reports whether Release has been called
func (b *Aligned) Released() bool {
	return b.mapping == nil
}

// Release unmaps the region. It is safe to call more than once, which
// lets callers defer it and still release early on a failure path.
func (b *Aligned) Release() error {
	if b.mapping == nil {
		return nil
	}
	mapping := b.mapping
	b.mapping = nil
	b.data = nil
	if err := unix.Munmap(mapping); err != nil {
		return fmt.Errorf("munmap: %w", err)
	}
	return nil
}

// IsAligned reports whether p starts on an align boundary and has a
// length that is a multiple of align
func IsAligned(p []byte, align int) bool {
	if len(p) == 0 {
		return false
	}
	addr := uintptr(unsafe.Pointer(&p[0]))
	return addr&uintptr(align-1) == 0 && len(p)%align == 0
}
