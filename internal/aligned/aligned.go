// Package aligned allocates sample buffers whose first element sits on a
// 32-byte boundary, as required by the vectorized candidate kernels.
//
// A Buffer owns a pooled byte block and exposes a typed view of it. The
// alignment arithmetic lives here only; callers never pad or mask pointers.
package aligned

import (
	"fmt"
	"unsafe"

	"github.com/deepteams/convcheck/internal/pool"
)

// Alignment is the byte boundary of every buffer's first element.
const Alignment = 32

// Element is the set of types a Buffer can hold.
type Element interface {
	~uint8 | ~uint16 | ~int16 | ~int32
}

// Buffer is a fixed-length, 32-byte aligned array of T.
type Buffer[T Element] struct {
	block []byte
	data  []T
}

// New allocates a zeroed buffer of n elements. It panics if n <= 0.
func New[T Element](n int) *Buffer[T] {
	if n <= 0 {
		panic(fmt.Sprintf("aligned: invalid length %d", n))
	}
	var zero T
	elem := int(unsafe.Sizeof(zero))

	block := pool.Get(n*elem + Alignment - 1)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(block)))
	off := int((Alignment - base%Alignment) % Alignment)

	data := unsafe.Slice((*T)(unsafe.Pointer(&block[off])), n)
	clear(data)
	return &Buffer[T]{block: block, data: data}
}

// Len returns the number of elements.
func (b *Buffer[T]) Len() int { return len(b.live()) }

// Slice returns the whole buffer. The slice is invalid after Release.
func (b *Buffer[T]) Slice() []T { return b.live() }

// Sub returns elements [off, off+n).
func (b *Buffer[T]) Sub(off, n int) []T {
	d := b.live()
	if off < 0 || n < 0 || off+n > len(d) {
		panic(fmt.Sprintf("aligned: window [%d:%d] out of range [0:%d]", off, off+n, len(d)))
	}
	return d[off : off+n : off+n]
}

// At returns element i.
func (b *Buffer[T]) At(i int) T {
	d := b.live()
	if uint(i) >= uint(len(d)) {
		panic(fmt.Sprintf("aligned: index %d out of range [0:%d]", i, len(d)))
	}
	return d[i]
}

// Set stores v at element i.
func (b *Buffer[T]) Set(i int, v T) {
	d := b.live()
	if uint(i) >= uint(len(d)) {
		panic(fmt.Sprintf("aligned: index %d out of range [0:%d]", i, len(d)))
	}
	d[i] = v
}

// Reset zeroes every element.
func (b *Buffer[T]) Reset() { clear(b.live()) }

// Fill stores v in every element.
func (b *Buffer[T]) Fill(v T) {
	d := b.live()
	for i := range d {
		d[i] = v
	}
}

// Aligned reports whether the first element is on an Alignment boundary.
func (b *Buffer[T]) Aligned() bool {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b.live())))%Alignment == 0
}

// Released reports whether Release has been called.
func (b *Buffer[T]) Released() bool { return b.data == nil }

// Release hands the backing block back to the pool. Calling it twice is a
// no-op; any other use after Release panics.
func (b *Buffer[T]) Release() {
	if b.data == nil {
		return
	}
	b.data = nil
	pool.Put(b.block)
	b.block = nil
}

func (b *Buffer[T]) live() []T {
	if b.data == nil {
		panic("aligned: use of released buffer")
	}
	return b.data
}
