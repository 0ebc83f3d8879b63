// Package pool recycles the raw byte blocks that back aligned sample
// buffers. Blocks are bucketed by size class so fixtures of different
// sample widths draw from separate classes.
package pool

import "sync"

// Size classes. The largest fixture block (a 160x160 wide-sample input plus
// alignment slack) fits in Size64K.
const (
	Size4K   = 4096
	Size16K  = 16384
	Size64K  = 65536
	Size256K = 262144
)

const numClasses = 4

var classSizes = [numClasses]int{Size4K, Size16K, Size64K, Size256K}

var pools [numClasses]sync.Pool

func init() {
	for i := range pools {
		sz := classSizes[i]
		pools[i] = sync.Pool{
			New: func() any {
				b := make([]byte, sz)
				return &b
			},
		}
	}
}

// classIndex returns the bucket for size, or -1 when size exceeds every
// class and the block must be allocated directly.
func classIndex(size int) int {
	for i, sz := range classSizes {
		if size <= sz {
			return i
		}
	}
	return -1
}

// Get returns a block of exactly size bytes. Its contents are unspecified;
// callers clear what they read. Release it with Put.
func Get(size int) []byte {
	idx := classIndex(size)
	if idx < 0 {
		return make([]byte, size)
	}
	bp := pools[idx].Get().(*[]byte)
	return (*bp)[:size]
}

// Put returns a block obtained from Get. Blocks whose capacity does not
// match a class exactly are dropped.
func Put(b []byte) {
	c := cap(b)
	idx := classIndex(c)
	if idx < 0 || classSizes[idx] != c {
		return
	}
	b = b[:c]
	pools[idx].Put(&b)
}
