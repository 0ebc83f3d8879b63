package harness

import (
	"github.com/deepteams/convcheck/internal/aligned"
	"github.com/deepteams/convcheck/internal/convolve"
	"github.com/deepteams/convcheck/internal/random"
)

const (
	// InputSize is the width and height of the square input buffer. It
	// covers the largest block plus the filter footprint on every side.
	InputSize = 160
	// SourceOffset is the row and column of the block origin inside the
	// input, so the 8-tap footprint never reads before the buffer.
	SourceOffset = convolve.SubpelTaps/2 - 1
	// OutputStride is the row pitch of every output and accumulator.
	OutputStride = convolve.MaxSBSize

	outputLen = convolve.MaxSBSquare
)

// Sample is a pixel storage type.
type Sample interface {
	~uint8 | ~uint16
}

// Fixture owns the input, the per-implementation outputs and accumulators,
// and the random source of one configuration run.
type Fixture[S Sample] struct {
	Input  *aligned.Buffer[S]
	OutRef *aligned.Buffer[S]
	OutTst *aligned.Buffer[S]
	AccRef *aligned.Buffer[uint16]
	AccTst *aligned.Buffer[uint16]

	pristine []S
	rng      *random.Generator
}

// NewFixture allocates zeroed buffers and a generator seeded with seed;
// seed 0 selects the default stream.
func NewFixture[S Sample](seed uint64) *Fixture[S] {
	rng := random.New()
	if seed != 0 {
		rng = random.NewSeeded(seed)
	}
	return &Fixture[S]{
		Input:    aligned.New[S](InputSize * InputSize),
		OutRef:   aligned.New[S](outputLen),
		OutTst:   aligned.New[S](outputLen),
		AccRef:   aligned.New[uint16](outputLen),
		AccTst:   aligned.New[uint16](outputLen),
		pristine: make([]S, InputSize*InputSize),
		rng:      rng,
	}
}

// Prepare fills the input with bd-bit random samples and zeroes the
// outputs and accumulators.
func (f *Fixture[S]) Prepare(bd int) {
	in := f.Input.Slice()
	switch s := any(in).(type) {
	case []uint8:
		f.rng.Fill8(s, bd)
	case []uint16:
		f.rng.Fill16(s, bd)
	default:
		for i := range in {
			in[i] = S(f.rng.Bits(bd))
		}
	}
	copy(f.pristine, in)
	f.OutRef.Reset()
	f.OutTst.Reset()
	f.AccRef.Reset()
	f.AccTst.Reset()
}

// SourceOrigin is the index of the block origin within Input.
func (f *Fixture[S]) SourceOrigin() int {
	return SourceOffset*InputSize + SourceOffset
}

// Close returns the buffers to the pool. The fixture must not be used
// afterwards.
func (f *Fixture[S]) Close() {
	f.Input.Release()
	f.OutRef.Release()
	f.OutTst.Release()
	f.AccRef.Release()
	f.AccTst.Release()
	f.pristine = nil
}
