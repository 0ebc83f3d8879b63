package harness

import (
	"fmt"
	"slices"
)

// Buffer names reported in a Mismatch.
const (
	BufferOutput      = "output"
	BufferAccumulator = "accumulator"
	BufferInput       = "input"
)

// Mismatch describes the first sample where the candidate diverged from
// the reference.
type Mismatch struct {
	// Buffer is BufferOutput, BufferAccumulator or BufferInput.
	Buffer string
	// Index is the linear position in the buffer; Row and Col are the
	// same position relative to the buffer's first sample.
	Index, Row, Col int
	W, H            int
	SubX, SubY      int
	Ref, Tst        int
	// OutsideBlock is set when the buffers only differ beyond the
	// nominal W x H block.
	OutsideBlock bool
	// Context names the suite, configuration, filters and blend.
	Context string
}

func (m *Mismatch) Error() string {
	s := fmt.Sprintf("%dx%d %s mismatch at index %d = (%d, %d), sub-pixel offset = (%d, %d): ref %d, tst %d",
		m.W, m.H, m.Buffer, m.Index, m.Col, m.Row, m.SubX, m.SubY, m.Ref, m.Tst)
	if m.OutsideBlock {
		s += " (outside block)"
	}
	if m.Context != "" {
		s = m.Context + ": " + s
	}
	return s
}

// Is reports whether target is ErrMismatch.
func (m *Mismatch) Is(target error) bool { return target == ErrMismatch }

// compareRegion compares the whole buffers first and only scans for the
// first differing sample when they disagree. Positions inside the w x h
// block are reported in preference to positions outside it.
func compareRegion[T Sample](name string, ref, tst []T, stride, w, h int) *Mismatch {
	if slices.Equal(ref, tst) {
		return nil
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*stride + x
			if ref[i] != tst[i] {
				return &Mismatch{Buffer: name, Index: i, Row: y, Col: x, W: w, H: h,
					Ref: int(ref[i]), Tst: int(tst[i])}
			}
		}
	}
	for i := range ref {
		if ref[i] != tst[i] {
			return &Mismatch{Buffer: name, Index: i, Row: i / stride, Col: i % stride, W: w, H: h,
				Ref: int(ref[i]), Tst: int(tst[i]), OutsideBlock: true}
		}
	}
	// Lengths differ.
	n := min(len(ref), len(tst))
	return &Mismatch{Buffer: name, Index: n, Row: n / stride, Col: n % stride, W: w, H: h, OutsideBlock: true}
}

// Comparator checks the buffers of a fixture after each invocation.
type Comparator[S Sample] struct {
	fix      *Fixture[S]
	compound bool
}

// NewComparator returns a comparator over fix. Accumulators are only
// compared for compound kernels.
func NewComparator[S Sample](fix *Fixture[S], compound bool) *Comparator[S] {
	return &Comparator[S]{fix: fix, compound: compound}
}

// Check returns a *Mismatch for the first divergence after inv, or nil.
// Outputs are checked before accumulators, and both before the input,
// which neither kernel may modify.
func (c *Comparator[S]) Check(inv *Invocation) error {
	m := compareRegion(BufferOutput, c.fix.OutRef.Slice(), c.fix.OutTst.Slice(), OutputStride, inv.W, inv.H)
	if m == nil && c.compound {
		m = compareRegion(BufferAccumulator, c.fix.AccRef.Slice(), c.fix.AccTst.Slice(), OutputStride, inv.W, inv.H)
	}
	if m == nil {
		m = compareRegion(BufferInput, c.fix.pristine, c.fix.Input.Slice(), InputSize, InputSize, InputSize)
	}
	if m == nil {
		return nil
	}
	m.W, m.H = inv.W, inv.H
	m.SubX, m.SubY = inv.SubX, inv.SubY
	return m
}
