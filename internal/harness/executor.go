package harness

import "github.com/deepteams/convcheck/internal/convolve"

// Kernel is the family-independent kernel signature the executor drives.
// Narrow kernels ignore bd.
type Kernel[S Sample] func(src []S, srcOff, srcStride int, dst []S, dstStride, w, h int,
	fx, fy *convolve.FilterParams, subX, subY int, cp *convolve.ConvolveParams, bd int)

// KernelTable maps [hasSubpelX][hasSubpelY] to a kernel.
type KernelTable[S Sample] [2][2]Kernel[S]

// Select returns the kernel for the given per-axis sub-pixel activity.
func (t *KernelTable[S]) Select(hasX, hasY bool) Kernel[S] {
	return t[index(hasX)][index(hasY)]
}

func index(b bool) int {
	if b {
		return 1
	}
	return 0
}

// NarrowTable adapts a narrow kernel set.
func NarrowTable(s convolve.Set) KernelTable[uint8] {
	var t KernelTable[uint8]
	for i := range s {
		for j := range s[i] {
			f := s[i][j]
			if f == nil {
				continue
			}
			t[i][j] = func(src []uint8, srcOff, srcStride int, dst []uint8, dstStride, w, h int,
				fx, fy *convolve.FilterParams, subX, subY int, cp *convolve.ConvolveParams, _ int) {
				f(src, srcOff, srcStride, dst, dstStride, w, h, fx, fy, subX, subY, cp)
			}
		}
	}
	return t
}

// WideTable adapts a wide kernel set.
func WideTable(s convolve.HighbdSet) KernelTable[uint16] {
	var t KernelTable[uint16]
	for i := range s {
		for j := range s[i] {
			if s[i][j] != nil {
				t[i][j] = Kernel[uint16](s[i][j])
			}
		}
	}
	return t
}

// Capability is one family and blending variant: the reference table and
// the candidate table under test.
type Capability[S Sample] struct {
	Family   Family
	Compound bool
	Ref      KernelTable[S]
	Tst      KernelTable[S]
}

// Invocation is the complete argument set of one kernel call.
type Invocation struct {
	W, H     int
	FilterX  convolve.FilterParams
	FilterY  convolve.FilterParams
	Filters  FilterPair
	SubX     int
	SubY     int
	BitDepth int
	Blend    Blend
}

// Executor runs the reference and then the candidate on the same input,
// each into its own output and accumulator.
type Executor[S Sample] struct {
	fix      *Fixture[S]
	ref, tst Kernel[S]
	compound bool
}

// NewExecutor binds the kernels of c selected by the sub-pixel flags to fix.
func NewExecutor[S Sample](c *Capability[S], fix *Fixture[S], hasX, hasY bool) *Executor[S] {
	return &Executor[S]{
		fix:      fix,
		ref:      c.Ref.Select(hasX, hasY),
		tst:      c.Tst.Select(hasX, hasY),
		compound: c.Compound,
	}
}

// Execute performs inv with both kernels. Each kernel gets its own copy of
// the filter parameters; the tap tables behind them are shared and must be
// treated as read-only.
func (e *Executor[S]) Execute(inv *Invocation) {
	src := e.fix.Input.Slice()
	off := e.fix.SourceOrigin()

	var accRef, accTst []uint16
	accStride := 0
	if e.compound {
		accRef = e.fix.AccRef.Slice()
		accTst = e.fix.AccTst.Slice()
		accStride = OutputStride
	}
	cpRef := inv.Blend.Params(accRef, accStride, e.compound, inv.BitDepth)
	cpTst := inv.Blend.Params(accTst, accStride, e.compound, inv.BitDepth)

	fxRef, fyRef := inv.FilterX, inv.FilterY
	fxTst, fyTst := inv.FilterX, inv.FilterY
	e.ref(src, off, InputSize, e.fix.OutRef.Slice(), OutputStride, inv.W, inv.H,
		&fxRef, &fyRef, inv.SubX, inv.SubY, &cpRef, inv.BitDepth)
	e.tst(src, off, InputSize, e.fix.OutTst.Slice(), OutputStride, inv.W, inv.H,
		&fxTst, &fyTst, inv.SubX, inv.SubY, &cpTst, inv.BitDepth)
}
