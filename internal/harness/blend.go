package harness

import (
	"fmt"

	"github.com/deepteams/convcheck/internal/convolve"
)

// QuantDistLookup holds the distance-weighted compound weights. Each pair
// sums to 1<<DistPrecisionBits; the second row mirrors the first.
var QuantDistLookup = [2][4][2]int{
	{{9, 7}, {11, 5}, {12, 4}, {13, 3}},
	{{7, 9}, {5, 11}, {4, 12}, {3, 13}},
}

// Blend is the compound blending setting of one invocation.
type Blend struct {
	// DoAverage averages with the prediction already in the accumulator
	// instead of storing into it.
	DoAverage bool
	// DistWtd selects (Fwd, Bck) weighting over a plain average.
	DistWtd bool
	Fwd     int
	Bck     int
}

func (b Blend) String() string {
	mode := "store"
	if b.DoAverage {
		mode = "avg"
	}
	if !b.DistWtd {
		return mode
	}
	return fmt.Sprintf("%s_w%d_%d", mode, b.Fwd, b.Bck)
}

// Validate rejects weight pairs that do not sum to 1<<DistPrecisionBits.
func (b Blend) Validate() error {
	if !b.DistWtd {
		return nil
	}
	if b.Fwd < 0 || b.Bck < 0 || b.Fwd+b.Bck != 1<<convolve.DistPrecisionBits {
		return fmt.Errorf("%w: blend weights (%d, %d)", ErrInvalidConfig, b.Fwd, b.Bck)
	}
	return nil
}

// Blends returns the blending settings to sweep. A single-reference suite
// has one plain setting. A compound suite first stores and then averages,
// each time running unweighted followed by every weight pair.
func Blends(compound bool) []Blend {
	if !compound {
		return []Blend{{}}
	}
	out := make([]Blend, 0, 2*(1+len(QuantDistLookup)*len(QuantDistLookup[0])))
	for _, avg := range []bool{false, true} {
		out = append(out, Blend{DoAverage: avg})
		for _, row := range QuantDistLookup {
			for _, w := range row {
				out = append(out, Blend{DoAverage: avg, DistWtd: true, Fwd: w[0], Bck: w[1]})
			}
		}
	}
	return out
}

// Params builds the kernel parameters for the setting. acc is the
// compound accumulator and is ignored for single-reference kernels.
func (b Blend) Params(acc []uint16, accStride int, compound bool, bd int) convolve.ConvolveParams {
	if !compound {
		return convolve.NoRoundParams(false, nil, 0, false, bd)
	}
	cp := convolve.NoRoundParams(b.DoAverage, acc, accStride, true, bd)
	cp.UseDistWtdCompAvg = b.DistWtd
	if b.DistWtd {
		cp.FwdOffset = b.Fwd
		cp.BckOffset = b.Bck
	}
	return cp
}
