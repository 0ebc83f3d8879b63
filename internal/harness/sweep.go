package harness

import (
	"fmt"

	"github.com/deepteams/convcheck/internal/convolve"
)

// FilterPair is the (horizontal, vertical) filter family of one sweep step.
type FilterPair struct {
	X, Y convolve.InterpFilter
}

func (p FilterPair) String() string { return p.X.String() + "/" + p.Y.String() }

// inactiveFilter is the single family used on an axis without sub-pixel
// motion. At phase 0 every family is the identity tap.
const inactiveFilter = convolve.EightTapSmooth

func axisFilters(active bool) []convolve.InterpFilter {
	if !active {
		return []convolve.InterpFilter{inactiveFilter}
	}
	out := make([]convolve.InterpFilter, 0, convolve.InterpFiltersAll)
	for f := convolve.EightTapRegular; f < convolve.InterpFiltersAll; f++ {
		out = append(out, f)
	}
	return out
}

// FilterPairs returns every filter pair permitted by the sub-pixel flags.
func FilterPairs(hasX, hasY bool) []FilterPair {
	var out []FilterPair
	for _, fx := range axisFilters(hasX) {
		for _, fy := range axisFilters(hasY) {
			out = append(out, FilterPair{X: fx, Y: fy})
		}
	}
	return out
}

// Phase is a (horizontal, vertical) sub-pixel phase in 1/16 sample units.
type Phase struct {
	X, Y int
}

// AllPhases lists every sub-pixel phase.
func AllPhases() []int {
	out := make([]int, convolve.SubpelShifts)
	for i := range out {
		out[i] = i
	}
	return out
}

// Phases returns the phase pairs to sweep. values lists the phases used on
// an active axis; nil means all of them, an empty list is rejected. An
// inactive axis stays at 0.
func Phases(hasX, hasY bool, values []int) ([]Phase, error) {
	if values == nil {
		values = AllPhases()
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: empty phase list", ErrInvalidConfig)
	}
	for _, v := range values {
		if v < 0 || v >= convolve.SubpelShifts {
			return nil, fmt.Errorf("%w: sub-pixel phase %d", ErrInvalidConfig, v)
		}
	}
	xs, ys := []int{0}, []int{0}
	if hasX {
		xs = values
	}
	if hasY {
		ys = values
	}
	out := make([]Phase, 0, len(xs)*len(ys))
	for _, x := range xs {
		for _, y := range ys {
			out = append(out, Phase{X: x, Y: y})
		}
	}
	return out, nil
}
