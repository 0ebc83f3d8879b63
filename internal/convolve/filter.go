package convolve

import "fmt"

// Fixed-point and geometry constants shared by every kernel.
const (
	FilterBits   = 7
	SubpelBits   = 4
	SubpelMask   = 1<<SubpelBits - 1
	SubpelShifts = 1 << SubpelBits
	SubpelTaps   = 8

	Round0Bits         = 3
	CompoundRound1Bits = 7
	DistPrecisionBits  = 4

	MaxSBSize   = 128
	MaxSBSquare = MaxSBSize * MaxSBSize
)

// InterpFilter selects an interpolation filter family.
type InterpFilter uint8

const (
	EightTapRegular InterpFilter = iota
	EightTapSmooth
	MultiTapSharp
	Bilinear
	// InterpFiltersAll is the number of switchable families.
	InterpFiltersAll
)

func (f InterpFilter) String() string {
	switch f {
	case EightTapRegular:
		return "regular"
	case EightTapSmooth:
		return "smooth"
	case MultiTapSharp:
		return "sharp"
	case Bilinear:
		return "bilinear"
	default:
		return fmt.Sprintf("InterpFilter(%d)", uint8(f))
	}
}

// KernelTable holds one tap row per sub-pixel phase. The built-in tables are
// shared by every caller and are never written.
type KernelTable [SubpelShifts][SubpelTaps]int16

// FilterParams describes the taps used along one axis.
type FilterParams struct {
	Kernels      *KernelTable
	Taps         int
	SubpelShifts int
	Filter       InterpFilter
}

// Kernel returns the tap row for the given phase.
func (p *FilterParams) Kernel(subpel int) []int16 {
	return p.Kernels[subpel&SubpelMask][:p.Taps]
}

var subPelFilters8 = KernelTable{
	{0, 0, 0, 128, 0, 0, 0, 0}, {0, 2, -6, 126, 8, -2, 0, 0},
	{0, 2, -10, 122, 18, -4, 0, 0}, {0, 2, -12, 116, 28, -8, 2, 0},
	{0, 2, -14, 110, 38, -10, 2, 0}, {0, 2, -14, 102, 48, -12, 2, 0},
	{0, 2, -16, 94, 58, -12, 2, 0}, {0, 2, -14, 84, 66, -12, 2, 0},
	{0, 2, -14, 76, 76, -14, 2, 0}, {0, 2, -12, 66, 84, -14, 2, 0},
	{0, 2, -12, 58, 94, -16, 2, 0}, {0, 2, -12, 48, 102, -14, 2, 0},
	{0, 2, -10, 38, 110, -14, 2, 0}, {0, 2, -8, 28, 116, -12, 2, 0},
	{0, 0, -4, 18, 122, -10, 2, 0}, {0, 0, -2, 8, 126, -6, 2, 0},
}

var subPelFilters8Smooth = KernelTable{
	{0, 0, 0, 128, 0, 0, 0, 0}, {0, 2, 28, 62, 34, 2, 0, 0},
	{0, 0, 26, 62, 36, 4, 0, 0}, {0, 0, 22, 62, 40, 4, 0, 0},
	{0, 0, 20, 60, 42, 6, 0, 0}, {0, 0, 18, 58, 44, 8, 0, 0},
	{0, 0, 16, 56, 46, 10, 0, 0}, {0, -2, 16, 54, 48, 12, 0, 0},
	{0, -2, 14, 52, 52, 14, -2, 0}, {0, 0, 12, 48, 54, 16, -2, 0},
	{0, 0, 10, 46, 56, 16, 0, 0}, {0, 0, 8, 44, 58, 18, 0, 0},
	{0, 0, 6, 42, 60, 20, 0, 0}, {0, 0, 4, 40, 62, 22, 0, 0},
	{0, 0, 4, 36, 62, 26, 0, 0}, {0, 0, 2, 34, 62, 28, 2, 0},
}

var subPelFilters8Sharp = KernelTable{
	{0, 0, 0, 128, 0, 0, 0, 0}, {-2, 2, -6, 126, 8, -2, 2, 0},
	{-2, 6, -12, 124, 16, -6, 4, -2}, {-2, 8, -18, 120, 26, -10, 6, -2},
	{-4, 10, -22, 116, 38, -14, 6, -2}, {-4, 10, -22, 108, 48, -18, 8, -2},
	{-4, 10, -24, 100, 60, -20, 8, -2}, {-4, 10, -24, 90, 70, -22, 10, -2},
	{-4, 12, -24, 80, 80, -24, 12, -4}, {-2, 10, -22, 70, 90, -24, 10, -4},
	{-2, 8, -20, 60, 100, -24, 10, -4}, {-2, 8, -18, 48, 108, -22, 10, -4},
	{-2, 6, -14, 38, 116, -22, 10, -4}, {-2, 6, -10, 26, 120, -18, 8, -2},
	{-2, 4, -6, 16, 124, -12, 6, -2}, {0, 2, -2, 8, 126, -6, 2, -2},
}

var bilinearFilters = KernelTable{
	{0, 0, 0, 128, 0, 0, 0, 0}, {0, 0, 0, 120, 8, 0, 0, 0},
	{0, 0, 0, 112, 16, 0, 0, 0}, {0, 0, 0, 104, 24, 0, 0, 0},
	{0, 0, 0, 96, 32, 0, 0, 0}, {0, 0, 0, 88, 40, 0, 0, 0},
	{0, 0, 0, 80, 48, 0, 0, 0}, {0, 0, 0, 72, 56, 0, 0, 0},
	{0, 0, 0, 64, 64, 0, 0, 0}, {0, 0, 0, 56, 72, 0, 0, 0},
	{0, 0, 0, 48, 80, 0, 0, 0}, {0, 0, 0, 40, 88, 0, 0, 0},
	{0, 0, 0, 32, 96, 0, 0, 0}, {0, 0, 0, 24, 104, 0, 0, 0},
	{0, 0, 0, 16, 112, 0, 0, 0}, {0, 0, 0, 8, 120, 0, 0, 0},
}

// 4-tap variants used for narrow blocks.
var subPelFilters4 = KernelTable{
	{0, 0, 0, 128, 0, 0, 0, 0}, {0, 0, -4, 126, 8, -2, 0, 0},
	{0, 0, -8, 122, 18, -4, 0, 0}, {0, 0, -10, 116, 28, -6, 0, 0},
	{0, 0, -12, 110, 38, -8, 0, 0}, {0, 0, -12, 102, 48, -10, 0, 0},
	{0, 0, -14, 94, 58, -10, 0, 0}, {0, 0, -12, 84, 66, -10, 0, 0},
	{0, 0, -12, 76, 76, -12, 0, 0}, {0, 0, -10, 66, 84, -12, 0, 0},
	{0, 0, -10, 58, 94, -14, 0, 0}, {0, 0, -10, 48, 102, -12, 0, 0},
	{0, 0, -8, 38, 110, -12, 0, 0}, {0, 0, -6, 28, 116, -10, 0, 0},
	{0, 0, -4, 18, 122, -8, 0, 0}, {0, 0, -2, 8, 126, -4, 0, 0},
}

var subPelFilters4Smooth = KernelTable{
	{0, 0, 0, 128, 0, 0, 0, 0}, {0, 0, 30, 62, 34, 2, 0, 0},
	{0, 0, 26, 62, 36, 4, 0, 0}, {0, 0, 22, 62, 40, 4, 0, 0},
	{0, 0, 20, 60, 42, 6, 0, 0}, {0, 0, 18, 58, 44, 8, 0, 0},
	{0, 0, 16, 56, 46, 10, 0, 0}, {0, 0, 14, 54, 48, 12, 0, 0},
	{0, 0, 12, 52, 52, 12, 0, 0}, {0, 0, 12, 48, 54, 14, 0, 0},
	{0, 0, 10, 46, 56, 16, 0, 0}, {0, 0, 8, 44, 58, 18, 0, 0},
	{0, 0, 6, 42, 60, 20, 0, 0}, {0, 0, 4, 40, 62, 22, 0, 0},
	{0, 0, 4, 36, 62, 26, 0, 0}, {0, 0, 2, 34, 62, 30, 0, 0},
}

var interpFilterParams = [InterpFiltersAll]FilterParams{
	{&subPelFilters8, SubpelTaps, SubpelShifts, EightTapRegular},
	{&subPelFilters8Smooth, SubpelTaps, SubpelShifts, EightTapSmooth},
	{&subPelFilters8Sharp, SubpelTaps, SubpelShifts, MultiTapSharp},
	{&bilinearFilters, SubpelTaps, SubpelShifts, Bilinear},
}

var interp4TapParams = [InterpFiltersAll]FilterParams{
	{&subPelFilters4, SubpelTaps, SubpelShifts, EightTapRegular},
	{&subPelFilters4Smooth, SubpelTaps, SubpelShifts, EightTapSmooth},
	{&subPelFilters4, SubpelTaps, SubpelShifts, EightTapRegular},
	{&bilinearFilters, SubpelTaps, SubpelShifts, Bilinear},
}

// FilterParamsForBlock returns the taps for filter f along an axis whose
// block dimension is size. Dimensions of 4 or less use the 4-tap tables.
// It panics if f is not a switchable family.
func FilterParamsForBlock(f InterpFilter, size int) FilterParams {
	if f >= InterpFiltersAll {
		panic(fmt.Sprintf("convolve: invalid interpolation filter %d", f))
	}
	if size <= 4 {
		return interp4TapParams[f]
	}
	return interpFilterParams[f]
}
