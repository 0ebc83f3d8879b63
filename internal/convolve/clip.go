package convolve

// sample is the storage type of a pixel: uint8 for the narrow family,
// uint16 for the wide one.
type sample interface {
	~uint8 | ~uint16
}

// pixelMax returns the largest value representable in bd bits.
func pixelMax(bd int) int32 { return int32(1)<<bd - 1 }

// clampPixel clamps v to [0, 2^bd-1].
func clampPixel[S sample](v int32, bd int) S {
	if v < 0 {
		return 0
	}
	if hi := pixelMax(bd); v > hi {
		return S(hi)
	}
	return S(v)
}

// clipFast clamps v to [0, hi] with a single unsigned compare on the hot
// path. hi must be 2^n-1.
func clipFast[S sample](v, hi int32) S {
	if uint32(v) <= uint32(hi) {
		return S(v)
	}
	// v>>31 is 0 for positive v and -1 for negative v.
	return S(^(v >> 31) & hi)
}

// roundPow2 divides v by 2^n rounding half up; n may be 0.
func roundPow2(v int32, n int) int32 {
	return (v + ((int32(1) << n) >> 1)) >> n
}

func boolIndex(b bool) int {
	if b {
		return 1
	}
	return 0
}
