package convolve

// ConvolveParams carries the rounding and compound-prediction state of one
// kernel call.
type ConvolveParams struct {
	// DoAverage blends the new prediction with the one already held in Dst
	// and writes final pixels. When false a compound kernel only stores
	// into Dst.
	DoAverage  bool
	IsCompound bool

	// Dst is the compound accumulator, DstStride elements per row.
	Dst       []uint16
	DstStride int

	Round0 int
	Round1 int

	// UseDistWtdCompAvg selects (FwdOffset, BckOffset) weighting over a
	// plain 1:1 average.
	UseDistWtdCompAvg bool
	FwdOffset         int
	BckOffset         int
}

// NoRoundParams returns parameters for a kernel whose intermediate results
// keep full precision. The first-stage rounding grows when bd would push the
// intermediate values past 16 bits.
func NoRoundParams(doAverage bool, dst []uint16, dstStride int, isCompound bool, bd int) ConvolveParams {
	cp := ConvolveParams{
		DoAverage:  doAverage,
		IsCompound: isCompound,
		Dst:        dst,
		DstStride:  dstStride,
		Round0:     Round0Bits,
	}
	if isCompound {
		cp.Round1 = CompoundRound1Bits
	} else {
		cp.Round1 = 2*FilterBits - cp.Round0
	}
	intbufrange := bd + FilterBits - cp.Round0 + 2
	if intbufrange > 16 {
		cp.Round0 += intbufrange - 16
		if !isCompound {
			cp.Round1 -= intbufrange - 16
		}
	}
	return cp
}
