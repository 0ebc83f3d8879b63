package convolve

// Lane-batched candidate kernels.
//
// These compute the same fixed-point results as the reference kernels but
// are shaped like vector code: a row is processed width columns at a time
// in a fixed int32 lane array, taps are applied tap-major across all lanes,
// zero taps at either end of a phase are skipped, and clipping is
// branch-light. Integer addition is associative, so none of this may change
// a single output bit.

// maxLanes bounds the lane width a kernel set can be built with.
const maxLanes = 16

type laneAcc [maxLanes]int32

// tapRow is one phase's taps widened to int32 with its zero taps trimmed.
// Only coef[lo:hi] is non-zero.
type tapRow struct {
	coef   [SubpelTaps]int32
	lo, hi int
}

func makeTapRow(k []int16) tapRow {
	t := tapRow{lo: len(k)}
	for i, c := range k {
		t.coef[i] = int32(c)
		if c != 0 {
			if i < t.lo {
				t.lo = i
			}
			t.hi = i + 1
		}
	}
	if t.lo > t.hi {
		t.lo = t.hi
	}
	return t
}

type tapSource interface {
	~uint8 | ~uint16 | ~int16
}

// accumulate sets acc[:n] to bias plus taps t applied to n consecutive
// lanes. Tap k of lane i reads src[pos+k*step+i].
func accumulate[T tapSource](acc *laneAcc, n int, src []T, pos, step int, t *tapRow, bias int32) {
	a := acc[:n]
	for i := range a {
		a[i] = bias
	}
	for k := t.lo; k < t.hi; k++ {
		c := t.coef[k]
		base := pos + k*step
		row := src[base : base+n]
		for i, s := range row {
			a[i] += c * int32(s)
		}
	}
}

// horizontalPass filters the h+taps-1 rows needed by the vertical pass into
// an int16 intermediate block of stride w.
func horizontalPass[S sample](width int, src []S, srcOff, srcStride, w, h int,
	fx, fy *FilterParams, subX, round0, bd int) []int16 {
	imH := h + fy.Taps - 1
	im := make([]int16, imH*w)
	foVert := fy.Taps/2 - 1
	foHoriz := fx.Taps/2 - 1
	xt := makeTapRow(fx.Kernel(subX))
	bias := int32(1) << (bd + FilterBits - 1)

	var acc laneAcc
	for y := 0; y < imH; y++ {
		rowPos := srcOff + (y-foVert)*srcStride - foHoriz
		out := im[y*w : (y+1)*w]
		for x := 0; x < w; x += width {
			n := min(width, w-x)
			accumulate(&acc, n, src, rowPos+x, 1, &xt, bias)
			for i := 0; i < n; i++ {
				out[x+i] = int16(roundPow2(acc[i], round0))
			}
		}
	}
	return im
}

// blendLanes finishes n compound lanes held in res: it stores them in the
// accumulator, or averages them with it and writes pixels to out.
func blendLanes[S sample](out []S, acc []uint16, res *laneAcc, n int, cp *ConvolveParams,
	roundOffset int32, roundBits int, hi int32) {
	r := res[:n]
	a := acc[:n]
	if !cp.DoAverage {
		for i, v := range r {
			a[i] = uint16(v)
		}
		return
	}
	o := out[:n]
	if !cp.UseDistWtdCompAvg {
		for i, v := range r {
			o[i] = clipFast[S](roundPow2((int32(a[i])+v)>>1-roundOffset, roundBits), hi)
		}
		return
	}
	fwd, bck := int32(cp.FwdOffset), int32(cp.BckOffset)
	for i, v := range r {
		tmp := (int32(a[i])*fwd + v*bck) >> DistPrecisionBits
		o[i] = clipFast[S](roundPow2(tmp-roundOffset, roundBits), hi)
	}
}

func laneConvolve2DSR[S sample](width int, src []S, srcOff, srcStride int, dst []S, dstStride, w, h int,
	fx, fy *FilterParams, subX, subY int, cp *ConvolveParams, bd int) {
	im := horizontalPass(width, src, srcOff, srcStride, w, h, fx, fy, subX, cp.Round0, bd)
	yt := makeTapRow(fy.Kernel(subY))
	offsetBits := bd + 2*FilterBits - cp.Round0
	bias := int32(1) << offsetBits
	roundOffset := int32(1)<<(offsetBits-cp.Round1) + int32(1)<<(offsetBits-cp.Round1-1)
	bits := 2*FilterBits - cp.Round0 - cp.Round1
	hi := pixelMax(bd)

	var acc laneAcc
	for y := 0; y < h; y++ {
		out := dst[y*dstStride : y*dstStride+w]
		for x := 0; x < w; x += width {
			n := min(width, w-x)
			accumulate(&acc, n, im, y*w+x, w, &yt, bias)
			for i := 0; i < n; i++ {
				out[x+i] = clipFast[S](roundPow2(roundPow2(acc[i], cp.Round1)-roundOffset, bits), hi)
			}
		}
	}
}

func laneConvolveXSR[S sample](width int, src []S, srcOff, srcStride int, dst []S, dstStride, w, h int,
	fx, _ *FilterParams, subX, _ int, cp *ConvolveParams, bd int) {
	foHoriz := fx.Taps/2 - 1
	bits := FilterBits - cp.Round0
	xt := makeTapRow(fx.Kernel(subX))
	hi := pixelMax(bd)

	var acc laneAcc
	for y := 0; y < h; y++ {
		rowPos := srcOff + y*srcStride - foHoriz
		out := dst[y*dstStride : y*dstStride+w]
		for x := 0; x < w; x += width {
			n := min(width, w-x)
			accumulate(&acc, n, src, rowPos+x, 1, &xt, 0)
			for i := 0; i < n; i++ {
				out[x+i] = clipFast[S](roundPow2(roundPow2(acc[i], cp.Round0), bits), hi)
			}
		}
	}
}

func laneConvolveYSR[S sample](width int, src []S, srcOff, srcStride int, dst []S, dstStride, w, h int,
	_, fy *FilterParams, _, subY int, _ *ConvolveParams, bd int) {
	foVert := fy.Taps/2 - 1
	yt := makeTapRow(fy.Kernel(subY))
	hi := pixelMax(bd)

	var acc laneAcc
	for y := 0; y < h; y++ {
		rowPos := srcOff + (y-foVert)*srcStride
		out := dst[y*dstStride : y*dstStride+w]
		for x := 0; x < w; x += width {
			n := min(width, w-x)
			accumulate(&acc, n, src, rowPos+x, srcStride, &yt, 0)
			for i := 0; i < n; i++ {
				out[x+i] = clipFast[S](roundPow2(acc[i], FilterBits), hi)
			}
		}
	}
}

func laneConvolve2DCopySR[S sample](width int, src []S, srcOff, srcStride int, dst []S, dstStride, w, h int,
	_, _ *FilterParams, _, _ int, _ *ConvolveParams, _ int) {
	for y := 0; y < h; y++ {
		in := src[srcOff+y*srcStride : srcOff+y*srcStride+w]
		out := dst[y*dstStride : y*dstStride+w]
		for x := 0; x < w; x += width {
			n := min(width, w-x)
			copy(out[x:x+n], in[x:x+n])
		}
	}
}

func laneDistWtdConvolve2D[S sample](width int, src []S, srcOff, srcStride int, dst []S, dstStride, w, h int,
	fx, fy *FilterParams, subX, subY int, cp *ConvolveParams, bd int) {
	im := horizontalPass(width, src, srcOff, srcStride, w, h, fx, fy, subX, cp.Round0, bd)
	yt := makeTapRow(fy.Kernel(subY))
	offsetBits := bd + 2*FilterBits - cp.Round0
	bias := int32(1) << offsetBits
	roundOffset, roundBits := compoundOffsets(cp, bd)
	hi := pixelMax(bd)

	var acc laneAcc
	for y := 0; y < h; y++ {
		for x := 0; x < w; x += width {
			n := min(width, w-x)
			accumulate(&acc, n, im, y*w+x, w, &yt, bias)
			for i := 0; i < n; i++ {
				acc[i] = int32(uint16(roundPow2(acc[i], cp.Round1)))
			}
			blendLanes(dst[y*dstStride+x:], cp.Dst[y*cp.DstStride+x:], &acc, n, cp, roundOffset, roundBits, hi)
		}
	}
}

func laneDistWtdConvolveX[S sample](width int, src []S, srcOff, srcStride int, dst []S, dstStride, w, h int,
	fx, _ *FilterParams, subX, _ int, cp *ConvolveParams, bd int) {
	foHoriz := fx.Taps/2 - 1
	bits := FilterBits - cp.Round1
	roundOffset, roundBits := compoundOffsets(cp, bd)
	xt := makeTapRow(fx.Kernel(subX))
	hi := pixelMax(bd)

	var acc laneAcc
	for y := 0; y < h; y++ {
		rowPos := srcOff + y*srcStride - foHoriz
		for x := 0; x < w; x += width {
			n := min(width, w-x)
			accumulate(&acc, n, src, rowPos+x, 1, &xt, 0)
			for i := 0; i < n; i++ {
				acc[i] = roundPow2(acc[i], cp.Round0)<<bits + roundOffset
			}
			blendLanes(dst[y*dstStride+x:], cp.Dst[y*cp.DstStride+x:], &acc, n, cp, roundOffset, roundBits, hi)
		}
	}
}

func laneDistWtdConvolveY[S sample](width int, src []S, srcOff, srcStride int, dst []S, dstStride, w, h int,
	_, fy *FilterParams, _, subY int, cp *ConvolveParams, bd int) {
	foVert := fy.Taps/2 - 1
	bits := FilterBits - cp.Round0
	roundOffset, roundBits := compoundOffsets(cp, bd)
	yt := makeTapRow(fy.Kernel(subY))
	hi := pixelMax(bd)

	var acc laneAcc
	for y := 0; y < h; y++ {
		rowPos := srcOff + (y-foVert)*srcStride
		for x := 0; x < w; x += width {
			n := min(width, w-x)
			accumulate(&acc, n, src, rowPos+x, srcStride, &yt, 0)
			for i := 0; i < n; i++ {
				acc[i] = roundPow2(acc[i]<<bits, cp.Round1) + roundOffset
			}
			blendLanes(dst[y*dstStride+x:], cp.Dst[y*cp.DstStride+x:], &acc, n, cp, roundOffset, roundBits, hi)
		}
	}
}

func laneDistWtdConvolve2DCopy[S sample](width int, src []S, srcOff, srcStride int, dst []S, dstStride, w, h int,
	_, _ *FilterParams, _, _ int, cp *ConvolveParams, bd int) {
	bits := 2*FilterBits - cp.Round1 - cp.Round0
	roundOffset, roundBits := compoundOffsets(cp, bd)
	hi := pixelMax(bd)

	var acc laneAcc
	for y := 0; y < h; y++ {
		in := src[srcOff+y*srcStride:]
		for x := 0; x < w; x += width {
			n := min(width, w-x)
			for i, s := range in[x : x+n] {
				acc[i] = int32(s)<<bits + roundOffset
			}
			blendLanes(dst[y*dstStride+x:], cp.Dst[y*cp.DstStride+x:], &acc, n, cp, roundOffset, roundBits, hi)
		}
	}
}
