// Package convolve implements the sub-pixel interpolation kernels used for
// motion-compensated block prediction, in two forms: straightforward scalar
// reference kernels and lane-batched candidate kernels that must match them
// bit for bit.
//
// Every kernel reads a source window whose origin is src[srcOff]. Taps read
// up to three rows above and columns left of the origin and four below and
// right of the block, so the caller must leave that margin.
package convolve

// Scalar reference kernels. Each loop mirrors the fixed-point definition
// directly: one output sample at a time, every tap, no shortcuts.

func convolve2DSR[S sample](src []S, srcOff, srcStride int, dst []S, dstStride, w, h int,
	fx, fy *FilterParams, subX, subY int, cp *ConvolveParams, bd int) {
	imH := h + fy.Taps - 1
	imStride := w
	im := make([]int16, imH*imStride)
	foVert := fy.Taps/2 - 1
	foHoriz := fx.Taps/2 - 1
	bits := 2*FilterBits - cp.Round0 - cp.Round1

	xf := fx.Kernel(subX)
	srcHoriz := srcOff - foVert*srcStride
	for y := 0; y < imH; y++ {
		for x := 0; x < w; x++ {
			sum := int32(1) << (bd + FilterBits - 1)
			for k := 0; k < fx.Taps; k++ {
				sum += int32(xf[k]) * int32(src[srcHoriz+y*srcStride+x-foHoriz+k])
			}
			im[y*imStride+x] = int16(roundPow2(sum, cp.Round0))
		}
	}

	yf := fy.Kernel(subY)
	offsetBits := bd + 2*FilterBits - cp.Round0
	roundOffset := int32(1)<<(offsetBits-cp.Round1) + int32(1)<<(offsetBits-cp.Round1-1)
	srcVert := foVert * imStride
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := int32(1) << offsetBits
			for k := 0; k < fy.Taps; k++ {
				sum += int32(yf[k]) * int32(im[srcVert+(y-foVert+k)*imStride+x])
			}
			res := roundPow2(sum, cp.Round1) - roundOffset
			dst[y*dstStride+x] = clampPixel[S](roundPow2(res, bits), bd)
		}
	}
}

func convolveXSR[S sample](src []S, srcOff, srcStride int, dst []S, dstStride, w, h int,
	fx, _ *FilterParams, subX, _ int, cp *ConvolveParams, bd int) {
	foHoriz := fx.Taps/2 - 1
	bits := FilterBits - cp.Round0
	xf := fx.Kernel(subX)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var res int32
			for k := 0; k < fx.Taps; k++ {
				res += int32(xf[k]) * int32(src[srcOff+y*srcStride+x-foHoriz+k])
			}
			res = roundPow2(res, cp.Round0)
			dst[y*dstStride+x] = clampPixel[S](roundPow2(res, bits), bd)
		}
	}
}

func convolveYSR[S sample](src []S, srcOff, srcStride int, dst []S, dstStride, w, h int,
	_, fy *FilterParams, _, subY int, _ *ConvolveParams, bd int) {
	foVert := fy.Taps/2 - 1
	yf := fy.Kernel(subY)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var res int32
			for k := 0; k < fy.Taps; k++ {
				res += int32(yf[k]) * int32(src[srcOff+(y-foVert+k)*srcStride+x])
			}
			dst[y*dstStride+x] = clampPixel[S](roundPow2(res, FilterBits), bd)
		}
	}
}

func convolve2DCopySR[S sample](src []S, srcOff, srcStride int, dst []S, dstStride, w, h int,
	_, _ *FilterParams, _, _ int, _ *ConvolveParams, _ int) {
	for y := 0; y < h; y++ {
		copy(dst[y*dstStride:y*dstStride+w], src[srcOff+y*srcStride:srcOff+y*srcStride+w])
	}
}

// compoundOffsets returns the bias carried by accumulator values and the
// final rounding shift.
func compoundOffsets(cp *ConvolveParams, bd int) (roundOffset int32, roundBits int) {
	offsetBits := bd + 2*FilterBits - cp.Round0
	roundOffset = int32(1)<<(offsetBits-cp.Round1) + int32(1)<<(offsetBits-cp.Round1-1)
	roundBits = 2*FilterBits - cp.Round0 - cp.Round1
	return roundOffset, roundBits
}

// compoundStore either stores res into the accumulator or blends it with the
// accumulated value and writes the final pixel.
func compoundStore[S sample](dst []S, di int, acc []uint16, ai int, res int32,
	cp *ConvolveParams, roundOffset int32, roundBits, bd int) {
	if !cp.DoAverage {
		acc[ai] = uint16(res)
		return
	}
	tmp := int32(acc[ai])
	if cp.UseDistWtdCompAvg {
		tmp = tmp*int32(cp.FwdOffset) + res*int32(cp.BckOffset)
		tmp >>= DistPrecisionBits
	} else {
		tmp += res
		tmp >>= 1
	}
	tmp -= roundOffset
	dst[di] = clampPixel[S](roundPow2(tmp, roundBits), bd)
}

func distWtdConvolve2D[S sample](src []S, srcOff, srcStride int, dst []S, dstStride, w, h int,
	fx, fy *FilterParams, subX, subY int, cp *ConvolveParams, bd int) {
	acc, accStride := cp.Dst, cp.DstStride
	imH := h + fy.Taps - 1
	imStride := w
	im := make([]int16, imH*imStride)
	foVert := fy.Taps/2 - 1
	foHoriz := fx.Taps/2 - 1
	roundOffset, roundBits := compoundOffsets(cp, bd)

	xf := fx.Kernel(subX)
	srcHoriz := srcOff - foVert*srcStride
	for y := 0; y < imH; y++ {
		for x := 0; x < w; x++ {
			sum := int32(1) << (bd + FilterBits - 1)
			for k := 0; k < fx.Taps; k++ {
				sum += int32(xf[k]) * int32(src[srcHoriz+y*srcStride+x-foHoriz+k])
			}
			im[y*imStride+x] = int16(roundPow2(sum, cp.Round0))
		}
	}

	yf := fy.Kernel(subY)
	offsetBits := bd + 2*FilterBits - cp.Round0
	srcVert := foVert * imStride
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := int32(1) << offsetBits
			for k := 0; k < fy.Taps; k++ {
				sum += int32(yf[k]) * int32(im[srcVert+(y-foVert+k)*imStride+x])
			}
			// The accumulator holds 16-bit values.
			res := int32(uint16(roundPow2(sum, cp.Round1)))
			compoundStore(dst, y*dstStride+x, acc, y*accStride+x, res, cp, roundOffset, roundBits, bd)
		}
	}
}

func distWtdConvolveX[S sample](src []S, srcOff, srcStride int, dst []S, dstStride, w, h int,
	fx, _ *FilterParams, subX, _ int, cp *ConvolveParams, bd int) {
	acc, accStride := cp.Dst, cp.DstStride
	foHoriz := fx.Taps/2 - 1
	bits := FilterBits - cp.Round1
	roundOffset, roundBits := compoundOffsets(cp, bd)
	xf := fx.Kernel(subX)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var res int32
			for k := 0; k < fx.Taps; k++ {
				res += int32(xf[k]) * int32(src[srcOff+y*srcStride+x-foHoriz+k])
			}
			res = (int32(1) << bits) * roundPow2(res, cp.Round0)
			res += roundOffset
			compoundStore(dst, y*dstStride+x, acc, y*accStride+x, res, cp, roundOffset, roundBits, bd)
		}
	}
}

func distWtdConvolveY[S sample](src []S, srcOff, srcStride int, dst []S, dstStride, w, h int,
	_, fy *FilterParams, _, subY int, cp *ConvolveParams, bd int) {
	acc, accStride := cp.Dst, cp.DstStride
	foVert := fy.Taps/2 - 1
	bits := FilterBits - cp.Round0
	roundOffset, roundBits := compoundOffsets(cp, bd)
	yf := fy.Kernel(subY)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var res int32
			for k := 0; k < fy.Taps; k++ {
				res += int32(yf[k]) * int32(src[srcOff+(y-foVert+k)*srcStride+x])
			}
			res *= int32(1) << bits
			res = roundPow2(res, cp.Round1) + roundOffset
			compoundStore(dst, y*dstStride+x, acc, y*accStride+x, res, cp, roundOffset, roundBits, bd)
		}
	}
}

func distWtdConvolve2DCopy[S sample](src []S, srcOff, srcStride int, dst []S, dstStride, w, h int,
	_, _ *FilterParams, _, _ int, cp *ConvolveParams, bd int) {
	acc, accStride := cp.Dst, cp.DstStride
	bits := 2*FilterBits - cp.Round1 - cp.Round0
	roundOffset, roundBits := compoundOffsets(cp, bd)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			res := int32(src[srcOff+y*srcStride+x]) << bits
			res += roundOffset
			compoundStore(dst, y*dstStride+x, acc, y*accStride+x, res, cp, roundOffset, roundBits, bd)
		}
	}
}

// Narrow (8-bit) reference entry points.

func Convolve2DSR(src []uint8, srcOff, srcStride int, dst []uint8, dstStride, w, h int,
	fx, fy *FilterParams, subX, subY int, cp *ConvolveParams) {
	convolve2DSR(src, srcOff, srcStride, dst, dstStride, w, h, fx, fy, subX, subY, cp, 8)
}

func ConvolveXSR(src []uint8, srcOff, srcStride int, dst []uint8, dstStride, w, h int,
	fx, fy *FilterParams, subX, subY int, cp *ConvolveParams) {
	convolveXSR(src, srcOff, srcStride, dst, dstStride, w, h, fx, fy, subX, subY, cp, 8)
}

func ConvolveYSR(src []uint8, srcOff, srcStride int, dst []uint8, dstStride, w, h int,
	fx, fy *FilterParams, subX, subY int, cp *ConvolveParams) {
	convolveYSR(src, srcOff, srcStride, dst, dstStride, w, h, fx, fy, subX, subY, cp, 8)
}

func Convolve2DCopySR(src []uint8, srcOff, srcStride int, dst []uint8, dstStride, w, h int,
	fx, fy *FilterParams, subX, subY int, cp *ConvolveParams) {
	convolve2DCopySR(src, srcOff, srcStride, dst, dstStride, w, h, fx, fy, subX, subY, cp, 8)
}

func DistWtdConvolve2D(src []uint8, srcOff, srcStride int, dst []uint8, dstStride, w, h int,
	fx, fy *FilterParams, subX, subY int, cp *ConvolveParams) {
	distWtdConvolve2D(src, srcOff, srcStride, dst, dstStride, w, h, fx, fy, subX, subY, cp, 8)
}

func DistWtdConvolveX(src []uint8, srcOff, srcStride int, dst []uint8, dstStride, w, h int,
	fx, fy *FilterParams, subX, subY int, cp *ConvolveParams) {
	distWtdConvolveX(src, srcOff, srcStride, dst, dstStride, w, h, fx, fy, subX, subY, cp, 8)
}

func DistWtdConvolveY(src []uint8, srcOff, srcStride int, dst []uint8, dstStride, w, h int,
	fx, fy *FilterParams, subX, subY int, cp *ConvolveParams) {
	distWtdConvolveY(src, srcOff, srcStride, dst, dstStride, w, h, fx, fy, subX, subY, cp, 8)
}

func DistWtdConvolve2DCopy(src []uint8, srcOff, srcStride int, dst []uint8, dstStride, w, h int,
	fx, fy *FilterParams, subX, subY int, cp *ConvolveParams) {
	distWtdConvolve2DCopy(src, srcOff, srcStride, dst, dstStride, w, h, fx, fy, subX, subY, cp, 8)
}

// Wide (high bit depth) reference entry points.

func HighbdConvolve2DSR(src []uint16, srcOff, srcStride int, dst []uint16, dstStride, w, h int,
	fx, fy *FilterParams, subX, subY int, cp *ConvolveParams, bd int) {
	convolve2DSR(src, srcOff, srcStride, dst, dstStride, w, h, fx, fy, subX, subY, cp, bd)
}

func HighbdConvolveXSR(src []uint16, srcOff, srcStride int, dst []uint16, dstStride, w, h int,
	fx, fy *FilterParams, subX, subY int, cp *ConvolveParams, bd int) {
	convolveXSR(src, srcOff, srcStride, dst, dstStride, w, h, fx, fy, subX, subY, cp, bd)
}

func HighbdConvolveYSR(src []uint16, srcOff, srcStride int, dst []uint16, dstStride, w, h int,
	fx, fy *FilterParams, subX, subY int, cp *ConvolveParams, bd int) {
	convolveYSR(src, srcOff, srcStride, dst, dstStride, w, h, fx, fy, subX, subY, cp, bd)
}

func HighbdConvolve2DCopySR(src []uint16, srcOff, srcStride int, dst []uint16, dstStride, w, h int,
	fx, fy *FilterParams, subX, subY int, cp *ConvolveParams, bd int) {
	convolve2DCopySR(src, srcOff, srcStride, dst, dstStride, w, h, fx, fy, subX, subY, cp, bd)
}

func HighbdDistWtdConvolve2D(src []uint16, srcOff, srcStride int, dst []uint16, dstStride, w, h int,
	fx, fy *FilterParams, subX, subY int, cp *ConvolveParams, bd int) {
	distWtdConvolve2D(src, srcOff, srcStride, dst, dstStride, w, h, fx, fy, subX, subY, cp, bd)
}

func HighbdDistWtdConvolveX(src []uint16, srcOff, srcStride int, dst []uint16, dstStride, w, h int,
	fx, fy *FilterParams, subX, subY int, cp *ConvolveParams, bd int) {
	distWtdConvolveX(src, srcOff, srcStride, dst, dstStride, w, h, fx, fy, subX, subY, cp, bd)
}

func HighbdDistWtdConvolveY(src []uint16, srcOff, srcStride int, dst []uint16, dstStride, w, h int,
	fx, fy *FilterParams, subX, subY int, cp *ConvolveParams, bd int) {
	distWtdConvolveY(src, srcOff, srcStride, dst, dstStride, w, h, fx, fy, subX, subY, cp, bd)
}

func HighbdDistWtdConvolve2DCopy(src []uint16, srcOff, srcStride int, dst []uint16, dstStride, w, h int,
	fx, fy *FilterParams, subX, subY int, cp *ConvolveParams, bd int) {
	distWtdConvolve2DCopy(src, srcOff, srcStride, dst, dstStride, w, h, fx, fy, subX, subY, cp, bd)
}
