package convolve

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testStride = 48
	testOrigin = 3*testStride + 3
	dstStride  = 32
)

// kernel is the signature shared by the generic kernels.
type kernel[S sample] func(src []S, srcOff, srcStride int, dst []S, dstStride, w, h int,
	fx, fy *FilterParams, subX, subY int, cp *ConvolveParams, bd int)

func narrowKernel(f Func) kernel[uint8] {
	return func(src []uint8, srcOff, srcStride int, dst []uint8, dstStride, w, h int,
		fx, fy *FilterParams, subX, subY int, cp *ConvolveParams, _ int) {
		f(src, srcOff, srcStride, dst, dstStride, w, h, fx, fy, subX, subY, cp)
	}
}

func randomSource[S sample](rng *rand.Rand, bd int) []S {
	src := make([]S, testStride*testStride)
	for i := range src {
		src[i] = S(rng.Intn(1 << bd))
	}
	return src
}

func sourceBlock[S sample](src []S, w, h int) []S {
	out := make([]S, dstStride*h)
	for y := 0; y < h; y++ {
		copy(out[y*dstStride:y*dstStride+w], src[testOrigin+y*testStride:])
	}
	return out
}

// At phase 0 every family reduces to the identity tap, so every mode must
// reproduce the source block.
func TestPhaseZeroIsIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	sr, jnt := HighbdReferenceSR, HighbdReferenceDistWtd
	sizes := [][2]int{{4, 4}, {8, 16}, {16, 8}, {32, 4}}
	for _, bd := range []int{8, 10, 12} {
		src := randomSource[uint16](rng, bd)
		for f := EightTapRegular; f < InterpFiltersAll; f++ {
			for _, sz := range sizes {
				w, h := sz[0], sz[1]
				fx, fy := FilterParamsForBlock(f, w), FilterParamsForBlock(f, h)
				want := sourceBlock(src, w, h)
				for _, hasX := range []bool{false, true} {
					for _, hasY := range []bool{false, true} {
						dst := make([]uint16, dstStride*h)
						cp := NoRoundParams(false, nil, 0, false, bd)
						sr.Select(hasX, hasY)(src, testOrigin, testStride, dst, dstStride, w, h, &fx, &fy, 0, 0, &cp, bd)
						require.Equal(t, want, dst, "sr bd %d %v %dx%d x=%v y=%v", bd, f, w, h, hasX, hasY)

						for _, wtd := range []bool{false, true} {
							acc := make([]uint16, dstStride*h)
							dst := make([]uint16, dstStride*h)
							k := jnt.Select(hasX, hasY)
							cp := NoRoundParams(false, acc, dstStride, true, bd)
							k(src, testOrigin, testStride, dst, dstStride, w, h, &fx, &fy, 0, 0, &cp, bd)
							cp.DoAverage = true
							if wtd {
								cp.UseDistWtdCompAvg, cp.FwdOffset, cp.BckOffset = true, 9, 7
							}
							k(src, testOrigin, testStride, dst, dstStride, w, h, &fx, &fy, 0, 0, &cp, bd)
							require.Equal(t, want, dst, "jnt bd %d %v %dx%d x=%v y=%v wtd=%v", bd, f, w, h, hasX, hasY, wtd)
						}
					}
				}
			}
		}
	}
}

func TestBilinearHalfPel(t *testing.T) {
	src := make([]uint8, testStride*testStride)
	for i := range src {
		src[i] = uint8(i * 37)
	}
	src[testOrigin], src[testOrigin+1] = 10, 21

	const w, h = 8, 2
	fx := FilterParamsForBlock(Bilinear, w)
	fy := FilterParamsForBlock(Bilinear, h)
	cp := NoRoundParams(false, nil, 0, false, 8)
	dst := make([]uint8, dstStride*h)
	ConvolveXSR(src, testOrigin, testStride, dst, dstStride, w, h, &fx, &fy, 8, 0, &cp)

	assert.Equal(t, uint8(16), dst[0])
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := int(src[testOrigin+y*testStride+x])
			b := int(src[testOrigin+y*testStride+x+1])
			want := ((64*(a+b)+4)>>3 + 8) >> 4
			if got := int(dst[y*dstStride+x]); got != want {
				t.Fatalf("(%d, %d): got %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestKernelsLeaveSurroundingsAlone(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	src := randomSource[uint8](rng, 8)
	const w, h = 8, 4
	fx, fy := FilterParamsForBlock(MultiTapSharp, w), FilterParamsForBlock(MultiTapSharp, h)
	for _, set := range []Set{ReferenceSR, LaneKernels(16).SR} {
		for i := 0; i < 4; i++ {
			dst := make([]uint8, dstStride*(h+1))
			for j := range dst {
				dst[j] = 0xa5
			}
			cp := NoRoundParams(false, nil, 0, false, 8)
			set.Select(i&2 != 0, i&1 != 0)(src, testOrigin, testStride, dst, dstStride, w, h, &fx, &fy, 5, 9, &cp)
			for y := 0; y <= h; y++ {
				for x := 0; x < dstStride; x++ {
					if (y >= h || x >= w) && dst[y*dstStride+x] != 0xa5 {
						t.Fatalf("mode %d wrote outside the block at (%d, %d)", i, x, y)
					}
				}
			}
		}
	}
}

func TestClipFast(t *testing.T) {
	for _, bd := range []int{8, 10, 12} {
		hi := pixelMax(bd)
		for v := int32(-70000); v <= 70000; v += 7 {
			if got, want := clipFast[uint16](v, hi), clampPixel[uint16](v, bd); got != want {
				t.Fatalf("bd %d v %d: clipFast %d, clampPixel %d", bd, v, got, want)
			}
		}
	}
	assert.Equal(t, uint8(255), clipFast[uint8](1<<20, 255))
	assert.Equal(t, uint8(0), clipFast[uint8](-1, 255))
}

func TestRoundPow2(t *testing.T) {
	assert.Equal(t, int32(5), roundPow2(5, 0))
	assert.Equal(t, int32(3), roundPow2(5, 1))
	assert.Equal(t, int32(2), roundPow2(4, 1))
	assert.Equal(t, int32(3), roundPow2(6, 1))
	assert.Equal(t, int32(-2), roundPow2(-5, 1))
	assert.Equal(t, int32(16), roundPow2(248, 4))
}
