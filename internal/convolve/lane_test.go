package convolve

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

var laneWidths = []int{1, 2, 5, 8, 13, 16}

var blockDims = []int{4, 8, 16, 32}

func firstDiff[T comparable](a, b []T) int {
	for i := range a {
		if a[i] != b[i] {
			return i
		}
	}
	return -1
}

// checkLanes runs random invocations of the reference and candidate kernels
// and fails at the first differing sample.
func checkLanes[S sample](t *testing.T, rng *rand.Rand, bds []int,
	refSR, tstSR, refJnt, tstJnt func(hasX, hasY bool) kernel[S]) {
	t.Helper()
	for iter := 0; iter < 150; iter++ {
		bd := bds[rng.Intn(len(bds))]
		src := randomSource[S](rng, bd)
		w, h := blockDims[rng.Intn(len(blockDims))], blockDims[rng.Intn(len(blockDims))]
		fx := FilterParamsForBlock(InterpFilter(rng.Intn(int(InterpFiltersAll))), w)
		fy := FilterParamsForBlock(InterpFilter(rng.Intn(int(InterpFiltersAll))), h)
		subX, subY := rng.Intn(SubpelShifts), rng.Intn(SubpelShifts)
		hasX, hasY := rng.Intn(2) == 1, rng.Intn(2) == 1

		want := make([]S, dstStride*h)
		got := make([]S, dstStride*h)
		cp := NoRoundParams(false, nil, 0, false, bd)
		refSR(hasX, hasY)(src, testOrigin, testStride, want, dstStride, w, h, &fx, &fy, subX, subY, &cp, bd)
		tstSR(hasX, hasY)(src, testOrigin, testStride, got, dstStride, w, h, &fx, &fy, subX, subY, &cp, bd)
		if i := firstDiff(want, got); i >= 0 {
			t.Fatalf("sr %dx%d bd %d x=%v y=%v %v/%v phase (%d, %d): (%d, %d) ref %d, tst %d",
				w, h, bd, hasX, hasY, fx.Filter, fy.Filter, subX, subY, i%dstStride, i/dstStride, want[i], got[i])
		}

		accWant := make([]uint16, dstStride*h)
		accGot := make([]uint16, dstStride*h)
		weighted := rng.Intn(2) == 1
		fwd := 4 + rng.Intn(9)
		for _, avg := range []bool{false, true} {
			cpWant := NoRoundParams(avg, accWant, dstStride, true, bd)
			cpGot := NoRoundParams(avg, accGot, dstStride, true, bd)
			if weighted {
				cpWant.UseDistWtdCompAvg, cpWant.FwdOffset, cpWant.BckOffset = true, fwd, 16-fwd
				cpGot.UseDistWtdCompAvg, cpGot.FwdOffset, cpGot.BckOffset = true, fwd, 16-fwd
			}
			refJnt(hasX, hasY)(src, testOrigin, testStride, want, dstStride, w, h, &fx, &fy, subX, subY, &cpWant, bd)
			tstJnt(hasX, hasY)(src, testOrigin, testStride, got, dstStride, w, h, &fx, &fy, subX, subY, &cpGot, bd)
			if i := firstDiff(accWant, accGot); i >= 0 {
				t.Fatalf("jnt accumulator %dx%d bd %d avg=%v: (%d, %d) ref %d, tst %d",
					w, h, bd, avg, i%dstStride, i/dstStride, accWant[i], accGot[i])
			}
			if i := firstDiff(want, got); i >= 0 {
				t.Fatalf("jnt %dx%d bd %d x=%v y=%v avg=%v weighted=%v phase (%d, %d): (%d, %d) ref %d, tst %d",
					w, h, bd, hasX, hasY, avg, weighted, subX, subY, i%dstStride, i/dstStride, want[i], got[i])
			}
		}
	}
}

func TestLaneMatchesReferenceNarrow(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	ref := Reference()
	for _, width := range laneWidths {
		k := LaneKernels(width)
		checkLanes(t, rng, []int{8},
			func(x, y bool) kernel[uint8] { return narrowKernel(ref.SR.Select(x, y)) },
			func(x, y bool) kernel[uint8] { return narrowKernel(k.SR.Select(x, y)) },
			func(x, y bool) kernel[uint8] { return narrowKernel(ref.DistWtd.Select(x, y)) },
			func(x, y bool) kernel[uint8] { return narrowKernel(k.DistWtd.Select(x, y)) })
	}
}

func TestLaneMatchesReferenceWide(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	ref := Reference()
	for _, width := range laneWidths {
		k := LaneKernels(width)
		checkLanes(t, rng, []int{8, 10, 12},
			func(x, y bool) kernel[uint16] { return kernel[uint16](ref.HighbdSR.Select(x, y)) },
			func(x, y bool) kernel[uint16] { return kernel[uint16](k.HighbdSR.Select(x, y)) },
			func(x, y bool) kernel[uint16] { return kernel[uint16](ref.HighbdDistWtd.Select(x, y)) },
			func(x, y bool) kernel[uint16] { return kernel[uint16](k.HighbdDistWtd.Select(x, y)) })
	}
}

func TestMakeTapRow(t *testing.T) {
	r := makeTapRow(bilinearFilters[8][:])
	assert.Equal(t, 3, r.lo)
	assert.Equal(t, 5, r.hi)
	assert.Equal(t, int32(64), r.coef[3])

	r = makeTapRow(subPelFilters8Sharp[8][:])
	assert.Equal(t, 0, r.lo)
	assert.Equal(t, 8, r.hi)

	r = makeTapRow(subPelFilters4[5][:])
	assert.Equal(t, 2, r.lo)
	assert.Equal(t, 6, r.hi)

	r = makeTapRow(make([]int16, 8))
	assert.Equal(t, r.lo, r.hi)
}

func TestAccumulate(t *testing.T) {
	src := []uint8{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	row := makeTapRow([]int16{0, 0, 0, 64, 64, 0, 0, 0})
	var acc laneAcc
	accumulate(&acc, 4, src, 0, 1, &row, 100)
	// Lane i reads src[i+3] and src[i+4].
	assert.Equal(t, []int32{100 + 64*9, 100 + 64*11, 100 + 64*13, 100 + 64*15}, acc[:4])

	// With a row step of 2, taps 3 and 4 read src[6:] and src[8:].
	accumulate(&acc, 2, src, 0, 2, &row, 0)
	assert.Equal(t, []int32{64 * (7 + 9), 64 * (8 + 10)}, acc[:2])
}
