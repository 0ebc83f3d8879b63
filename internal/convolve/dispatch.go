package convolve

import (
	"fmt"
	"log/slog"

	"github.com/deepteams/convcheck/internal/cpu"
)

// Func is a narrow (8-bit sample) kernel entry point.
type Func func(src []uint8, srcOff, srcStride int, dst []uint8, dstStride, w, h int,
	fx, fy *FilterParams, subX, subY int, cp *ConvolveParams)

// HighbdFunc is a wide (16-bit sample) kernel entry point.
type HighbdFunc func(src []uint16, srcOff, srcStride int, dst []uint16, dstStride, w, h int,
	fx, fy *FilterParams, subX, subY int, cp *ConvolveParams, bd int)

// Set maps [hasSubpelX][hasSubpelY] to the motion mode that serves it:
// copy, vertical-only, horizontal-only or full 2D.
type Set [2][2]Func

// Select returns the kernel for the given per-axis sub-pixel activity.
func (s *Set) Select(hasX, hasY bool) Func { return s[boolIndex(hasX)][boolIndex(hasY)] }

// HighbdSet is Set for the wide family.
type HighbdSet [2][2]HighbdFunc

// Select returns the kernel for the given per-axis sub-pixel activity.
func (s *HighbdSet) Select(hasX, hasY bool) HighbdFunc {
	return s[boolIndex(hasX)][boolIndex(hasY)]
}

// Backend names.
const (
	BackendGeneric = "generic"
	BackendLane8   = "lane8"
	BackendLane16  = "lane16"
)

// Kernels bundles the single-reference and compound sets of both families.
type Kernels struct {
	Backend       string
	SR            Set
	DistWtd       Set
	HighbdSR      HighbdSet
	HighbdDistWtd HighbdSet
}

// Reference kernel sets.
var (
	ReferenceSR = Set{
		{Convolve2DCopySR, ConvolveYSR},
		{ConvolveXSR, Convolve2DSR},
	}
	ReferenceDistWtd = Set{
		{DistWtdConvolve2DCopy, DistWtdConvolveY},
		{DistWtdConvolveX, DistWtdConvolve2D},
	}
	HighbdReferenceSR = HighbdSet{
		{HighbdConvolve2DCopySR, HighbdConvolveYSR},
		{HighbdConvolveXSR, HighbdConvolve2DSR},
	}
	HighbdReferenceDistWtd = HighbdSet{
		{HighbdDistWtdConvolve2DCopy, HighbdDistWtdConvolveY},
		{HighbdDistWtdConvolveX, HighbdDistWtdConvolve2D},
	}
)

// Dispatched kernel sets, installed by Init.
var (
	SR            Set
	DistWtd       Set
	HighbdSR      HighbdSet
	HighbdDistWtd HighbdSet

	// ActiveBackend names the implementation behind the dispatched sets.
	ActiveBackend string
)

// Reference returns the scalar reference kernels as a bundle.
func Reference() Kernels {
	return Kernels{
		Backend:       BackendGeneric,
		SR:            ReferenceSR,
		DistWtd:       ReferenceDistWtd,
		HighbdSR:      HighbdReferenceSR,
		HighbdDistWtd: HighbdReferenceDistWtd,
	}
}

type laneFunc[S sample] func(width int, src []S, srcOff, srcStride int, dst []S, dstStride, w, h int,
	fx, fy *FilterParams, subX, subY int, cp *ConvolveParams, bd int)

func narrowLane(width int, k laneFunc[uint8]) Func {
	return func(src []uint8, srcOff, srcStride int, dst []uint8, dstStride, w, h int,
		fx, fy *FilterParams, subX, subY int, cp *ConvolveParams) {
		k(width, src, srcOff, srcStride, dst, dstStride, w, h, fx, fy, subX, subY, cp, 8)
	}
}

func wideLane(width int, k laneFunc[uint16]) HighbdFunc {
	return func(src []uint16, srcOff, srcStride int, dst []uint16, dstStride, w, h int,
		fx, fy *FilterParams, subX, subY int, cp *ConvolveParams, bd int) {
		k(width, src, srcOff, srcStride, dst, dstStride, w, h, fx, fy, subX, subY, cp, bd)
	}
}

// LaneKernels returns the lane-batched kernels processing width columns per
// step. It panics unless 1 <= width <= 16.
func LaneKernels(width int) Kernels {
	if width < 1 || width > maxLanes {
		panic(fmt.Sprintf("convolve: lane width %d out of range [1, %d]", width, maxLanes))
	}
	return Kernels{
		Backend: fmt.Sprintf("lane%d", width),
		SR: Set{
			{narrowLane(width, laneConvolve2DCopySR[uint8]), narrowLane(width, laneConvolveYSR[uint8])},
			{narrowLane(width, laneConvolveXSR[uint8]), narrowLane(width, laneConvolve2DSR[uint8])},
		},
		DistWtd: Set{
			{narrowLane(width, laneDistWtdConvolve2DCopy[uint8]), narrowLane(width, laneDistWtdConvolveY[uint8])},
			{narrowLane(width, laneDistWtdConvolveX[uint8]), narrowLane(width, laneDistWtdConvolve2D[uint8])},
		},
		HighbdSR: HighbdSet{
			{wideLane(width, laneConvolve2DCopySR[uint16]), wideLane(width, laneConvolveYSR[uint16])},
			{wideLane(width, laneConvolveXSR[uint16]), wideLane(width, laneConvolve2DSR[uint16])},
		},
		HighbdDistWtd: HighbdSet{
			{wideLane(width, laneDistWtdConvolve2DCopy[uint16]), wideLane(width, laneDistWtdConvolveY[uint16])},
			{wideLane(width, laneDistWtdConvolveX[uint16]), wideLane(width, laneDistWtdConvolve2D[uint16])},
		},
	}
}

// SelectKernels picks the candidate bundle for the given CPU: the scalar
// references when generic code is forced, 16 lanes on CPUs with 256-bit
// integer vectors, 8 lanes otherwise.
func SelectKernels(f cpu.Features) Kernels {
	switch {
	case f.ForceGeneric:
		return Reference()
	case f.Wide():
		return LaneKernels(16)
	default:
		return LaneKernels(8)
	}
}

// Install replaces the dispatched sets with k.
func Install(k Kernels) {
	SR = k.SR
	DistWtd = k.DistWtd
	HighbdSR = k.HighbdSR
	HighbdDistWtd = k.HighbdDistWtd
	ActiveBackend = k.Backend
}

// Init selects kernels for the running CPU and installs them.
func Init() {
	f := cpu.DetectFeatures()
	k := SelectKernels(f)
	Install(k)
	slog.Debug("convolve kernels initialized", "backend", k.Backend, "arch", f.Architecture,
		"avx2", f.HasAVX2, "neon", f.HasNEON)
}

func init() {
	Init()
}
