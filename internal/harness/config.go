// Package harness verifies candidate interpolation kernels against the
// scalar references.
//
// A Suite pairs a reference and a candidate kernel table for one sample
// family and blending variant. For each Config it allocates a Fixture,
// sweeps every filter pair, blend setting and sub-pixel phase, runs both
// kernels on the same input through an Executor and checks the results
// with a Comparator. The first divergence is returned as a *Mismatch.
package harness

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors.
var (
	// ErrMismatch is matched by every *Mismatch.
	ErrMismatch = errors.New("harness: reference/candidate mismatch")

	// ErrInvalidConfig is returned for configurations a suite cannot run.
	ErrInvalidConfig = errors.New("harness: invalid configuration")
)

// Family is a sample storage width.
type Family uint8

const (
	// Narrow stores samples in uint8 and only runs at bit depth 8.
	Narrow Family = iota
	// Wide stores samples in uint16 and takes an explicit bit depth.
	Wide
)

func (f Family) String() string {
	if f == Wide {
		return "Hbd"
	}
	return "Lbd"
}

// BitDepths returns the bit depths swept for the family.
func (f Family) BitDepths() []int {
	if f == Wide {
		return []int{8, 10, 12}
	}
	return []int{8}
}

// BlockSize is a codec partition geometry.
type BlockSize uint8

const (
	Block4x4 BlockSize = iota
	Block4x8
	Block8x4
	Block8x8
	Block8x16
	Block16x8
	Block16x16
	Block16x32
	Block32x16
	Block32x32
	Block32x64
	Block64x32
	Block64x64
	Block64x128
	Block128x64
	Block128x128
	Block4x16
	Block16x4
	Block8x32
	Block32x8
	Block16x64
	Block64x16
	// BlockSizesAll is the number of block sizes.
	BlockSizesAll
)

var blockSizeWide = [BlockSizesAll]int{
	4, 4, 8, 8, 8, 16, 16, 16, 32, 32, 32, 64, 64, 64, 128, 128, 4, 16, 8, 32, 16, 64,
}

var blockSizeHigh = [BlockSizesAll]int{
	4, 8, 4, 8, 16, 8, 16, 32, 16, 32, 64, 32, 64, 128, 64, 128, 16, 4, 32, 8, 64, 16,
}

// Width returns the block width in samples.
func (b BlockSize) Width() int { return blockSizeWide[b] }

// Height returns the block height in samples.
func (b BlockSize) Height() int { return blockSizeHigh[b] }

func (b BlockSize) String() string {
	if b >= BlockSizesAll {
		return fmt.Sprintf("BlockSize(%d)", uint8(b))
	}
	return fmt.Sprintf("%dx%d", b.Width(), b.Height())
}

// ParseBlockSize parses a "WxH" block size such as "16x8".
func ParseBlockSize(s string) (BlockSize, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for b := BlockSize(0); b < BlockSizesAll; b++ {
		if b.String() == s {
			return b, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown block size %q", ErrInvalidConfig, s)
}

// Config is one test case: a bit depth, the sub-pixel activity fixed by the
// suite, a block size and the blending variant.
type Config struct {
	Family     Family
	BitDepth   int
	HasSubpelX bool
	HasSubpelY bool
	Block      BlockSize
	Compound   bool
}

// String names the varying part of the configuration, e.g. "bd10_64x64".
func (c Config) String() string {
	return fmt.Sprintf("bd%d_%s", c.BitDepth, c.Block)
}

// Validate checks that the bit depth fits the family and the block exists.
func (c Config) Validate() error {
	if c.Block >= BlockSizesAll {
		return fmt.Errorf("%w: block size %d", ErrInvalidConfig, c.Block)
	}
	for _, bd := range c.Family.BitDepths() {
		if bd == c.BitDepth {
			return nil
		}
	}
	return fmt.Errorf("%w: bit depth %d not supported by %s family", ErrInvalidConfig, c.BitDepth, c.Family)
}

// BuildParams enumerates every bit depth of family against every block
// size, with the sub-pixel activity and blending variant held fixed.
func BuildParams(family Family, hasX, hasY, compound bool) []Config {
	depths := family.BitDepths()
	out := make([]Config, 0, len(depths)*int(BlockSizesAll))
	for _, bd := range depths {
		for b := BlockSize(0); b < BlockSizesAll; b++ {
			out = append(out, Config{
				Family:     family,
				BitDepth:   bd,
				HasSubpelX: hasX,
				HasSubpelY: hasY,
				Block:      b,
				Compound:   compound,
			})
		}
	}
	return out
}

// ModeName names the motion mode selected by per-axis sub-pixel activity.
func ModeName(hasX, hasY bool) string {
	switch {
	case hasX && hasY:
		return "2D"
	case hasX:
		return "X"
	case hasY:
		return "Y"
	default:
		return "Copy"
	}
}
