// Package random provides the deterministic sample source used to fill
// fixture inputs.
//
// It is D. Knuth's difference-based generator over a 55-entry table of
// 31-bit values, the lagged-subtractive scheme VP8 decoders use for
// dithering. Every Generator built with the same seed yields the same
// sequence, so fixtures may each own a generator without sharing state.
package random

const (
	tableSize = 55
	// lag is the initial distance between the two read indices.
	lag = 31
	// valueBits is the width of every table entry.
	valueBits = 31
)

// DefaultSeed is the process-wide seed used by New.
const DefaultSeed = 0

// Generator holds the state of one pseudo-random stream.
type Generator struct {
	index1, index2 int
	tab            [tableSize]uint32
}

// kSeedTable contains the 31-bit starting values.
var kSeedTable = [tableSize]uint32{
	0x0de15230, 0x03b31886, 0x775faccb, 0x1c88626a, 0x68385c55, 0x14b3b828,
	0x4a85fef8, 0x49ddb84b, 0x64fcf397, 0x5c550289, 0x4a290000, 0x0d7ec1da,
	0x5940b7ab, 0x5492577d, 0x4e19ca72, 0x38d38c69, 0x0c01ee65, 0x32a1755f,
	0x5437f652, 0x5abb2c32, 0x0faa57b1, 0x73f533e7, 0x685feeda, 0x7563cce2,
	0x6e990e83, 0x4730a7ed, 0x4fc0d9c6, 0x496b153c, 0x4f1403fa, 0x541afb0c,
	0x73990b32, 0x26d7cb1c, 0x6fcc3706, 0x2cbb77d8, 0x75762f2a, 0x6425ccdd,
	0x24b35461, 0x0a7d8715, 0x220414a8, 0x141ebf67, 0x56b41583, 0x73e502e3,
	0x44cab16f, 0x28264d42, 0x73baaefb, 0x0a50ebed, 0x1d6ab6fb, 0x0d3ad40b,
	0x35db3b68, 0x2b081e83, 0x77ce6b95, 0x5181e5f0, 0x78853bbc, 0x009f9494,
	0x27e5ed3c,
}

// New returns a generator seeded with DefaultSeed.
func New() *Generator {
	return NewSeeded(DefaultSeed)
}

// NewSeeded returns a generator whose table is the seed table perturbed by
// a splitmix64 stream of seed. Seed 0 leaves the table untouched.
func NewSeeded(seed uint64) *Generator {
	g := &Generator{index1: 0, index2: lag, tab: kSeedTable}
	if seed == 0 {
		return g
	}
	s := seed
	for i := range g.tab {
		s += 0x9e3779b97f4a7c15
		z := s
		z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
		z = (z ^ (z >> 27)) * 0x94d049bb133111eb
		z ^= z >> 31
		g.tab[i] ^= uint32(z) & (1<<valueBits - 1)
	}
	return g
}

// next advances the generator and returns a 31-bit value.
func (g *Generator) next() uint32 {
	diff := int64(g.tab[g.index1]) - int64(g.tab[g.index2])
	if diff < 0 {
		diff += 1 << valueBits
	}
	g.tab[g.index1] = uint32(diff)
	g.index1++
	if g.index1 == tableSize {
		g.index1 = 0
	}
	g.index2++
	if g.index2 == tableSize {
		g.index2 = 0
	}
	return uint32(diff)
}

// Bits returns a uniformly distributed unsigned value of n bits,
// 1 <= n <= 31.
func (g *Generator) Bits(n int) uint32 {
	if n < 1 || n > valueBits {
		panic("random: bit count out of range")
	}
	return g.next() >> (valueBits - n)
}

// Fill8 fills dst with bd-bit samples, bd <= 8.
func (g *Generator) Fill8(dst []uint8, bd int) {
	for i := range dst {
		dst[i] = uint8(g.Bits(bd))
	}
}

// Fill16 fills dst with bd-bit samples, bd <= 16.
func (g *Generator) Fill16(dst []uint16, bd int) {
	for i := range dst {
		dst[i] = uint16(g.Bits(bd))
	}
}
