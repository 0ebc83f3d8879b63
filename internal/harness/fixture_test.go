package harness

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepteams/convcheck/internal/random"
)

func TestFixtureDefaultSeed(t *testing.T) {
	f := NewFixture[uint8](0)
	defer f.Close()
	f.Prepare(8)

	want := make([]uint8, InputSize*InputSize)
	random.New().Fill8(want, 8)
	assert.True(t, slices.Equal(want, f.Input.Slice()))

	g := NewFixture[uint8](7)
	defer g.Close()
	g.Prepare(8)
	assert.False(t, slices.Equal(want, g.Input.Slice()))
}

func TestFixturePrepare(t *testing.T) {
	for _, bd := range []int{8, 10, 12} {
		f := NewFixture[uint16](0)
		f.OutRef.Fill(7)
		f.AccTst.Fill(9)
		f.Prepare(bd)

		in := f.Input.Slice()
		require.Len(t, in, InputSize*InputSize)
		assert.LessOrEqual(t, int(slices.Max(in)), 1<<bd-1, "bd %d", bd)
		assert.Equal(t, in, f.pristine)
		for _, b := range [][]uint16{f.OutRef.Slice(), f.OutTst.Slice(), f.AccRef.Slice(), f.AccTst.Slice()} {
			require.Len(t, b, OutputStride*OutputStride)
			assert.Equal(t, 0, int(slices.Max(b)))
		}
		assert.True(t, f.Input.Aligned())
		assert.True(t, f.OutTst.Aligned())
		f.Close()
		assert.True(t, f.Input.Released())
		assert.True(t, f.AccRef.Released())
	}
}

func TestFixtureDeterministic(t *testing.T) {
	a := NewFixture[uint8](0)
	defer a.Close()
	b := NewFixture[uint8](0)
	defer b.Close()
	c := NewFixture[uint8](42)
	defer c.Close()

	a.Prepare(8)
	b.Prepare(8)
	c.Prepare(8)
	assert.Equal(t, a.Input.Slice(), b.Input.Slice())
	assert.NotEqual(t, a.Input.Slice(), c.Input.Slice())

	// A second preparation continues the stream.
	first := slices.Clone(a.Input.Slice())
	a.Prepare(8)
	assert.NotEqual(t, first, a.Input.Slice())
}

func TestSourceOrigin(t *testing.T) {
	f := NewFixture[uint8](0)
	defer f.Close()
	assert.Equal(t, 3*InputSize+3, f.SourceOrigin())

	// The largest block with its 8-tap footprint stays inside the input.
	last := f.SourceOrigin() + (127+4)*InputSize + 127 + 4
	assert.Less(t, last, f.Input.Len())
}
