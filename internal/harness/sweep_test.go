package harness

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepteams/convcheck/internal/convolve"
)

func TestFilterPairs(t *testing.T) {
	assert.Len(t, FilterPairs(true, true), 16)

	x := FilterPairs(true, false)
	require.Len(t, x, 4)
	for i, p := range x {
		assert.Equal(t, convolve.InterpFilter(i), p.X)
		assert.Equal(t, convolve.EightTapSmooth, p.Y)
	}

	y := FilterPairs(false, true)
	require.Len(t, y, 4)
	for i, p := range y {
		assert.Equal(t, convolve.EightTapSmooth, p.X)
		assert.Equal(t, convolve.InterpFilter(i), p.Y)
	}

	want := []FilterPair{{X: convolve.EightTapSmooth, Y: convolve.EightTapSmooth}}
	if diff := cmp.Diff(want, FilterPairs(false, false)); diff != "" {
		t.Errorf("copy filter pairs mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "sharp/smooth", FilterPair{X: convolve.MultiTapSharp, Y: convolve.EightTapSmooth}.String())
}

func TestPhases(t *testing.T) {
	all, err := Phases(true, true, nil)
	require.NoError(t, err)
	assert.Len(t, all, 256)
	assert.Equal(t, Phase{X: 0, Y: 15}, all[15])
	assert.Equal(t, Phase{X: 1, Y: 0}, all[16])

	x, err := Phases(true, false, nil)
	require.NoError(t, err)
	require.Len(t, x, 16)
	for i, p := range x {
		assert.Equal(t, Phase{X: i}, p)
	}

	y, err := Phases(false, true, []int{0, 8})
	require.NoError(t, err)
	if diff := cmp.Diff([]Phase{{0, 0}, {0, 8}}, y); diff != "" {
		t.Errorf("phases mismatch (-want +got):\n%s", diff)
	}

	copyOnly, err := Phases(false, false, []int{3, 5})
	require.NoError(t, err)
	assert.Equal(t, []Phase{{}}, copyOnly)

	for _, bad := range [][]int{{16}, {-1}, {0, 1, 99}, {}} {
		_, err := Phases(true, true, bad)
		assert.ErrorIs(t, err, ErrInvalidConfig, "%v", bad)
	}
}

func TestInvocationCount(t *testing.T) {
	// Filter pairs x blends x phases for a full sweep of each mode.
	tests := []struct {
		hasX, hasY, compound bool
		want                 int
	}{
		{true, true, false, 16 * 1 * 256},
		{true, false, false, 4 * 1 * 16},
		{false, true, true, 4 * 18 * 16},
		{false, false, true, 1 * 18 * 1},
	}
	for _, tt := range tests {
		phases, err := Phases(tt.hasX, tt.hasY, nil)
		require.NoError(t, err)
		got := len(FilterPairs(tt.hasX, tt.hasY)) * len(Blends(tt.compound)) * len(phases)
		assert.Equal(t, tt.want, got, "%s compound=%v", ModeName(tt.hasX, tt.hasY), tt.compound)
	}
}
