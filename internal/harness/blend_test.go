package harness

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepteams/convcheck/internal/convolve"
)

func TestQuantDistLookup(t *testing.T) {
	for i, row := range QuantDistLookup {
		for j, w := range row {
			if w[0]+w[1] != 1<<convolve.DistPrecisionBits {
				t.Errorf("entry [%d][%d] = %v does not sum to %d", i, j, w, 1<<convolve.DistPrecisionBits)
			}
		}
	}
	for j := range QuantDistLookup[0] {
		a, b := QuantDistLookup[0][j], QuantDistLookup[1][j]
		if a[0] != b[1] || a[1] != b[0] {
			t.Errorf("entry %d: %v is not mirrored by %v", j, a, b)
		}
	}
}

func TestBlends(t *testing.T) {
	assert.Equal(t, []Blend{{}}, Blends(false))

	b := Blends(true)
	require.Len(t, b, 18)
	for half := 0; half < 2; half++ {
		seg := b[half*9 : half*9+9]
		avg := half == 1
		assert.Equal(t, Blend{DoAverage: avg}, seg[0])
		for i, w := range seg[1:] {
			want := QuantDistLookup[i/4][i%4]
			assert.Equal(t, Blend{DoAverage: avg, DistWtd: true, Fwd: want[0], Bck: want[1]}, w)
		}
	}
	assert.Equal(t, "store", b[0].String())
	assert.Equal(t, "avg_w3_13", b[17].String())
}

func TestBlendValidate(t *testing.T) {
	for _, b := range Blends(true) {
		assert.NoError(t, b.Validate(), b.String())
	}
	assert.NoError(t, Blend{DoAverage: true, DistWtd: true, Fwd: 16, Bck: 0}.Validate())

	for _, b := range []Blend{
		{DoAverage: true, DistWtd: true, Fwd: 20, Bck: 20},
		{DoAverage: true, DistWtd: true, Fwd: 18, Bck: -2},
		{DistWtd: true},
	} {
		assert.ErrorIs(t, b.Validate(), ErrInvalidConfig, b.String())
	}
}

func TestBlendParams(t *testing.T) {
	acc := make([]uint16, 4)
	ignore := cmpopts.IgnoreFields(convolve.ConvolveParams{}, "Dst")

	tests := []struct {
		name     string
		blend    Blend
		compound bool
		bd       int
		want     convolve.ConvolveParams
	}{
		{
			name: "sr bd8",
			bd:   8,
			want: convolve.ConvolveParams{Round0: 3, Round1: 11},
		},
		{
			name:  "sr ignores blend",
			blend: Blend{DoAverage: true, DistWtd: true, Fwd: 9, Bck: 7},
			bd:    12,
			want:  convolve.ConvolveParams{Round0: 5, Round1: 9},
		},
		{
			name:     "compound store",
			compound: true,
			bd:       10,
			want:     convolve.ConvolveParams{IsCompound: true, DstStride: OutputStride, Round0: 3, Round1: 7},
		},
		{
			name:     "compound weighted average",
			blend:    Blend{DoAverage: true, DistWtd: true, Fwd: 12, Bck: 4},
			compound: true,
			bd:       12,
			want: convolve.ConvolveParams{DoAverage: true, IsCompound: true, DstStride: OutputStride,
				Round0: 5, Round1: 7, UseDistWtdCompAvg: true, FwdOffset: 12, BckOffset: 4},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.blend.Params(acc, OutputStride, tt.compound, tt.bd)
			if !tt.compound {
				assert.Nil(t, got.Dst)
				assert.Zero(t, got.DstStride)
			} else {
				assert.Len(t, got.Dst, len(acc))
			}
			if diff := cmp.Diff(tt.want, got, ignore); diff != "" {
				t.Errorf("Params mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
