package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-ml/lumen/internal/tensor"
)

func TestNormalizeAxis(t *testing.T) {
	tests := []struct {
		name    string
		axis    int
		rank    int
		want    int
		wantErr bool
	}{
		{name: "positive", axis: 2, rank: 4, want: 2},
		{name: "negative trailing", axis: -1, rank: 4, want: 3},
		{name: "negative leading", axis: -4, rank: 4, want: 0},
		{name: "rank itself allowed", axis: 4, rank: 4, want: 4},
		{name: "too negative", axis: -5, rank: 4, wantErr: true},
		{name: "too large", axis: 5, rank: 4, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAxis(tt.axis, tt.rank)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBroadcastAxis(t *testing.T) {
	// No declared axis: trailing alignment.
	axis, err := BroadcastAxis(0, false, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, axis)

	// Declared -1 selects trailing alignment as well.
	axis, err = BroadcastAxis(-1, true, 4, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, axis)

	// Explicit axis wins.
	axis, err = BroadcastAxis(1, true, 4, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, axis)
}

func TestInferReshape(t *testing.T) {
	// 0 copies the input dimension, -1 is inferred from the element count:
	// 24 elements, product of fixed entries 2*4=8, inferred 3.
	dims, err := InferReshape([]int64{0, -1, 4}, tensor.Shape{2, 3, 4})
	require.NoError(t, err)
	assert.True(t, dims.Equal(tensor.Shape{2, 3, 4}))
}

func TestInferReshapeExplicit(t *testing.T) {
	dims, err := InferReshape([]int64{6, 4}, tensor.Shape{2, 3, 4})
	require.NoError(t, err)
	assert.True(t, dims.Equal(tensor.Shape{6, 4}))
}

func TestInferReshapeSingleWildcard(t *testing.T) {
	dims, err := InferReshape([]int64{-1}, tensor.Shape{2, 3, 4})
	require.NoError(t, err)
	assert.True(t, dims.Equal(tensor.Shape{24}))
}

func TestInferReshapeMultipleWildcards(t *testing.T) {
	_, err := InferReshape([]int64{-1, -1, 4}, tensor.Shape{2, 3, 4})
	assert.ErrorIs(t, err, ErrInvalidReshape)
}

func TestInferReshapeNotDivisible(t *testing.T) {
	_, err := InferReshape([]int64{-1, 5}, tensor.Shape{2, 3, 4})
	assert.ErrorIs(t, err, ErrInvalidReshape)
}

func TestInferReshapeZeroBeyondRank(t *testing.T) {
	_, err := InferReshape([]int64{2, 12, 0}, tensor.Shape{2, 12})
	assert.ErrorIs(t, err, ErrInvalidReshape)
}
