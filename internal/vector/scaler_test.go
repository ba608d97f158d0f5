package vector

import (
	"bytes"
	"encoding/gob"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalerFitTransform(t *testing.T) {
	samples := []Vector{
		{1, 10, 100},
		{2, 20, 100},
		{3, 30, 100},
		{4, 40, 100},
	}

	s := NewScaler()
	require.NoError(t, s.Fit(samples))
	require.True(t, s.Fitted())

	transformed := s.TransformAll(samples)

	// Per dimension the transformed sample has zero mean and, where the
	// input varied, unit variance.
	for d := range 2 {
		var sum, sq float64
		for _, v := range transformed {
			sum += v[d]
		}
		mean := sum / float64(len(transformed))
		for _, v := range transformed {
			diff := v[d] - mean
			sq += diff * diff
		}
		std := math.Sqrt(sq / float64(len(transformed)))

		assert.InDelta(t, 0, mean, 1e-9, "dimension %d mean", d)
		assert.InDelta(t, 1, std, 1e-9, "dimension %d std", d)
	}
}

func TestScalerZeroVarianceDimension(t *testing.T) {
	// Dimension 2 is constant across the sample; scale falls back to 1 so
	// the transform centers it without dividing by zero.
	samples := []Vector{
		{1, 10, 100},
		{3, 30, 100},
	}

	s := NewScaler()
	require.NoError(t, s.Fit(samples))

	out := s.Transform(Vector{2, 20, 150})

	assert.False(t, math.IsNaN(out[2]))
	assert.False(t, math.IsInf(out[2], 0))
	assert.Equal(t, 50.0, out[2]) // 150 - 100, scale 1
}

func TestScalerFitEmptySample(t *testing.T) {
	s := NewScaler()
	err := s.Fit(nil)
	assert.ErrorIs(t, err, ErrEmptyFit)
	assert.False(t, s.Fitted())
}

func TestScalerRefitRejected(t *testing.T) {
	s := NewScaler()
	require.NoError(t, s.Fit([]Vector{{1}, {2}}))

	err := s.Fit([]Vector{{100}, {200}})
	assert.ErrorIs(t, err, ErrAlreadyFitted)
}

func TestScalerTransformBeforeFit(t *testing.T) {
	s := NewScaler()
	v := Vector{1, 2, 3}
	assert.Equal(t, v, s.Transform(v))
}

func TestScalerGobRoundTrip(t *testing.T) {
	s := NewScaler()
	require.NoError(t, s.Fit([]Vector{{1, 5}, {3, 5}, {5, 5}}))

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(s))

	restored := NewScaler()
	require.NoError(t, gob.NewDecoder(&buf).Decode(restored))

	assert.True(t, restored.Fitted())
	in := Vector{2, 7}
	assert.Equal(t, s.Transform(in), restored.Transform(in))
}
