package embedding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeVector(t *testing.T) {
	tests := []struct {
		name  string
		input []float32
	}{
		{"simple vector", []float32{3, 4}},
		{"negative components", []float32{-1, 2, -3}},
		{"already normalized", []float32{1, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeVector(tt.input)
			require.Len(t, result, len(tt.input))

			var magnitude float64
			for _, v := range result {
				magnitude += float64(v) * float64(v)
			}
			assert.InDelta(t, 1.0, math.Sqrt(magnitude), 1e-5)
		})
	}
}

func TestNormalizeVector_ZeroVector(t *testing.T) {
	result := NormalizeVector([]float32{0, 0, 0})
	assert.Equal(t, []float32{0, 0, 0}, result)
}

func TestNormalizeVector_Empty(t *testing.T) {
	assert.Empty(t, NormalizeVector(nil))
}

func TestDot(t *testing.T) {
	assert.InDelta(t, 11.0, Dot([]float32{1, 2, 3}, []float32{3, 1, 2}), 1e-6)
	assert.Zero(t, Dot([]float32{1, 2}, []float32{1, 2, 3}), "mismatched lengths")
	assert.Zero(t, Dot(nil, nil))
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"mismatched lengths", []float32{1, 2}, []float32{1, 2, 3}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-5)
		})
	}
}

func TestCentroid(t *testing.T) {
	c := Centroid([][]float32{
		{1, 0},
		{0, 1},
	})
	require.Len(t, c, 2)
	// Mean (0.5, 0.5) normalized to (1/sqrt2, 1/sqrt2).
	assert.InDelta(t, 1/math.Sqrt2, float64(c[0]), 1e-5)
	assert.InDelta(t, 1/math.Sqrt2, float64(c[1]), 1e-5)
}

func TestCentroid_SkipsEmpty(t *testing.T) {
	c := Centroid([][]float32{
		nil,
		{0, 2},
		{},
	})
	require.Len(t, c, 2)
	assert.InDelta(t, 0.0, float64(c[0]), 1e-5)
	assert.InDelta(t, 1.0, float64(c[1]), 1e-5)
}

func TestCentroid_NoUsableVectors(t *testing.T) {
	assert.Nil(t, Centroid(nil))
	assert.Nil(t, Centroid([][]float32{nil, {}}))
}
