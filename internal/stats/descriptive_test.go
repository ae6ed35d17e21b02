package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 2.5, Mean([]float64{1, 2, 3, 4}), 1e-12)
}

func TestVariance(t *testing.T) {
	assert.Equal(t, 0.0, Variance([]float64{5}))
	assert.InDelta(t, 2.5, Variance([]float64{1, 2, 3, 4, 5}), 1e-12)
	assert.InDelta(t, math.Sqrt(2.5), StdDev([]float64{1, 2, 3, 4, 5}), 1e-12)
}

func TestPercentile(t *testing.T) {
	values := []float64{9, 1, 5, 3, 7}

	assert.InDelta(t, 5, Percentile(values, 0.5), 1e-12)
	assert.Equal(t, 0.0, Percentile(nil, 0.5))

	// Input order must be preserved.
	assert.Equal(t, []float64{9, 1, 5, 3, 7}, values)
}

func TestDropNaN(t *testing.T) {
	out := DropNaN([]float64{1, math.NaN(), 2, math.NaN()})
	assert.Equal(t, []float64{1, 2}, out)
}
