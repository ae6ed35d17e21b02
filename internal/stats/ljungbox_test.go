package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLjungBoxWhiteNoise(t *testing.T) {
	result := LjungBox(ar1(500, 0.0, 11), 10, 0)
	require.NotNil(t, result)

	assert.Equal(t, 10, result.Lags)
	assert.Equal(t, 10, result.DOF)
	assert.Greater(t, result.PValue, 0.05, "white noise must not be rejected")
}

func TestLjungBoxCorrelatedSeries(t *testing.T) {
	result := LjungBox(ar1(500, 0.8, 12), 10, 0)
	require.NotNil(t, result)

	assert.Less(t, result.PValue, 0.01, "strong autocorrelation must be rejected")
	assert.Greater(t, result.Statistic, 0.0)
}

func TestLjungBoxFitdfAdjustsDOF(t *testing.T) {
	result := LjungBox(ar1(500, 0.0, 13), 10, 3)
	require.NotNil(t, result)
	assert.Equal(t, 7, result.DOF)
}

func TestLjungBoxDOFFloor(t *testing.T) {
	result := LjungBox(ar1(500, 0.0, 14), 2, 5)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.DOF)
}

func TestLjungBoxTooShort(t *testing.T) {
	assert.Nil(t, LjungBox([]float64{1, 2, 3}, 10, 0))
	assert.Nil(t, LjungBox(ar1(100, 0.0, 15), 0, 0))
}
