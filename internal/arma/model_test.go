package arma

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ar1Series(n int, phi float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, n)
	for i := 1; i < n; i++ {
		values[i] = phi*values[i-1] + rng.NormFloat64()*0.5
	}
	return values
}

func TestFitWhiteNoise(t *testing.T) {
	values := ar1Series(120, 0, 1)

	m := New(0, 0)
	require.NoError(t, m.Fit(values))

	assert.Empty(t, m.ARCoeffs)
	assert.Empty(t, m.MACoeffs)
	assert.Greater(t, m.Variance, 0.0)
	assert.False(t, math.IsInf(m.AIC, 0))
}

func TestFitRecoversARSign(t *testing.T) {
	values := ar1Series(300, 0.7, 42)

	m := New(1, 0)
	require.NoError(t, m.Fit(values))

	require.Len(t, m.ARCoeffs, 1)
	assert.Greater(t, m.ARCoeffs[0], 0.3, "persistent series should yield a clearly positive AR coefficient")
	assert.Less(t, m.ARCoeffs[0], 0.99)
}

func TestFitInsufficientData(t *testing.T) {
	m := New(3, 3)
	err := m.Fit(make([]float64, 10))
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestCoefficientsClamped(t *testing.T) {
	// Near-unit-root series pushes the AR estimate toward 1.
	values := make([]float64, 200)
	for i := 1; i < len(values); i++ {
		values[i] = values[i-1] + 0.1
	}

	m := New(1, 0)
	require.NoError(t, m.Fit(values))

	assert.LessOrEqual(t, m.ARCoeffs[0], 0.99)
	assert.GreaterOrEqual(t, m.ARCoeffs[0], -0.99)
}

func TestPredict(t *testing.T) {
	values := ar1Series(150, 0.6, 7)

	m := New(1, 0)
	require.NoError(t, m.Fit(values))

	preds, err := m.Predict(12)
	require.NoError(t, err)
	require.Len(t, preds, 12)

	// AR forecasts decay toward the intercept.
	for _, p := range preds {
		assert.False(t, math.IsNaN(p))
	}
	d0 := math.Abs(preds[0] - m.Intercept)
	dLast := math.Abs(preds[11] - m.Intercept)
	assert.LessOrEqual(t, dLast, d0+1e-9)
}

func TestPredictUnfitted(t *testing.T) {
	m := New(1, 0)
	_, err := m.Predict(3)
	assert.Error(t, err)
}

func TestPsiWeightsAR1(t *testing.T) {
	m := New(1, 0)
	m.ARCoeffs = []float64{0.5}

	psi := m.PsiWeights(4)
	require.Len(t, psi, 4)
	assert.InDelta(t, 1.0, psi[0], 1e-12)
	assert.InDelta(t, 0.5, psi[1], 1e-12)
	assert.InDelta(t, 0.25, psi[2], 1e-12)
	assert.InDelta(t, 0.125, psi[3], 1e-12)
}

func TestPsiWeightsMA1(t *testing.T) {
	m := New(0, 1)
	m.MACoeffs = []float64{0.4}

	psi := m.PsiWeights(3)
	require.Len(t, psi, 3)
	assert.InDelta(t, 1.0, psi[0], 1e-12)
	assert.InDelta(t, 0.4, psi[1], 1e-12)
	assert.InDelta(t, 0.0, psi[2], 1e-12)
}

func TestResidualsMatchFit(t *testing.T) {
	values := ar1Series(120, 0.5, 3)

	m := New(1, 1)
	require.NoError(t, m.Fit(values))

	res := m.Residuals()
	fit := m.FittedValues()
	require.Len(t, res, len(values))
	require.Len(t, fit, len(values))
	for i := range values {
		assert.InDelta(t, values[i], fit[i]+res[i], 1e-9)
	}
}
