package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"search-interest-lab/internal/arma"
	"search-interest-lab/internal/decompose"
	"search-interest-lab/internal/domain"
	"search-interest-lab/internal/transform"
)

func buildDecomposition(t *testing.T, months int) *domain.Decomposition {
	t.Helper()

	start := domain.Month{Year: 2018, Month: 1}
	values := make([]float64, months)
	for i := range values {
		seasonal := 0.3 * math.Sin(2*math.Pi*float64(i)/12)
		values[i] = math.Exp(3.0 + 0.01*float64(i) + seasonal)
	}

	series := &domain.Series{ID: "test-series", Start: start, Values: values}
	logged, err := transform.Log(series)
	require.NoError(t, err)

	d, err := decompose.Classical(logged, domain.MonthsInYear)
	require.NoError(t, err)
	return d
}

func fitResidualModel(t *testing.T, d *domain.Decomposition) *arma.Model {
	t.Helper()

	resid, _ := decompose.TrimmedResidual(d)
	require.NotEmpty(t, resid)

	m := arma.New(1, 0)
	require.NoError(t, m.Fit(resid))
	return m
}

func TestComposeHorizonAndMonths(t *testing.T) {
	d := buildDecomposition(t, 60)
	m := fitResidualModel(t, d)

	fc, err := Compose("run-1", d, m, 12)
	require.NoError(t, err)
	require.Len(t, fc.Points, 12)

	assert.Equal(t, "run-1", fc.RunID)
	assert.Equal(t, "test-series", fc.SeriesID)

	// Forecast months continue the series without gaps.
	want := domain.Month{Year: 2023, Month: 1}
	for i, pt := range fc.Points {
		assert.Equal(t, want, pt.Month)
		assert.Equal(t, i+1, pt.Horizon)
		want = want.Next()
	}
}

func TestComposeIntervalOrdering(t *testing.T) {
	d := buildDecomposition(t, 60)
	m := fitResidualModel(t, d)

	fc, err := Compose("run-1", d, m, 12)
	require.NoError(t, err)

	for _, pt := range fc.Points {
		assert.Greater(t, pt.Point, 0.0)
		assert.LessOrEqual(t, pt.Lo95, pt.Lo80)
		assert.LessOrEqual(t, pt.Lo80, pt.Point)
		assert.LessOrEqual(t, pt.Point, pt.Hi80)
		assert.LessOrEqual(t, pt.Hi80, pt.Hi95)
	}
}

func TestComposeIntervalsWiden(t *testing.T) {
	d := buildDecomposition(t, 60)
	m := fitResidualModel(t, d)

	fc, err := Compose("run-1", d, m, 12)
	require.NoError(t, err)

	prev := 0.0
	for _, pt := range fc.Points {
		width := math.Log(pt.Hi95) - math.Log(pt.Lo95)
		assert.GreaterOrEqual(t, width, prev-1e-9, "log-scale interval width must not shrink with horizon")
		prev = width
	}
}

func TestComposeComponentsAdd(t *testing.T) {
	d := buildDecomposition(t, 60)
	m := fitResidualModel(t, d)

	fc, err := Compose("run-1", d, m, 6)
	require.NoError(t, err)

	for _, pt := range fc.Points {
		logPoint := pt.LogTrend + pt.LogSeasonal + pt.LogResidual
		assert.InDelta(t, logPoint, math.Log(pt.Point), 1e-9)
	}
}

func TestComposeTrendContinuesLinearSeries(t *testing.T) {
	// A noiseless linear log series: the extrapolated trend at horizon h
	// must land on the line at series index n-1+h, not trail behind by
	// the half-cycle the moving average loses at the series end.
	n := 120
	values := make([]float64, n)
	for i := range values {
		values[i] = 1.0 + 0.01*float64(i)
	}
	series := &domain.Series{ID: "linear", Start: domain.Month{Year: 2016, Month: 1}, Values: values}

	d, err := decompose.Classical(series, domain.MonthsInYear)
	require.NoError(t, err)

	resid, _ := decompose.TrimmedResidual(d)
	m := arma.New(0, 0)
	require.NoError(t, m.Fit(resid))

	fc, err := Compose("run-1", d, m, 12)
	require.NoError(t, err)

	for i, pt := range fc.Points {
		h := i + 1
		want := 1.0 + 0.01*float64(n-1+h)
		assert.InDelta(t, want, pt.LogTrend, 1e-9, "horizon %d", h)
		// Seasonal and residual are zero here, so the point forecast
		// continues the line too.
		assert.InDelta(t, want, math.Log(pt.Point), 1e-9, "horizon %d", h)
	}
}

func TestComposeInvalidHorizon(t *testing.T) {
	d := buildDecomposition(t, 60)
	m := fitResidualModel(t, d)

	_, err := Compose("run-1", d, m, 0)
	assert.Error(t, err)
}

func TestComposeNoTrend(t *testing.T) {
	d := buildDecomposition(t, 60)
	for i := range d.Trend {
		d.Trend[i] = math.NaN()
	}
	m := fitResidualModel(t, buildDecomposition(t, 60))

	_, err := Compose("run-1", d, m, 12)
	assert.ErrorIs(t, err, ErrNoTrend)
}
