// Package decompose implements classical moving-average decomposition of
// monthly series into trend, seasonal, and residual components.
package decompose

import (
	"errors"
	"fmt"
	"math"

	"search-interest-lab/internal/domain"
)

// ErrTooShort is returned when the series has fewer than two full cycles.
var ErrTooShort = errors.New("series shorter than two seasonal cycles")

// Classical performs classical additive decomposition of a (log) series
// with the given period: series = trend + seasonal + residual wherever the
// trend is defined. The trend is a centered moving average; the first and
// last period/2 months carry NaN in trend and residual.
func Classical(series *domain.Series, period int) (*domain.Decomposition, error) {
	n := series.Len()
	if period < 2 {
		return nil, fmt.Errorf("invalid period %d", period)
	}
	if n < 2*period {
		return nil, fmt.Errorf("%w: %d observations, period %d", ErrTooShort, n, period)
	}

	trend := centeredMovingAverage(series.Values, period)

	// Detrend where the trend is defined.
	detrended := make([]float64, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(trend[i]) {
			detrended[i] = math.NaN()
		} else {
			detrended[i] = series.Values[i] - trend[i]
		}
	}

	// Seasonal pattern: mean of detrended values per position in the cycle.
	pattern := make([]float64, period)
	counts := make([]int, period)
	for i := 0; i < n; i++ {
		if !math.IsNaN(detrended[i]) {
			idx := i % period
			pattern[idx] += detrended[i]
			counts[idx]++
		}
	}
	for i := 0; i < period; i++ {
		if counts[i] > 0 {
			pattern[i] /= float64(counts[i])
		}
	}

	// Center the pattern so seasonal effects sum to zero over a cycle.
	mean := 0.0
	for _, v := range pattern {
		mean += v
	}
	mean /= float64(period)
	for i := range pattern {
		pattern[i] -= mean
	}

	// Extend pattern across the series and compute residuals.
	seasonal := make([]float64, n)
	residual := make([]float64, n)
	for i := 0; i < n; i++ {
		seasonal[i] = pattern[i%period]
		if math.IsNaN(trend[i]) {
			residual[i] = math.NaN()
		} else {
			residual[i] = series.Values[i] - trend[i] - seasonal[i]
		}
	}

	logValues := make([]float64, n)
	copy(logValues, series.Values)

	return &domain.Decomposition{
		SeriesID:        series.ID,
		Start:           series.Start,
		Period:          period,
		Log:             logValues,
		Trend:           trend,
		Seasonal:        seasonal,
		Residual:        residual,
		SeasonalEffects: pattern,
	}, nil
}

// centeredMovingAverage computes the trend estimate. Even periods use a
// 2×period average with half weight on the two endpoints so the window
// stays centered on the month.
func centeredMovingAverage(values []float64, period int) []float64 {
	n := len(values)
	trend := make([]float64, n)
	for i := range trend {
		trend[i] = math.NaN()
	}

	half := period / 2

	if period%2 == 0 {
		for i := half; i < n-half; i++ {
			sum := values[i-half]*0.5 + values[i+half]*0.5
			for j := i - half + 1; j < i+half; j++ {
				sum += values[j]
			}
			trend[i] = sum / float64(period)
		}
	} else {
		for i := half; i < n-half; i++ {
			sum := 0.0
			for j := i - half; j <= i+half; j++ {
				sum += values[j]
			}
			trend[i] = sum / float64(period)
		}
	}

	return trend
}

// TrimmedResidual returns the residual window where the trend is defined,
// plus the offset of its first month in the decomposition.
func TrimmedResidual(d *domain.Decomposition) (values []float64, offset int) {
	start := -1
	end := -1
	for i, v := range d.Residual {
		if !math.IsNaN(v) {
			if start == -1 {
				start = i
			}
			end = i
		}
	}
	if start == -1 {
		return nil, 0
	}

	out := make([]float64, end-start+1)
	copy(out, d.Residual[start:end+1])
	return out, start
}
