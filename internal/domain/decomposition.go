package domain

// Decomposition holds the classical additive decomposition of a log
// series: Log = Trend + Seasonal + Residual wherever Trend is defined.
// Trend and Residual carry NaN for the half-period edges the centered
// moving average cannot reach.
type Decomposition struct {
	SeriesID string
	Start    Month
	Period   int

	Log      []float64
	Trend    []float64
	Seasonal []float64
	Residual []float64

	// SeasonalEffects is the centered per-calendar-month pattern,
	// indexed by offset from Start (length Period, sums to ~0).
	SeasonalEffects []float64
}

// ComponentPoint is one month of the decomposition, flattened for storage.
type ComponentPoint struct {
	RunID    string
	SeriesID string
	Month    Month
	Observed float64 // original (cleaned) interest value
	Log      float64
	Trend    float64 // NaN at edges
	Seasonal float64
	Residual float64 // NaN at edges
}
