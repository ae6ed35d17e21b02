package domain

// ForecastPoint is one month of the composed forecast, on the original
// (interest) scale. Interval bounds come from the residual-model variance
// accumulated through psi weights on the log scale.
type ForecastPoint struct {
	RunID    string
	SeriesID string
	Month    Month
	Horizon  int // 1-based steps ahead of the last observation

	Point float64
	Lo80  float64
	Hi80  float64
	Lo95  float64
	Hi95  float64

	// Log-scale components, kept for reconstruction checks.
	LogTrend    float64
	LogSeasonal float64
	LogResidual float64
}

// Forecast is a full forecast horizon for one run.
type Forecast struct {
	RunID    string
	SeriesID string
	Points   []ForecastPoint
}
