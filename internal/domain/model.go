package domain

// ARMAOrder is the (p, q) order of a residual model.
type ARMAOrder struct {
	P int // autoregressive terms
	Q int // moving-average terms
}

// ResidualModel is a fitted ARMA model over decomposition residuals,
// flattened for storage and reporting.
type ResidualModel struct {
	RunID    string
	SeriesID string
	Order    ARMAOrder

	ARCoeffs  []float64
	MACoeffs  []float64
	Intercept float64
	Variance  float64

	LogLik float64
	AIC    float64
	AICc   float64
	BIC    float64

	NObs     int
	Selected bool // true for the model the grid search picked
}

// Params returns the number of estimated parameters (AR + MA + intercept).
func (m *ResidualModel) Params() int {
	return m.Order.P + m.Order.Q + 1
}
