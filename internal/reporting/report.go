package reporting

import (
	"time"

	"search-interest-lab/internal/domain"
)

// Report is the full analysis report for one run.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string
	SeriesID    string
	Term        string
	Geo         string
	Status      string

	// Data summary
	StartMonth     domain.Month
	EndMonth       domain.Month
	NObs           int
	ImputedMonths  []string // YYYY-MM of months filled by imputation
	BelowOneMonths int
	ValueMin       float64
	ValueMax       float64
	ValueMean      float64

	// Transform
	BoxCoxLambda float64

	// Decomposition (seasonal effects in January..December order)
	SeasonalEffects []SeasonalEffectRow

	// Model selection (sorted by AIC ASC)
	Candidates  []ModelRow
	ModelsTried int
	Selected    ModelDetail

	// Residual diagnostics
	Diagnostics DiagnosticsSection

	// Forecast (sorted by horizon ASC)
	Forecast []ForecastRow
}

// SeasonalEffectRow is one calendar month of the seasonal pattern.
type SeasonalEffectRow struct {
	Month  time.Month
	Effect float64 // log scale
	Factor float64 // multiplicative equivalent, exp(Effect)
}

// ModelRow is one candidate from the order grid.
type ModelRow struct {
	Order    domain.ARMAOrder
	AIC      float64
	AICc     float64
	BIC      float64
	LogLik   float64
	Selected bool
}

// ModelDetail describes the selected residual model.
type ModelDetail struct {
	Order     domain.ARMAOrder
	ARCoeffs  []float64
	MACoeffs  []float64
	Intercept float64
	Variance  float64
	NObs      int
}

// DiagnosticsSection summarizes residual whiteness checks.
type DiagnosticsSection struct {
	LjungBoxStatistic  float64
	LjungBoxPValue     float64
	LjungBoxLags       int
	LjungBoxDOF        int
	ResidualsWhite     bool // p >= 0.05
	SignificantACFLags []int
}

// ForecastRow is one month of the forecast table.
type ForecastRow struct {
	Month   domain.Month
	Horizon int
	Point   float64
	Lo80    float64
	Hi80    float64
	Lo95    float64
	Hi95    float64
}
