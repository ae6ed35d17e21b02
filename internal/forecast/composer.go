// Package forecast composes component forecasts back into an
// original-scale projection with prediction intervals.
package forecast

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"search-interest-lab/internal/arma"
	"search-interest-lab/internal/domain"
)

// Number of trailing trend months used to fit the extrapolation line.
const trendTailLen = 24

// Interval z-scores for 80% and 95% coverage.
const (
	z80 = 1.2815515655446004
	z95 = 1.959963984540054
)

// ErrNoTrend is returned when the decomposition carries no usable trend.
var ErrNoTrend = errors.New("decomposition has no defined trend values")

// Compose builds an h-month forecast from a decomposition and the residual
// model fitted to its trimmed residual window. The trend is extrapolated by
// an OLS line over the trailing trend months, the seasonal pattern repeats,
// and the residual path comes from the ARMA model. Components add on the
// log scale and exponentiate back; intervals use the model's psi weights.
func Compose(runID string, d *domain.Decomposition, model *arma.Model, horizon int) (*domain.Forecast, error) {
	if horizon < 1 {
		return nil, fmt.Errorf("invalid horizon %d", horizon)
	}

	slope, intercept, err := trendLine(d.Trend)
	if err != nil {
		return nil, err
	}

	residPath, err := model.Predict(horizon)
	if err != nil {
		return nil, fmt.Errorf("residual forecast: %w", err)
	}

	psi := model.PsiWeights(horizon)
	sigma2 := model.Variance

	n := len(d.Log)
	lastMonth := d.Start
	for i := 1; i < n; i++ {
		lastMonth = lastMonth.Next()
	}

	fc := &domain.Forecast{
		RunID:    runID,
		SeriesID: d.SeriesID,
		Points:   make([]domain.ForecastPoint, 0, horizon),
	}

	cumVar := 0.0
	month := lastMonth
	for h := 1; h <= horizon; h++ {
		month = month.Next()

		// The forecast month at horizon h sits at series index n-1+h.
		trend := intercept + slope*float64(n-1+h)
		seasonal := d.SeasonalEffects[(n+h-1)%d.Period]
		resid := residPath[h-1]

		logPoint := trend + seasonal + resid

		cumVar += psi[h-1] * psi[h-1] * sigma2
		se := math.Sqrt(cumVar)

		fc.Points = append(fc.Points, domain.ForecastPoint{
			RunID:       runID,
			SeriesID:    d.SeriesID,
			Month:       month,
			Horizon:     h,
			Point:       math.Exp(logPoint),
			Lo80:        math.Exp(logPoint - z80*se),
			Hi80:        math.Exp(logPoint + z80*se),
			Lo95:        math.Exp(logPoint - z95*se),
			Hi95:        math.Exp(logPoint + z95*se),
			LogTrend:    trend,
			LogSeasonal: seasonal,
			LogResidual: resid,
		})
	}

	return fc, nil
}

// trendLine fits an OLS line to the trailing defined trend values.
// The line is parameterized over series indices so it can be evaluated
// at any series index, in particular beyond the observed range.
func trendLine(trend []float64) (slope, intercept float64, err error) {
	var xs, ys []float64
	for i, v := range trend {
		if !math.IsNaN(v) {
			xs = append(xs, float64(i))
			ys = append(ys, v)
		}
	}
	if len(xs) == 0 {
		return 0, 0, ErrNoTrend
	}

	if len(xs) > trendTailLen {
		xs = xs[len(xs)-trendTailLen:]
		ys = ys[len(ys)-trendTailLen:]
	}
	if len(xs) < 2 {
		// Flat extrapolation from a single point.
		return 0, ys[0], nil
	}

	intercept, slope = stat.LinearRegression(xs, ys, nil, false)
	return slope, intercept, nil
}
