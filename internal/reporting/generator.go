// Package reporting produces markdown, CSV, and plot artifacts from
// stored analysis results.
package reporting

import (
	"context"
	"fmt"
	"math"
	"time"

	"search-interest-lab/internal/arma"
	"search-interest-lab/internal/domain"
	"search-interest-lab/internal/stats"
	"search-interest-lab/internal/storage"
)

// Ljung-Box lag count and ACF window used in the diagnostics section.
const (
	diagnosticLags = 10
	acfMaxLag      = 24
)

// Generator produces reports from stored data.
type Generator struct {
	runStore       storage.RunStore
	modelStore     storage.ModelStore
	componentStore storage.ComponentStore
	forecastStore  storage.ForecastStore
	obsStore       storage.ObservationStore
	now            func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(
	runStore storage.RunStore,
	modelStore storage.ModelStore,
	componentStore storage.ComponentStore,
	forecastStore storage.ForecastStore,
	obsStore storage.ObservationStore,
) *Generator {
	return &Generator{
		runStore:       runStore,
		modelStore:     modelStore,
		componentStore: componentStore,
		forecastStore:  forecastStore,
		obsStore:       obsStore,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a complete report for a run.
func (g *Generator) Generate(ctx context.Context, runID string) (*Report, error) {
	run, err := g.runStore.GetByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load run: %w", err)
	}

	obs, err := g.obsStore.GetBySeriesID(ctx, run.SeriesID)
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}

	report := &Report{
		GeneratedAt:    g.now(),
		RunID:          run.RunID,
		SeriesID:       run.SeriesID,
		Term:           run.Term,
		Geo:            run.Geo,
		Status:         run.Status,
		StartMonth:     run.StartMonth,
		EndMonth:       run.EndMonth,
		NObs:           run.NObs,
		BelowOneMonths: run.BelowOneMonths,
		BoxCoxLambda:   run.BoxCoxLambda,
		ModelsTried:    run.ModelsTried,
	}

	fillDataSummary(report, obs)

	if run.Status != domain.RunStatusCompleted {
		return report, nil
	}

	components, err := g.componentStore.GetByRunID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load components: %w", err)
	}
	fillSeasonalEffects(report, components)

	models, err := g.modelStore.GetByRunID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load models: %w", err)
	}
	fillModelSelection(report, models)

	fillDiagnostics(report, components)

	points, err := g.forecastStore.GetByRunID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load forecast: %w", err)
	}
	for _, p := range points {
		report.Forecast = append(report.Forecast, ForecastRow{
			Month:   p.Month,
			Horizon: p.Horizon,
			Point:   p.Point,
			Lo80:    p.Lo80,
			Hi80:    p.Hi80,
			Lo95:    p.Lo95,
			Hi95:    p.Hi95,
		})
	}

	return report, nil
}

func fillDataSummary(report *Report, obs []*domain.Observation) {
	if len(obs) == 0 {
		report.ValueMin = math.NaN()
		report.ValueMax = math.NaN()
		report.ValueMean = math.NaN()
		return
	}

	values := make([]float64, 0, len(obs))
	for _, o := range obs {
		values = append(values, o.Value)
		if o.Imputed {
			report.ImputedMonths = append(report.ImputedMonths, o.Month.String())
		}
	}

	report.ValueMin = values[0]
	report.ValueMax = values[0]
	for _, v := range values {
		report.ValueMin = math.Min(report.ValueMin, v)
		report.ValueMax = math.Max(report.ValueMax, v)
	}
	report.ValueMean = stats.Mean(values)
}

// fillSeasonalEffects derives the calendar-month pattern from the stored
// seasonal component.
func fillSeasonalEffects(report *Report, components []*domain.ComponentPoint) {
	effects := make(map[time.Month]float64, domain.MonthsInYear)
	for _, c := range components {
		if _, ok := effects[c.Month.Month]; !ok {
			effects[c.Month.Month] = c.Seasonal
		}
	}

	for m := time.January; m <= time.December; m++ {
		effect, ok := effects[m]
		if !ok {
			continue
		}
		report.SeasonalEffects = append(report.SeasonalEffects, SeasonalEffectRow{
			Month:  m,
			Effect: effect,
			Factor: math.Exp(effect),
		})
	}
}

func fillModelSelection(report *Report, models []*domain.ResidualModel) {
	for _, m := range models {
		report.Candidates = append(report.Candidates, ModelRow{
			Order:    m.Order,
			AIC:      m.AIC,
			AICc:     m.AICc,
			BIC:      m.BIC,
			LogLik:   m.LogLik,
			Selected: m.Selected,
		})
		if m.Selected {
			report.Selected = ModelDetail{
				Order:     m.Order,
				ARCoeffs:  m.ARCoeffs,
				MACoeffs:  m.MACoeffs,
				Intercept: m.Intercept,
				Variance:  m.Variance,
				NObs:      m.NObs,
			}
		}
	}
}

// fillDiagnostics runs the whiteness checks over the selected model's
// residuals. Components store the decomposition residuals, so the stored
// order is refitted over that window to recover the model residuals the
// Ljung-Box df adjustment assumes.
func fillDiagnostics(report *Report, components []*domain.ComponentPoint) {
	var window []float64
	for _, c := range components {
		if !math.IsNaN(c.Residual) {
			window = append(window, c.Residual)
		}
	}
	if len(window) == 0 {
		return
	}

	residuals := window
	order := report.Selected.Order
	model := arma.New(order.P, order.Q)
	if err := model.Fit(window); err == nil {
		residuals = model.Residuals()
	}

	fitdf := order.P + order.Q
	if lb := stats.LjungBox(residuals, diagnosticLags, fitdf); lb != nil {
		report.Diagnostics.LjungBoxStatistic = lb.Statistic
		report.Diagnostics.LjungBoxPValue = lb.PValue
		report.Diagnostics.LjungBoxLags = lb.Lags
		report.Diagnostics.LjungBoxDOF = lb.DOF
		report.Diagnostics.ResidualsWhite = lb.PValue >= 0.05
	}

	maxLag := acfMaxLag
	if maxLag >= len(residuals) {
		maxLag = len(residuals) - 1
	}
	if corr := stats.ACFWithConfidence(residuals, maxLag); corr != nil {
		report.Diagnostics.SignificantACFLags = corr.SignificantLags()
	}
}
