// Package pipeline orchestrates the full analysis of a search-interest
// series: sufficiency gate, transform, decomposition, residual model
// selection, and forecast, with results persisted through the stores.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"search-interest-lab/internal/arma"
	"search-interest-lab/internal/decompose"
	"search-interest-lab/internal/domain"
	"search-interest-lab/internal/forecast"
	"search-interest-lab/internal/idhash"
	"search-interest-lab/internal/ingestion"
	"search-interest-lab/internal/observability"
	"search-interest-lab/internal/storage"
	"search-interest-lab/internal/transform"
)

// DefaultHorizon is the number of months forecast ahead.
const DefaultHorizon = 12

// Analyzer runs the analysis pipeline over cleaned observations.
type Analyzer struct {
	runStore       storage.RunStore
	modelStore     storage.ModelStore
	componentStore storage.ComponentStore
	forecastStore  storage.ForecastStore

	horizon int
	logger  *log.Logger
	clock   func() time.Time
}

// NewAnalyzer creates a new analyzer over the given stores.
func NewAnalyzer(
	runStore storage.RunStore,
	modelStore storage.ModelStore,
	componentStore storage.ComponentStore,
	forecastStore storage.ForecastStore,
	logger *log.Logger,
) *Analyzer {
	return &Analyzer{
		runStore:       runStore,
		modelStore:     modelStore,
		componentStore: componentStore,
		forecastStore:  forecastStore,
		horizon:        DefaultHorizon,
		logger:         logger,
		clock:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic run IDs.
func (a *Analyzer) WithClock(clock func() time.Time) *Analyzer {
	a.clock = clock
	return a
}

// WithHorizon overrides the forecast horizon.
func (a *Analyzer) WithHorizon(horizon int) *Analyzer {
	a.horizon = horizon
	return a
}

// Run analyzes one series and persists every artifact. The returned run
// carries status INSUFFICIENT_DATA when the sufficiency gate fails; the
// run record is stored either way.
func (a *Analyzer) Run(ctx context.Context, term, geo string, obs []domain.Observation) (*domain.AnalysisRun, error) {
	if len(obs) == 0 {
		return nil, fmt.Errorf("no observations for term %q", term)
	}

	createdAt := a.clock()
	seriesID := obs[0].SeriesID
	start := obs[0].Month
	end := obs[len(obs)-1].Month
	runID := idhash.ComputeRunID(seriesID, start.String(), end.String(), a.horizon, createdAt.Unix())

	run := &domain.AnalysisRun{
		RunID:      runID,
		SeriesID:   seriesID,
		Term:       term,
		Geo:        geo,
		StartMonth: start,
		EndMonth:   end,
		NObs:       len(obs),
		Horizon:    a.horizon,
		CreatedAt:  createdAt,
	}
	for _, o := range obs {
		if o.Imputed {
			run.ImputedMonths++
		}
		if o.BelowOne {
			run.BelowOneMonths++
		}
	}

	obsPtrs := make([]*domain.Observation, len(obs))
	for i := range obs {
		obsPtrs[i] = &obs[i]
	}

	sufficiency := CheckSufficiency(obsPtrs)
	if !sufficiency.AllPass {
		for _, check := range sufficiency.Checks {
			if !check.Pass {
				a.logger.Printf("sufficiency check failed: %s (need %s, have %s)",
					check.Name, check.Threshold, check.Actual)
			}
		}
		run.Status = domain.RunStatusInsufficientData
		observability.RecordAnalysisRun(run.Status)
		if err := a.runStore.Insert(ctx, run); err != nil {
			return nil, fmt.Errorf("store run: %w", err)
		}
		return run, nil
	}

	if err := a.analyze(ctx, run, obs); err != nil {
		run.Status = domain.RunStatusFailed
		observability.RecordAnalysisRun(run.Status)
		if insErr := a.runStore.Insert(ctx, run); insErr != nil {
			return nil, fmt.Errorf("store failed run: %w (analysis error: %v)", insErr, err)
		}
		return run, err
	}

	run.Status = domain.RunStatusCompleted
	observability.RecordAnalysisRun(run.Status)
	observability.DefaultMetrics.LastSuccessfulRun.SetToCurrentTime()
	if err := a.runStore.Insert(ctx, run); err != nil {
		return nil, fmt.Errorf("store run: %w", err)
	}
	return run, nil
}

// analyze executes the statistical phases and fills run with results.
func (a *Analyzer) analyze(ctx context.Context, run *domain.AnalysisRun, obs []domain.Observation) error {
	series := ingestion.ToSeries(obs)

	// Box-Cox estimate is reported; the pipeline itself always works on
	// the log scale.
	run.BoxCoxLambda = transform.BoxCoxLambda(series.Values)

	phaseStart := a.clock()
	logged, err := transform.Log(series)
	if err != nil {
		return fmt.Errorf("log transform: %w", err)
	}

	d, err := decompose.Classical(logged, domain.MonthsInYear)
	if err != nil {
		return fmt.Errorf("decompose: %w", err)
	}
	observability.RecordAnalysisPhase("decompose", a.clock().Sub(phaseStart).Seconds())

	residuals, _ := decompose.TrimmedResidual(d)
	if len(residuals) == 0 {
		return fmt.Errorf("decomposition left no usable residuals")
	}

	phaseStart = a.clock()
	search, err := arma.Search(residuals, a.logger)
	if err != nil {
		return fmt.Errorf("model search: %w", err)
	}
	observability.RecordAnalysisPhase("model_search", a.clock().Sub(phaseStart).Seconds())
	observability.RecordModelSearch(
		search.Tried-search.Failed, search.Failed,
		search.Best.Order.P, search.Best.Order.Q)

	run.SelectedOrder = search.Best.Order
	run.SelectedAIC = search.Best.Model.AIC
	run.ModelsTried = search.Tried

	a.logger.Printf("selected ARMA(%d,%d) for %s: aic=%.2f (%d tried, %d failed)",
		search.Best.Order.P, search.Best.Order.Q, run.SeriesID,
		search.Best.Model.AIC, search.Tried, search.Failed)

	fc, err := forecast.Compose(run.RunID, d, search.Best.Model, a.horizon)
	if err != nil {
		return fmt.Errorf("compose forecast: %w", err)
	}

	return a.persist(ctx, run, obs, d, search, fc)
}

// persist stores components, candidate models, and the forecast.
func (a *Analyzer) persist(
	ctx context.Context,
	run *domain.AnalysisRun,
	obs []domain.Observation,
	d *domain.Decomposition,
	search *arma.SearchResult,
	fc *domain.Forecast,
) error {
	components := make([]*domain.ComponentPoint, len(obs))
	for i := range obs {
		components[i] = &domain.ComponentPoint{
			RunID:    run.RunID,
			SeriesID: run.SeriesID,
			Month:    obs[i].Month,
			Observed: obs[i].Value,
			Log:      d.Log[i],
			Trend:    d.Trend[i],
			Seasonal: d.Seasonal[i],
			Residual: d.Residual[i],
		}
	}
	if err := a.componentStore.InsertBulk(ctx, components); err != nil {
		return fmt.Errorf("store components: %w", err)
	}

	models := make([]*domain.ResidualModel, 0, len(search.Candidates))
	for _, c := range search.Candidates {
		models = append(models, &domain.ResidualModel{
			RunID:     run.RunID,
			SeriesID:  run.SeriesID,
			Order:     c.Order,
			ARCoeffs:  c.Model.ARCoeffs,
			MACoeffs:  c.Model.MACoeffs,
			Intercept: c.Model.Intercept,
			Variance:  c.Model.Variance,
			LogLik:    c.Model.LogLik,
			AIC:       c.Model.AIC,
			AICc:      c.Model.AICc,
			BIC:       c.Model.BIC,
			NObs:      c.Model.NObs(),
			Selected:  c.Order == search.Best.Order,
		})
	}
	if err := a.modelStore.InsertBulk(ctx, models); err != nil {
		return fmt.Errorf("store models: %w", err)
	}

	points := make([]*domain.ForecastPoint, len(fc.Points))
	for i := range fc.Points {
		points[i] = &fc.Points[i]
	}
	if err := a.forecastStore.InsertBulk(ctx, points); err != nil {
		return fmt.Errorf("store forecast: %w", err)
	}

	return nil
}
