package storage

import (
	"context"

	"search-interest-lab/internal/domain"
)

// ObservationStore provides access to cleaned monthly observations.
type ObservationStore interface {
	// InsertBulk adds multiple observations atomically. Fails entire batch
	// on any duplicate (series_id, month).
	InsertBulk(ctx context.Context, obs []*domain.Observation) error

	// GetBySeriesID retrieves all observations for a series, ordered by month ASC.
	GetBySeriesID(ctx context.Context, seriesID string) ([]*domain.Observation, error)

	// GetByMonthRange retrieves observations within [start, end] (inclusive).
	GetByMonthRange(ctx context.Context, seriesID string, start, end domain.Month) ([]*domain.Observation, error)
}

// RunStore provides access to analysis run records.
type RunStore interface {
	// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, r *domain.AnalysisRun) error

	// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.AnalysisRun, error)

	// GetBySeriesID retrieves all runs for a series, ordered by created_at ASC.
	GetBySeriesID(ctx context.Context, seriesID string) ([]*domain.AnalysisRun, error)

	// GetLatest retrieves the most recent run for a series. Returns
	// ErrNotFound if the series has no runs.
	GetLatest(ctx context.Context, seriesID string) (*domain.AnalysisRun, error)
}

// ModelStore provides access to fitted residual models.
type ModelStore interface {
	// InsertBulk adds the candidate grid of a run atomically. Fails entire
	// batch on any duplicate (run_id, p, q).
	InsertBulk(ctx context.Context, models []*domain.ResidualModel) error

	// GetByRunID retrieves all candidate models for a run, ordered by AIC ASC.
	GetByRunID(ctx context.Context, runID string) ([]*domain.ResidualModel, error)

	// GetSelected retrieves the selected model of a run. Returns ErrNotFound
	// if the run has no selected model.
	GetSelected(ctx context.Context, runID string) (*domain.ResidualModel, error)
}

// ComponentStore provides access to decomposition component points.
type ComponentStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate
	// (run_id, month).
	InsertBulk(ctx context.Context, points []*domain.ComponentPoint) error

	// GetByRunID retrieves all points for a run, ordered by month ASC.
	GetByRunID(ctx context.Context, runID string) ([]*domain.ComponentPoint, error)

	// GetByMonthRange retrieves points for a run within [start, end] (inclusive).
	GetByMonthRange(ctx context.Context, runID string, start, end domain.Month) ([]*domain.ComponentPoint, error)
}

// ForecastStore provides access to forecast points.
type ForecastStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate
	// (run_id, horizon).
	InsertBulk(ctx context.Context, points []*domain.ForecastPoint) error

	// GetByRunID retrieves all points for a run, ordered by horizon ASC.
	GetByRunID(ctx context.Context, runID string) ([]*domain.ForecastPoint, error)
}
