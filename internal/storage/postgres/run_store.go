package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"search-interest-lab/internal/domain"
	"search-interest-lab/internal/storage"
)

// RunStore implements storage.RunStore using PostgreSQL.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

const runColumns = `
	run_id, series_id, term, geo,
	start_year, start_month, end_year, end_month, n_obs,
	imputed_months, below_one_months,
	boxcox_lambda, selected_p, selected_q, selected_aic, models_tried, horizon,
	status, created_at
`

// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(ctx context.Context, r *domain.AnalysisRun) error {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO analysis_runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err := s.pool.Exec(ctx, query,
		r.RunID,
		r.SeriesID,
		r.Term,
		r.Geo,
		r.StartMonth.Year,
		int(r.StartMonth.Month),
		r.EndMonth.Year,
		int(r.EndMonth.Month),
		r.NObs,
		r.ImputedMonths,
		r.BelowOneMonths,
		r.BoxCoxLambda,
		r.SelectedOrder.P,
		r.SelectedOrder.Q,
		r.SelectedAIC,
		r.ModelsTried,
		r.Horizon,
		r.Status,
		r.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.AnalysisRun, error) {
	query := `SELECT ` + runColumns + ` FROM analysis_runs WHERE run_id = $1`

	row := s.pool.QueryRow(ctx, query, runID)
	r, err := scanRun(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get run by id: %w", err)
	}
	return r, nil
}

// GetBySeriesID retrieves all runs for a series, ordered by created_at ASC.
func (s *RunStore) GetBySeriesID(ctx context.Context, seriesID string) ([]*domain.AnalysisRun, error) {
	query := `
		SELECT ` + runColumns + `
		FROM analysis_runs
		WHERE series_id = $1
		ORDER BY created_at ASC, run_id ASC
	`

	rows, err := s.pool.Query(ctx, query, seriesID)
	if err != nil {
		return nil, fmt.Errorf("get runs by series: %w", err)
	}
	defer rows.Close()

	var runs []*domain.AnalysisRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}

	return runs, nil
}

// GetLatest retrieves the most recent run for a series.
func (s *RunStore) GetLatest(ctx context.Context, seriesID string) (*domain.AnalysisRun, error) {
	query := `
		SELECT ` + runColumns + `
		FROM analysis_runs
		WHERE series_id = $1
		ORDER BY created_at DESC, run_id DESC
		LIMIT 1
	`

	row := s.pool.QueryRow(ctx, query, seriesID)
	r, err := scanRun(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest run: %w", err)
	}
	return r, nil
}

// scanRun scans a single row into an AnalysisRun.
func scanRun(row pgx.Row) (*domain.AnalysisRun, error) {
	var r domain.AnalysisRun
	var startYear, startMonth, endYear, endMonth int

	err := row.Scan(
		&r.RunID,
		&r.SeriesID,
		&r.Term,
		&r.Geo,
		&startYear,
		&startMonth,
		&endYear,
		&endMonth,
		&r.NObs,
		&r.ImputedMonths,
		&r.BelowOneMonths,
		&r.BoxCoxLambda,
		&r.SelectedOrder.P,
		&r.SelectedOrder.Q,
		&r.SelectedAIC,
		&r.ModelsTried,
		&r.Horizon,
		&r.Status,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.StartMonth = domain.Month{Year: startYear, Month: time.Month(startMonth)}
	r.EndMonth = domain.Month{Year: endYear, Month: time.Month(endMonth)}
	return &r, nil
}
