package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"search-interest-lab/internal/domain"
	"search-interest-lab/internal/storage"
)

// ModelStore implements storage.ModelStore using PostgreSQL.
// AR and MA coefficients are stored as float8 arrays.
type ModelStore struct {
	pool *Pool
}

// NewModelStore creates a new ModelStore.
func NewModelStore(pool *Pool) *ModelStore {
	return &ModelStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ModelStore = (*ModelStore)(nil)

const modelColumns = `
	run_id, series_id, p, q,
	ar_coeffs, ma_coeffs, intercept, variance,
	log_lik, aic, aicc, bic, n_obs, selected
`

// InsertBulk adds the candidate grid of a run atomically. Fails entire
// batch on any duplicate (run_id, p, q).
func (s *ModelStore) InsertBulk(ctx context.Context, models []*domain.ResidualModel) error {
	if len(models) == 0 {
		return nil
	}
	for _, m := range models {
		if m == nil || m.RunID == "" {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO residual_models (` + modelColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	for _, m := range models {
		_, err := tx.Exec(ctx, query,
			m.RunID,
			m.SeriesID,
			m.Order.P,
			m.Order.Q,
			m.ARCoeffs,
			m.MACoeffs,
			m.Intercept,
			m.Variance,
			m.LogLik,
			m.AIC,
			m.AICc,
			m.BIC,
			m.NObs,
			m.Selected,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert residual model: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByRunID retrieves all candidate models for a run, ordered by AIC ASC.
func (s *ModelStore) GetByRunID(ctx context.Context, runID string) ([]*domain.ResidualModel, error) {
	query := `
		SELECT ` + modelColumns + `
		FROM residual_models
		WHERE run_id = $1
		ORDER BY aic ASC, p ASC, q ASC
	`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("get models by run: %w", err)
	}
	defer rows.Close()

	var models []*domain.ResidualModel
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan model row: %w", err)
		}
		models = append(models, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate model rows: %w", err)
	}

	return models, nil
}

// GetSelected retrieves the selected model of a run.
func (s *ModelStore) GetSelected(ctx context.Context, runID string) (*domain.ResidualModel, error) {
	query := `
		SELECT ` + modelColumns + `
		FROM residual_models
		WHERE run_id = $1 AND selected
	`

	row := s.pool.QueryRow(ctx, query, runID)
	m, err := scanModel(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get selected model: %w", err)
	}
	return m, nil
}

// scanModel scans a single row into a ResidualModel.
func scanModel(row pgx.Row) (*domain.ResidualModel, error) {
	var m domain.ResidualModel

	err := row.Scan(
		&m.RunID,
		&m.SeriesID,
		&m.Order.P,
		&m.Order.Q,
		&m.ARCoeffs,
		&m.MACoeffs,
		&m.Intercept,
		&m.Variance,
		&m.LogLik,
		&m.AIC,
		&m.AICc,
		&m.BIC,
		&m.NObs,
		&m.Selected,
	)
	if err != nil {
		return nil, err
	}

	return &m, nil
}
