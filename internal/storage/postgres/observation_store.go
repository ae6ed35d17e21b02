package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"search-interest-lab/internal/domain"
	"search-interest-lab/internal/storage"
)

// ObservationStore implements storage.ObservationStore using PostgreSQL.
type ObservationStore struct {
	pool *Pool
}

// NewObservationStore creates a new ObservationStore.
func NewObservationStore(pool *Pool) *ObservationStore {
	return &ObservationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ObservationStore = (*ObservationStore)(nil)

// InsertBulk adds multiple observations atomically. Fails entire batch on
// any duplicate (series_id, year, month).
func (s *ObservationStore) InsertBulk(ctx context.Context, obs []*domain.Observation) error {
	if len(obs) == 0 {
		return nil
	}
	for _, o := range obs {
		if o == nil || o.SeriesID == "" {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO observations (
			series_id, year, month, value, imputed, below_one
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, o := range obs {
		_, err := tx.Exec(ctx, query,
			o.SeriesID,
			o.Month.Year,
			int(o.Month.Month),
			o.Value,
			o.Imputed,
			o.BelowOne,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert observation: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetBySeriesID retrieves all observations for a series, ordered by month ASC.
func (s *ObservationStore) GetBySeriesID(ctx context.Context, seriesID string) ([]*domain.Observation, error) {
	query := `
		SELECT series_id, year, month, value, imputed, below_one
		FROM observations
		WHERE series_id = $1
		ORDER BY year ASC, month ASC
	`

	rows, err := s.pool.Query(ctx, query, seriesID)
	if err != nil {
		return nil, fmt.Errorf("get observations by series: %w", err)
	}
	defer rows.Close()

	return scanObservations(rows)
}

// GetByMonthRange retrieves observations within [start, end] (inclusive).
func (s *ObservationStore) GetByMonthRange(ctx context.Context, seriesID string, start, end domain.Month) ([]*domain.Observation, error) {
	query := `
		SELECT series_id, year, month, value, imputed, below_one
		FROM observations
		WHERE series_id = $1
		  AND (year * 12 + month) >= ($2 * 12 + $3)
		  AND (year * 12 + month) <= ($4 * 12 + $5)
		ORDER BY year ASC, month ASC
	`

	rows, err := s.pool.Query(ctx, query, seriesID,
		start.Year, int(start.Month), end.Year, int(end.Month))
	if err != nil {
		return nil, fmt.Errorf("get observations by month range: %w", err)
	}
	defer rows.Close()

	return scanObservations(rows)
}

// scanObservations scans multiple rows into a slice of Observation.
func scanObservations(rows pgx.Rows) ([]*domain.Observation, error) {
	var obs []*domain.Observation

	for rows.Next() {
		var o domain.Observation
		var year, month int

		err := rows.Scan(
			&o.SeriesID,
			&year,
			&month,
			&o.Value,
			&o.Imputed,
			&o.BelowOne,
		)
		if err != nil {
			return nil, fmt.Errorf("scan observation row: %w", err)
		}

		o.Month = domain.Month{Year: year, Month: time.Month(month)}
		obs = append(obs, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observation rows: %w", err)
	}

	return obs, nil
}
