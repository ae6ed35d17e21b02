package clickhouse

import (
	"context"
	"fmt"
	"time"

	"search-interest-lab/internal/domain"
	"search-interest-lab/internal/storage"
)

// ComponentStore implements storage.ComponentStore using ClickHouse.
type ComponentStore struct {
	conn *Conn
}

// NewComponentStore creates a new ComponentStore.
func NewComponentStore(conn *Conn) *ComponentStore {
	return &ComponentStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ComponentStore = (*ComponentStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on duplicate (run_id, month).
func (s *ComponentStore) InsertBulk(ctx context.Context, points []*domain.ComponentPoint) error {
	if len(points) == 0 {
		return nil
	}

	type key struct {
		runID string
		month domain.Month
	}
	seen := make(map[key]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.RunID == "" {
			return storage.ErrInvalidInput
		}
		k := key{p.RunID, p.Month}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// MergeTree does not enforce uniqueness, so check existing rows first.
	for _, p := range points {
		exists, err := s.exists(ctx, p.RunID, p.Month)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO decomposition_components (
			run_id, series_id, year, month, observed, log, trend, seasonal, residual
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			p.RunID, p.SeriesID, uint16(p.Month.Year), uint8(p.Month.Month),
			p.Observed, p.Log, p.Trend, p.Seasonal, p.Residual,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByRunID retrieves all points for a run, ordered by month ASC.
func (s *ComponentStore) GetByRunID(ctx context.Context, runID string) ([]*domain.ComponentPoint, error) {
	query := `
		SELECT run_id, series_id, year, month, observed, log, trend, seasonal, residual
		FROM decomposition_components
		WHERE run_id = ?
		ORDER BY year ASC, month ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("get components by run: %w", err)
	}
	defer rows.Close()

	return scanComponents(rows)
}

// GetByMonthRange retrieves points for a run within [start, end] (inclusive).
func (s *ComponentStore) GetByMonthRange(ctx context.Context, runID string, start, end domain.Month) ([]*domain.ComponentPoint, error) {
	query := `
		SELECT run_id, series_id, year, month, observed, log, trend, seasonal, residual
		FROM decomposition_components
		WHERE run_id = ?
		  AND (year * 12 + month) >= ?
		  AND (year * 12 + month) <= ?
		ORDER BY year ASC, month ASC
	`

	rows, err := s.conn.Query(ctx, query, runID,
		start.Year*12+int(start.Month), end.Year*12+int(end.Month))
	if err != nil {
		return nil, fmt.Errorf("get components by month range: %w", err)
	}
	defer rows.Close()

	return scanComponents(rows)
}

// exists checks whether a (run_id, month) point is already stored.
func (s *ComponentStore) exists(ctx context.Context, runID string, month domain.Month) (bool, error) {
	query := `
		SELECT count() FROM decomposition_components
		WHERE run_id = ? AND year = ? AND month = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, runID, uint16(month.Year), uint8(month.Month)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type chRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// scanComponents scans rows into ComponentPoints.
func scanComponents(rows chRows) ([]*domain.ComponentPoint, error) {
	var points []*domain.ComponentPoint

	for rows.Next() {
		var p domain.ComponentPoint
		var year uint16
		var month uint8

		err := rows.Scan(
			&p.RunID, &p.SeriesID, &year, &month,
			&p.Observed, &p.Log, &p.Trend, &p.Seasonal, &p.Residual,
		)
		if err != nil {
			return nil, fmt.Errorf("scan component row: %w", err)
		}

		p.Month = domain.Month{Year: int(year), Month: time.Month(month)}
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate component rows: %w", err)
	}

	return points, nil
}
