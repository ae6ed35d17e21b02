package clickhouse

import (
	"context"
	"fmt"
	"time"

	"search-interest-lab/internal/domain"
	"search-interest-lab/internal/storage"
)

// ForecastStore implements storage.ForecastStore using ClickHouse.
type ForecastStore struct {
	conn *Conn
}

// NewForecastStore creates a new ForecastStore.
func NewForecastStore(conn *Conn) *ForecastStore {
	return &ForecastStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ForecastStore = (*ForecastStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on duplicate (run_id, horizon).
func (s *ForecastStore) InsertBulk(ctx context.Context, points []*domain.ForecastPoint) error {
	if len(points) == 0 {
		return nil
	}

	type key struct {
		runID   string
		horizon int
	}
	seen := make(map[key]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.RunID == "" {
			return storage.ErrInvalidInput
		}
		k := key{p.RunID, p.Horizon}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, p := range points {
		exists, err := s.exists(ctx, p.RunID, p.Horizon)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO forecast_points (
			run_id, series_id, year, month, horizon,
			point, lo80, hi80, lo95, hi95,
			log_trend, log_seasonal, log_residual
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			p.RunID, p.SeriesID, uint16(p.Month.Year), uint8(p.Month.Month), uint8(p.Horizon),
			p.Point, p.Lo80, p.Hi80, p.Lo95, p.Hi95,
			p.LogTrend, p.LogSeasonal, p.LogResidual,
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

// GetByRunID retrieves all points for a run, ordered by horizon ASC.
func (s *ForecastStore) GetByRunID(ctx context.Context, runID string) ([]*domain.ForecastPoint, error) {
	query := `
		SELECT run_id, series_id, year, month, horizon,
		       point, lo80, hi80, lo95, hi95,
		       log_trend, log_seasonal, log_residual
		FROM forecast_points
		WHERE run_id = ?
		ORDER BY horizon ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("get forecast by run: %w", err)
	}
	defer rows.Close()

	var points []*domain.ForecastPoint
	for rows.Next() {
		var p domain.ForecastPoint
		var year uint16
		var month, horizon uint8

		err := rows.Scan(
			&p.RunID, &p.SeriesID, &year, &month, &horizon,
			&p.Point, &p.Lo80, &p.Hi80, &p.Lo95, &p.Hi95,
			&p.LogTrend, &p.LogSeasonal, &p.LogResidual,
		)
		if err != nil {
			return nil, fmt.Errorf("scan forecast row: %w", err)
		}

		p.Month = domain.Month{Year: int(year), Month: time.Month(month)}
		p.Horizon = int(horizon)
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate forecast rows: %w", err)
	}

	return points, nil
}

// exists checks whether a (run_id, horizon) point is already stored.
func (s *ForecastStore) exists(ctx context.Context, runID string, horizon int) (bool, error) {
	query := `
		SELECT count() FROM forecast_points
		WHERE run_id = ? AND horizon = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, runID, uint8(horizon)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
