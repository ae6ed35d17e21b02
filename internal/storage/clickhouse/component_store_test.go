package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"search-interest-lab/internal/domain"
	"search-interest-lab/internal/storage"
)

func TestComponentStoreRoundTrip(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewComponentStore(conn)

	points := []*domain.ComponentPoint{
		{RunID: "r1", SeriesID: "s1", Month: domain.Month{Year: 2020, Month: 11}, Observed: 50, Log: 3.912, Trend: 3.9, Seasonal: 0.01, Residual: 0.002},
		{RunID: "r1", SeriesID: "s1", Month: domain.Month{Year: 2020, Month: 12}, Observed: 55, Log: 4.007, Trend: 3.95, Seasonal: 0.05, Residual: 0.007},
		{RunID: "r1", SeriesID: "s1", Month: domain.Month{Year: 2021, Month: 1}, Observed: 48, Log: 3.871, Trend: 3.97, Seasonal: -0.09, Residual: -0.009},
	}
	require.NoError(t, store.InsertBulk(ctx, points))

	got, err := store.GetByRunID(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Ordered by month ASC across year boundary.
	assert.Equal(t, domain.Month{Year: 2020, Month: 11}, got[0].Month)
	assert.Equal(t, domain.Month{Year: 2021, Month: 1}, got[2].Month)
	assert.InDelta(t, 3.912, got[0].Log, 1e-9)

	ranged, err := store.GetByMonthRange(ctx, "r1",
		domain.Month{Year: 2020, Month: 12}, domain.Month{Year: 2021, Month: 1})
	require.NoError(t, err)
	require.Len(t, ranged, 2)
}

func TestComponentStoreDuplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewComponentStore(conn)

	points := []*domain.ComponentPoint{
		{RunID: "r1", SeriesID: "s1", Month: domain.Month{Year: 2021, Month: 1}, Observed: 10},
	}
	require.NoError(t, store.InsertBulk(ctx, points))
	assert.ErrorIs(t, store.InsertBulk(ctx, points), storage.ErrDuplicateKey)
}
