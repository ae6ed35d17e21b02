package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"search-interest-lab/internal/domain"
	"search-interest-lab/internal/storage"
)

func TestForecastStoreInsertAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewForecastStore()

	m := domain.Month{Year: 2026, Month: 1}
	points := make([]*domain.ForecastPoint, 0, 12)
	for h := 12; h >= 1; h-- {
		points = append(points, &domain.ForecastPoint{
			RunID:    "r1",
			SeriesID: "s1",
			Month:    m,
			Horizon:  h,
			Point:    float64(h),
		})
		m = m.Next()
	}
	require.NoError(t, store.InsertBulk(ctx, points))

	got, err := store.GetByRunID(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, got, 12)

	// Ordered by horizon ASC regardless of insertion order.
	for i, p := range got {
		assert.Equal(t, i+1, p.Horizon)
	}
}

func TestForecastStoreDuplicateHorizon(t *testing.T) {
	ctx := context.Background()
	store := NewForecastStore()

	points := []*domain.ForecastPoint{
		{RunID: "r1", Horizon: 1},
		{RunID: "r1", Horizon: 1},
	}
	err := store.InsertBulk(ctx, points)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestForecastStoreEmptyRun(t *testing.T) {
	ctx := context.Background()
	store := NewForecastStore()

	got, err := store.GetByRunID(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}
