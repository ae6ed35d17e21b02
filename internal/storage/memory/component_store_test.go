package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"search-interest-lab/internal/domain"
	"search-interest-lab/internal/storage"
)

func makeComponents(runID string, start domain.Month, n int) []*domain.ComponentPoint {
	points := make([]*domain.ComponentPoint, n)
	m := start
	for i := range points {
		points[i] = &domain.ComponentPoint{
			RunID:    runID,
			SeriesID: "s1",
			Month:    m,
			Observed: float64(i + 1),
		}
		m = m.Next()
	}
	return points
}

func TestComponentStoreInsertAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewComponentStore()

	points := makeComponents("r1", domain.Month{Year: 2019, Month: 10}, 6)
	require.NoError(t, store.InsertBulk(ctx, points))

	got, err := store.GetByRunID(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, got, 6)
	assert.Equal(t, domain.Month{Year: 2019, Month: 10}, got[0].Month)
	assert.Equal(t, domain.Month{Year: 2020, Month: 3}, got[5].Month)
}

func TestComponentStoreMonthRange(t *testing.T) {
	ctx := context.Background()
	store := NewComponentStore()

	points := makeComponents("r1", domain.Month{Year: 2020, Month: 1}, 12)
	require.NoError(t, store.InsertBulk(ctx, points))

	got, err := store.GetByMonthRange(ctx, "r1",
		domain.Month{Year: 2020, Month: 6}, domain.Month{Year: 2020, Month: 8})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 6.0, got[0].Observed)
}

func TestComponentStoreDuplicate(t *testing.T) {
	ctx := context.Background()
	store := NewComponentStore()

	points := makeComponents("r1", domain.Month{Year: 2020, Month: 1}, 1)
	require.NoError(t, store.InsertBulk(ctx, points))
	assert.ErrorIs(t, store.InsertBulk(ctx, points), storage.ErrDuplicateKey)
}
