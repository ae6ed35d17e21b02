package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"search-interest-lab/internal/domain"
	"search-interest-lab/internal/storage"
)

func TestObservationStoreRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewObservationStore(pool)

	obs := []*domain.Observation{
		{SeriesID: "s1", Month: domain.Month{Year: 2020, Month: 12}, Value: 55, BelowOne: false},
		{SeriesID: "s1", Month: domain.Month{Year: 2021, Month: 1}, Value: 0.5, BelowOne: true},
		{SeriesID: "s1", Month: domain.Month{Year: 2021, Month: 2}, Value: 60, Imputed: true},
	}
	require.NoError(t, store.InsertBulk(ctx, obs))

	got, err := store.GetBySeriesID(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, domain.Month{Year: 2020, Month: 12}, got[0].Month)
	assert.True(t, got[1].BelowOne)
	assert.True(t, got[2].Imputed)

	ranged, err := store.GetByMonthRange(ctx, "s1",
		domain.Month{Year: 2021, Month: 1}, domain.Month{Year: 2021, Month: 2})
	require.NoError(t, err)
	require.Len(t, ranged, 2)
	assert.Equal(t, 0.5, ranged[0].Value)
}

func TestObservationStoreDuplicateRollsBack(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewObservationStore(pool)

	first := []*domain.Observation{
		{SeriesID: "s1", Month: domain.Month{Year: 2021, Month: 1}, Value: 10},
	}
	require.NoError(t, store.InsertBulk(ctx, first))

	batch := []*domain.Observation{
		{SeriesID: "s1", Month: domain.Month{Year: 2021, Month: 2}, Value: 20},
		{SeriesID: "s1", Month: domain.Month{Year: 2021, Month: 1}, Value: 30},
	}
	err := store.InsertBulk(ctx, batch)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := store.GetBySeriesID(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, got, 1, "failed batch must roll back entirely")
}
