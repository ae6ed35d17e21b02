package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"search-interest-lab/internal/domain"
	"search-interest-lab/internal/storage"
)

func makeObservations(seriesID string, start domain.Month, values []float64) []*domain.Observation {
	obs := make([]*domain.Observation, len(values))
	m := start
	for i, v := range values {
		obs[i] = &domain.Observation{SeriesID: seriesID, Month: m, Value: v}
		m = m.Next()
	}
	return obs
}

func TestObservationStoreInsertAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewObservationStore()

	obs := makeObservations("s1", domain.Month{Year: 2020, Month: 11}, []float64{10, 20, 30, 40})
	require.NoError(t, store.InsertBulk(ctx, obs))

	got, err := store.GetBySeriesID(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got, 4)

	// Ordered by month ASC across the year boundary.
	assert.Equal(t, domain.Month{Year: 2020, Month: 11}, got[0].Month)
	assert.Equal(t, domain.Month{Year: 2021, Month: 2}, got[3].Month)
}

func TestObservationStoreDuplicate(t *testing.T) {
	ctx := context.Background()
	store := NewObservationStore()

	obs := makeObservations("s1", domain.Month{Year: 2020, Month: 1}, []float64{10})
	require.NoError(t, store.InsertBulk(ctx, obs))

	err := store.InsertBulk(ctx, obs)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestObservationStoreIntraBatchDuplicate(t *testing.T) {
	ctx := context.Background()
	store := NewObservationStore()

	m := domain.Month{Year: 2020, Month: 1}
	obs := []*domain.Observation{
		{SeriesID: "s1", Month: m, Value: 1},
		{SeriesID: "s1", Month: m, Value: 2},
	}

	err := store.InsertBulk(ctx, obs)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := store.GetBySeriesID(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, got, "failed batch must not be partially applied")
}

func TestObservationStoreMonthRange(t *testing.T) {
	ctx := context.Background()
	store := NewObservationStore()

	obs := makeObservations("s1", domain.Month{Year: 2020, Month: 1}, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, store.InsertBulk(ctx, obs))

	got, err := store.GetByMonthRange(ctx, "s1",
		domain.Month{Year: 2020, Month: 2}, domain.Month{Year: 2020, Month: 4})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 2.0, got[0].Value)
	assert.Equal(t, 4.0, got[2].Value)
}

func TestObservationStoreInvalidInput(t *testing.T) {
	ctx := context.Background()
	store := NewObservationStore()

	err := store.InsertBulk(ctx, []*domain.Observation{{SeriesID: ""}})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestObservationStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewObservationStore()

	obs := makeObservations("s1", domain.Month{Year: 2020, Month: 1}, []float64{10})
	require.NoError(t, store.InsertBulk(ctx, obs))

	got, err := store.GetBySeriesID(ctx, "s1")
	require.NoError(t, err)
	got[0].Value = 999

	again, err := store.GetBySeriesID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 10.0, again[0].Value)
}
