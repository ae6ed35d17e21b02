package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"search-interest-lab/internal/domain"
	"search-interest-lab/internal/storage"
)

func TestModelStoreInsertAndGetByRunID(t *testing.T) {
	ctx := context.Background()
	store := NewModelStore()

	models := []*domain.ResidualModel{
		{RunID: "r1", Order: domain.ARMAOrder{P: 1, Q: 0}, AIC: -50},
		{RunID: "r1", Order: domain.ARMAOrder{P: 0, Q: 1}, AIC: -70, Selected: true},
		{RunID: "r1", Order: domain.ARMAOrder{P: 2, Q: 2}, AIC: -40},
	}
	require.NoError(t, store.InsertBulk(ctx, models))

	got, err := store.GetByRunID(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Ordered by AIC ASC.
	assert.Equal(t, -70.0, got[0].AIC)
	assert.Equal(t, -40.0, got[2].AIC)
}

func TestModelStoreGetSelected(t *testing.T) {
	ctx := context.Background()
	store := NewModelStore()

	models := []*domain.ResidualModel{
		{RunID: "r1", Order: domain.ARMAOrder{P: 1, Q: 0}, AIC: -50},
		{RunID: "r1", Order: domain.ARMAOrder{P: 0, Q: 1}, AIC: -70, Selected: true},
	}
	require.NoError(t, store.InsertBulk(ctx, models))

	got, err := store.GetSelected(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.ARMAOrder{P: 0, Q: 1}, got.Order)

	_, err = store.GetSelected(ctx, "r2")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestModelStoreDuplicateOrder(t *testing.T) {
	ctx := context.Background()
	store := NewModelStore()

	models := []*domain.ResidualModel{
		{RunID: "r1", Order: domain.ARMAOrder{P: 1, Q: 1}},
	}
	require.NoError(t, store.InsertBulk(ctx, models))
	assert.ErrorIs(t, store.InsertBulk(ctx, models), storage.ErrDuplicateKey)
}

func TestModelStoreCopiesCoefficients(t *testing.T) {
	ctx := context.Background()
	store := NewModelStore()

	models := []*domain.ResidualModel{
		{RunID: "r1", Order: domain.ARMAOrder{P: 1, Q: 0}, ARCoeffs: []float64{0.5}},
	}
	require.NoError(t, store.InsertBulk(ctx, models))

	got, err := store.GetByRunID(ctx, "r1")
	require.NoError(t, err)
	got[0].ARCoeffs[0] = 999

	again, err := store.GetByRunID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 0.5, again[0].ARCoeffs[0])
}
