package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"search-interest-lab/internal/domain"
	"search-interest-lab/internal/storage"
)

func TestRunStoreRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewRunStore(pool)

	run := &domain.AnalysisRun{
		RunID:          "r1",
		SeriesID:       "s1",
		Term:           "machine learning",
		Geo:            "US",
		StartMonth:     domain.Month{Year: 2016, Month: 1},
		EndMonth:       domain.Month{Year: 2025, Month: 12},
		NObs:           120,
		ImputedMonths:  1,
		BelowOneMonths: 2,
		BoxCoxLambda:   0.05,
		SelectedOrder:  domain.ARMAOrder{P: 2, Q: 1},
		SelectedAIC:    -310.5,
		ModelsTried:    36,
		Horizon:        12,
		Status:         domain.RunStatusCompleted,
		CreatedAt:      time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Insert(ctx, run))

	got, err := store.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, run.Term, got.Term)
	assert.Equal(t, run.StartMonth, got.StartMonth)
	assert.Equal(t, run.EndMonth, got.EndMonth)
	assert.Equal(t, run.SelectedOrder, got.SelectedOrder)
	assert.Equal(t, run.Status, got.Status)

	assert.ErrorIs(t, store.Insert(ctx, run), storage.ErrDuplicateKey)
}

func TestRunStoreGetLatest(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewRunStore(pool)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"r1", "r2"} {
		run := &domain.AnalysisRun{
			RunID:     id,
			SeriesID:  "s1",
			Term:      "go",
			Status:    domain.RunStatusCompleted,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, store.Insert(ctx, run))
	}

	got, err := store.GetLatest(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "r2", got.RunID)

	_, err = store.GetLatest(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
