package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"search-interest-lab/internal/domain"
	"search-interest-lab/internal/storage"
)

// ModelStore is an in-memory implementation of storage.ModelStore.
type ModelStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ResidualModel // keyed by (run_id, p, q)
}

// NewModelStore creates a new in-memory model store.
func NewModelStore() *ModelStore {
	return &ModelStore{
		data: make(map[string]*domain.ResidualModel),
	}
}

// modelKey generates a unique key for a candidate model.
func modelKey(runID string, order domain.ARMAOrder) string {
	return fmt.Sprintf("%s|%d|%d", runID, order.P, order.Q)
}

// InsertBulk adds the candidate grid of a run. Fails entire batch on duplicate.
func (s *ModelStore) InsertBulk(_ context.Context, models []*domain.ResidualModel) error {
	if len(models) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(models))
	for _, m := range models {
		if m == nil || m.RunID == "" {
			return storage.ErrInvalidInput
		}
		key := modelKey(m.RunID, m.Order)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, m := range models {
		modelCopy := *m
		modelCopy.ARCoeffs = append([]float64(nil), m.ARCoeffs...)
		modelCopy.MACoeffs = append([]float64(nil), m.MACoeffs...)
		s.data[modelKey(m.RunID, m.Order)] = &modelCopy
	}

	return nil
}

// GetByRunID retrieves all candidate models for a run, ordered by AIC ASC.
func (s *ModelStore) GetByRunID(_ context.Context, runID string) ([]*domain.ResidualModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ResidualModel
	for _, m := range s.data {
		if m.RunID == runID {
			result = append(result, copyModel(m))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].AIC < result[j].AIC
	})

	return result, nil
}

// GetSelected retrieves the selected model of a run.
func (s *ModelStore) GetSelected(_ context.Context, runID string) (*domain.ResidualModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.data {
		if m.RunID == runID && m.Selected {
			return copyModel(m), nil
		}
	}

	return nil, storage.ErrNotFound
}

func copyModel(m *domain.ResidualModel) *domain.ResidualModel {
	modelCopy := *m
	modelCopy.ARCoeffs = append([]float64(nil), m.ARCoeffs...)
	modelCopy.MACoeffs = append([]float64(nil), m.MACoeffs...)
	return &modelCopy
}

// Verify interface compliance at compile time.
var _ storage.ModelStore = (*ModelStore)(nil)
