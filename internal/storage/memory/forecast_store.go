package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"search-interest-lab/internal/domain"
	"search-interest-lab/internal/storage"
)

// ForecastStore is an in-memory implementation of storage.ForecastStore.
type ForecastStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ForecastPoint // keyed by (run_id, horizon)
}

// NewForecastStore creates a new in-memory forecast store.
func NewForecastStore() *ForecastStore {
	return &ForecastStore{
		data: make(map[string]*domain.ForecastPoint),
	}
}

// forecastKey generates a unique key for a forecast point.
func forecastKey(runID string, horizon int) string {
	return fmt.Sprintf("%s|%d", runID, horizon)
}

// InsertBulk adds multiple points. Fails entire batch on duplicate.
func (s *ForecastStore) InsertBulk(_ context.Context, points []*domain.ForecastPoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.RunID == "" {
			return storage.ErrInvalidInput
		}
		key := forecastKey(p.RunID, p.Horizon)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, p := range points {
		pointCopy := *p
		s.data[forecastKey(p.RunID, p.Horizon)] = &pointCopy
	}

	return nil
}

// GetByRunID retrieves all points for a run, ordered by horizon ASC.
func (s *ForecastStore) GetByRunID(_ context.Context, runID string) ([]*domain.ForecastPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ForecastPoint
	for _, p := range s.data {
		if p.RunID == runID {
			pointCopy := *p
			result = append(result, &pointCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Horizon < result[j].Horizon
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.ForecastStore = (*ForecastStore)(nil)
