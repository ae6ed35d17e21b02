package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"search-interest-lab/internal/domain"
	"search-interest-lab/internal/storage"
)

// ComponentStore is an in-memory implementation of storage.ComponentStore.
type ComponentStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ComponentPoint // keyed by (run_id, month)
}

// NewComponentStore creates a new in-memory component store.
func NewComponentStore() *ComponentStore {
	return &ComponentStore{
		data: make(map[string]*domain.ComponentPoint),
	}
}

// componentKey generates a unique key for a component point.
func componentKey(runID string, month domain.Month) string {
	return fmt.Sprintf("%s|%s", runID, month)
}

// InsertBulk adds multiple points. Fails entire batch on duplicate.
func (s *ComponentStore) InsertBulk(_ context.Context, points []*domain.ComponentPoint) error {
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
		key := componentKey(p.RunID, p.Month)
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
		s.data[componentKey(p.RunID, p.Month)] = &pointCopy
	}

	return nil
}

// GetByRunID retrieves all points for a run, ordered by month ASC.
func (s *ComponentStore) GetByRunID(_ context.Context, runID string) ([]*domain.ComponentPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ComponentPoint
	for _, p := range s.data {
		if p.RunID == runID {
			pointCopy := *p
			result = append(result, &pointCopy)
		}
	}

	sortComponents(result)
	return result, nil
}

// GetByMonthRange retrieves points for a run within [start, end] (inclusive).
func (s *ComponentStore) GetByMonthRange(_ context.Context, runID string, start, end domain.Month) ([]*domain.ComponentPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ComponentPoint
	for _, p := range s.data {
		if p.RunID == runID && !p.Month.Before(start) && !end.Before(p.Month) {
			pointCopy := *p
			result = append(result, &pointCopy)
		}
	}

	sortComponents(result)
	return result, nil
}

func sortComponents(points []*domain.ComponentPoint) {
	sort.Slice(points, func(i, j int) bool {
		return points[i].Month.Before(points[j].Month)
	})
}

// Verify interface compliance at compile time.
var _ storage.ComponentStore = (*ComponentStore)(nil)
