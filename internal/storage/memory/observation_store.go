package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"search-interest-lab/internal/domain"
	"search-interest-lab/internal/storage"
)

// ObservationStore is an in-memory implementation of storage.ObservationStore.
type ObservationStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Observation // keyed by (series_id, month)
}

// NewObservationStore creates a new in-memory observation store.
func NewObservationStore() *ObservationStore {
	return &ObservationStore{
		data: make(map[string]*domain.Observation),
	}
}

// observationKey generates a unique key for an observation.
func observationKey(seriesID string, month domain.Month) string {
	return fmt.Sprintf("%s|%s", seriesID, month)
}

// InsertBulk adds multiple observations. Fails entire batch on any duplicate.
func (s *ObservationStore) InsertBulk(_ context.Context, obs []*domain.Observation) error {
	if len(obs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(obs))
	for _, o := range obs {
		if o == nil || o.SeriesID == "" {
			return storage.ErrInvalidInput
		}
		key := observationKey(o.SeriesID, o.Month)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, o := range obs {
		obsCopy := *o
		s.data[observationKey(o.SeriesID, o.Month)] = &obsCopy
	}

	return nil
}

// GetBySeriesID retrieves all observations for a series, ordered by month ASC.
func (s *ObservationStore) GetBySeriesID(_ context.Context, seriesID string) ([]*domain.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Observation
	for _, o := range s.data {
		if o.SeriesID == seriesID {
			obsCopy := *o
			result = append(result, &obsCopy)
		}
	}

	sortObservations(result)
	return result, nil
}

// GetByMonthRange retrieves observations within [start, end] (inclusive).
func (s *ObservationStore) GetByMonthRange(_ context.Context, seriesID string, start, end domain.Month) ([]*domain.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Observation
	for _, o := range s.data {
		if o.SeriesID == seriesID && !o.Month.Before(start) && !end.Before(o.Month) {
			obsCopy := *o
			result = append(result, &obsCopy)
		}
	}

	sortObservations(result)
	return result, nil
}

func sortObservations(obs []*domain.Observation) {
	sort.Slice(obs, func(i, j int) bool {
		return obs[i].Month.Before(obs[j].Month)
	})
}

// Verify interface compliance at compile time.
var _ storage.ObservationStore = (*ObservationStore)(nil)
