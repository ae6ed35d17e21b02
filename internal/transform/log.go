// Package transform stabilizes the variance of interest series before
// decomposition.
package transform

import (
	"errors"
	"fmt"
	"math"

	"search-interest-lab/internal/domain"
)

// ErrNonPositive is returned when a value cannot be log-transformed.
var ErrNonPositive = errors.New("non-positive value in series")

// Log applies the natural logarithm to every value of the series.
// Cleaning maps "<1" to 0.5 and imputes gaps, so a conforming series is
// strictly positive; any other input is an ingestion bug.
func Log(s *domain.Series) (*domain.Series, error) {
	values := make([]float64, len(s.Values))
	for i, v := range s.Values {
		if v <= 0 {
			return nil, fmt.Errorf("%w: %v at %s", ErrNonPositive, v, s.MonthAt(i))
		}
		values[i] = math.Log(v)
	}
	return &domain.Series{ID: s.ID, Start: s.Start, Values: values}, nil
}

// Exp maps log-scale values back to the original scale.
func Exp(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.Exp(v)
	}
	return out
}
