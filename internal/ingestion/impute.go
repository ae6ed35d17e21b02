package ingestion

import (
	"errors"
	"math"

	"search-interest-lab/internal/domain"
)

// ErrAllMissing is returned when every value of the series is a gap.
var ErrAllMissing = errors.New("all values missing")

// Impute fills the gaps of a raw series and returns clean observations.
// A gap at calendar month m is filled with the mean of the same calendar
// month across all other years; when no other year has that month, the
// overall mean is used. The export's own March-2020 outage is the known
// case this handles.
func Impute(raw *RawSeries) ([]domain.Observation, error) {
	n := len(raw.Values)
	if n == 0 {
		return nil, ErrNoData
	}

	// Per-calendar-month sums over observed values.
	monthSum := make(map[int]float64)
	monthCount := make(map[int]int)
	totalSum := 0.0
	totalCount := 0

	month := raw.Start
	for i := 0; i < n; i++ {
		v := raw.Values[i]
		if !math.IsNaN(v) {
			key := int(month.Month)
			monthSum[key] += v
			monthCount[key]++
			totalSum += v
			totalCount++
		}
		month = month.Next()
	}

	if totalCount == 0 {
		return nil, ErrAllMissing
	}
	overallMean := totalSum / float64(totalCount)

	obs := make([]domain.Observation, n)
	month = raw.Start
	for i := 0; i < n; i++ {
		v := raw.Values[i]
		imputed := false
		if math.IsNaN(v) {
			key := int(month.Month)
			if monthCount[key] > 0 {
				v = monthSum[key] / float64(monthCount[key])
			} else {
				v = overallMean
			}
			imputed = true
		}
		obs[i] = domain.Observation{
			SeriesID: raw.SeriesID,
			Month:    month,
			Value:    v,
			Imputed:  imputed,
			BelowOne: raw.BelowOne[i],
		}
		month = month.Next()
	}

	return obs, nil
}

// ToSeries converts clean observations into a domain series.
func ToSeries(obs []domain.Observation) *domain.Series {
	if len(obs) == 0 {
		return &domain.Series{}
	}
	values := make([]float64, len(obs))
	for i, o := range obs {
		values[i] = o.Value
	}
	return domain.NewSeries(obs[0].SeriesID, obs[0].Month, values)
}
