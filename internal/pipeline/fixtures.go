package pipeline

import (
	"context"
	"fmt"
	"math"
	"strings"

	"search-interest-lab/internal/domain"
	"search-interest-lab/internal/idhash"
	"search-interest-lab/internal/ingestion"
	"search-interest-lab/internal/storage"
)

// FixtureTerm is the search term of the built-in demonstration series.
const (
	FixtureTerm = "board games"
	FixtureGeo  = ""
)

// FixtureCSV builds a synthetic ten-year monthly export in the trends CSV
// format: upward trend, December peak, two "<1" months at the start, and
// an empty cell for 2020-03.
func FixtureCSV() string {
	var sb strings.Builder
	sb.WriteString("Month,Interest\n")

	month := domain.Month{Year: 2016, Month: 1}
	for i := 0; i < 120; i++ {
		seasonal := 0.35 * math.Cos(2*math.Pi*float64(int(month.Month)-12)/12)
		level := math.Exp(2.2 + 0.012*float64(i) + seasonal)
		wobble := 1 + 0.03*math.Sin(float64(i)*1.7)
		value := math.Round(level * wobble)

		cell := fmt.Sprintf("%d", int(value))
		switch {
		case i < 2:
			cell = "<1"
		case month == (domain.Month{Year: 2020, Month: 3}):
			cell = ""
		}

		sb.WriteString(fmt.Sprintf("%s,%s\n", month, cell))
		month = month.Next()
	}

	return sb.String()
}

// LoadFixtures parses the built-in series, imputes it, and stores the
// observations. Returns the cleaned observations for direct analysis.
func LoadFixtures(ctx context.Context, obsStore storage.ObservationStore) ([]domain.Observation, error) {
	seriesID := idhash.ComputeSeriesID(FixtureTerm, FixtureGeo)

	raw, err := ingestion.Parse(strings.NewReader(FixtureCSV()), seriesID)
	if err != nil {
		return nil, fmt.Errorf("parse fixture csv: %w", err)
	}

	obs, err := ingestion.Impute(raw)
	if err != nil {
		return nil, fmt.Errorf("impute fixture series: %w", err)
	}

	obsPtrs := make([]*domain.Observation, len(obs))
	for i := range obs {
		obsPtrs[i] = &obs[i]
	}
	if err := obsStore.InsertBulk(ctx, obsPtrs); err != nil {
		return nil, fmt.Errorf("store fixture observations: %w", err)
	}

	return obs, nil
}
