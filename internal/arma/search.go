package arma

import (
	"errors"
	"log"
	"math"

	"search-interest-lab/internal/domain"
)

// MaxOrder bounds the AR and MA orders considered by the grid search.
const MaxOrder = 5

// ErrNoModelFit is returned when no candidate order produced a valid fit.
var ErrNoModelFit = errors.New("no candidate model could be fitted")

// Candidate is one fitted model from the grid search.
type Candidate struct {
	Order domain.ARMAOrder
	Model *Model
}

// SearchResult holds the selected model and the full candidate grid.
type SearchResult struct {
	Best       *Candidate
	Candidates []Candidate
	Tried      int
	Failed     int
}

// Search fits every ARMA(p,q) with p,q in [0, MaxOrder] to values and
// selects the model with the lowest AIC. Ties go to the model with fewer
// parameters. Orders that fail to fit are skipped and counted.
func Search(values []float64, logger *log.Logger) (*SearchResult, error) {
	result := &SearchResult{}

	for p := 0; p <= MaxOrder; p++ {
		for q := 0; q <= MaxOrder; q++ {
			result.Tried++

			model := New(p, q)
			if err := model.Fit(values); err != nil {
				result.Failed++
				if logger != nil {
					logger.Printf("arma(%d,%d) fit failed: %v", p, q, err)
				}
				continue
			}
			if math.IsNaN(model.AIC) || math.IsInf(model.AIC, 0) {
				result.Failed++
				continue
			}

			cand := Candidate{
				Order: domain.ARMAOrder{P: p, Q: q},
				Model: model,
			}
			result.Candidates = append(result.Candidates, cand)

			if better(&cand, result.Best) {
				best := cand
				result.Best = &best
			}
		}
	}

	if result.Best == nil {
		return nil, ErrNoModelFit
	}
	return result, nil
}

// better reports whether a beats b on AIC, breaking ties by parameter count.
func better(a, b *Candidate) bool {
	if b == nil {
		return true
	}
	if a.Model.AIC != b.Model.AIC {
		return a.Model.AIC < b.Model.AIC
	}
	return a.Order.P+a.Order.Q < b.Order.P+b.Order.Q
}
