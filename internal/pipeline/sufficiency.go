package pipeline

import (
	"fmt"

	"search-interest-lab/internal/domain"
)

// Sufficiency thresholds applied before analysis.
const (
	minFullCycles      = 2
	maxImputedFraction = 0.20
)

// SufficiencyCheck represents one data sufficiency criterion.
type SufficiencyCheck struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// SufficiencyResult contains all checks over one series.
type SufficiencyResult struct {
	Checks  []SufficiencyCheck
	AllPass bool
}

// CheckSufficiency validates cleaned observations before analysis:
// at least two full seasonal cycles, at most 20% imputed months, and
// strictly positive values throughout.
func CheckSufficiency(obs []*domain.Observation) *SufficiencyResult {
	result := &SufficiencyResult{AllPass: true}

	n := len(obs)
	imputed := 0
	nonPositive := 0
	for _, o := range obs {
		if o.Imputed {
			imputed++
		}
		if o.Value <= 0 {
			nonPositive++
		}
	}

	minObs := minFullCycles * domain.MonthsInYear
	result.add(SufficiencyCheck{
		Name:      "observation count",
		Threshold: fmt.Sprintf(">= %d", minObs),
		Actual:    fmt.Sprintf("%d", n),
		Pass:      n >= minObs,
	})

	imputedFraction := 0.0
	if n > 0 {
		imputedFraction = float64(imputed) / float64(n)
	}
	result.add(SufficiencyCheck{
		Name:      "imputed fraction",
		Threshold: fmt.Sprintf("<= %.0f%%", maxImputedFraction*100),
		Actual:    fmt.Sprintf("%.1f%%", imputedFraction*100),
		Pass:      imputedFraction <= maxImputedFraction,
	})

	result.add(SufficiencyCheck{
		Name:      "positive values",
		Threshold: "all months > 0",
		Actual:    fmt.Sprintf("%d non-positive", nonPositive),
		Pass:      nonPositive == 0,
	})

	return result
}

func (r *SufficiencyResult) add(check SufficiencyCheck) {
	r.Checks = append(r.Checks, check)
	if !check.Pass {
		r.AllPass = false
	}
}
