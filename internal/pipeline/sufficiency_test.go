package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"search-interest-lab/internal/domain"
)

func obsRun(n, imputed int) []*domain.Observation {
	obs := make([]*domain.Observation, n)
	m := domain.Month{Year: 2020, Month: 1}
	for i := range obs {
		obs[i] = &domain.Observation{SeriesID: "s1", Month: m, Value: 10, Imputed: i < imputed}
		m = m.Next()
	}
	return obs
}

func TestCheckSufficiencyPass(t *testing.T) {
	result := CheckSufficiency(obsRun(36, 2))

	assert.True(t, result.AllPass)
	assert.Len(t, result.Checks, 3)
	for _, check := range result.Checks {
		assert.True(t, check.Pass, check.Name)
	}
}

func TestCheckSufficiencyTooShort(t *testing.T) {
	result := CheckSufficiency(obsRun(23, 0))

	assert.False(t, result.AllPass)
	assert.False(t, result.Checks[0].Pass)
}

func TestCheckSufficiencyTooManyImputed(t *testing.T) {
	result := CheckSufficiency(obsRun(30, 7))

	assert.False(t, result.AllPass)
	assert.False(t, result.Checks[1].Pass)
}

func TestCheckSufficiencyNonPositive(t *testing.T) {
	obs := obsRun(36, 0)
	obs[5].Value = 0

	result := CheckSufficiency(obs)
	assert.False(t, result.AllPass)
	assert.False(t, result.Checks[2].Pass)
}
