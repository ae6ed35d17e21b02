package transform

import (
	"math"

	"search-interest-lab/internal/stats"
)

// Box-Cox lambda search bounds. Lambda near zero supports the log
// transform the pipeline always applies.
const (
	boxCoxLambdaMin  = -1.0
	boxCoxLambdaMax  = 2.0
	boxCoxLambdaStep = 0.05
)

// BoxCoxLambda estimates the Box-Cox lambda of a strictly positive series
// by maximizing the profile log-likelihood over a fixed grid.
// Returns NaN when the series is empty or contains non-positive values.
func BoxCoxLambda(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return math.NaN()
	}

	logSum := 0.0
	for _, v := range values {
		if v <= 0 {
			return math.NaN()
		}
		logSum += math.Log(v)
	}

	bestLambda := math.NaN()
	bestLogLik := math.Inf(-1)

	for lambda := boxCoxLambdaMin; lambda <= boxCoxLambdaMax+1e-9; lambda += boxCoxLambdaStep {
		transformed := make([]float64, n)
		for i, v := range values {
			transformed[i] = boxCox(v, lambda)
		}

		variance := stats.Variance(transformed)
		if variance <= 0 {
			continue
		}

		// Profile log-likelihood with the Jacobian term.
		logLik := -float64(n)/2*math.Log(variance) + (lambda-1)*logSum
		if logLik > bestLogLik {
			bestLogLik = logLik
			bestLambda = lambda
		}
	}

	return bestLambda
}

// boxCox applies the Box-Cox transform for a single value.
func boxCox(v, lambda float64) float64 {
	if math.Abs(lambda) < 1e-9 {
		return math.Log(v)
	}
	return (math.Pow(v, lambda) - 1) / lambda
}
