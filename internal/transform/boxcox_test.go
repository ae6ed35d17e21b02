package transform

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/stat/distuv"
)

// normalScores returns n evenly spaced standard normal quantiles.
func normalScores(n int) []float64 {
	norm := distuv.Normal{Mu: 0, Sigma: 1}
	z := make([]float64, n)
	for i := range z {
		z[i] = norm.Quantile((float64(i) + 0.5) / float64(n))
	}
	return z
}

func TestBoxCoxLambdaZeroForLognormal(t *testing.T) {
	z := normalScores(200)
	values := make([]float64, len(z))
	for i, zi := range z {
		values[i] = math.Exp(3 + 0.5*zi)
	}

	lambda := BoxCoxLambda(values)
	assert.InDelta(t, 0, lambda, 0.051, "lognormal data supports the log transform")
}

func TestBoxCoxLambdaOneForNormal(t *testing.T) {
	z := normalScores(200)
	values := make([]float64, len(z))
	for i, zi := range z {
		values[i] = 100 + 5*zi
	}

	lambda := BoxCoxLambda(values)
	assert.InDelta(t, 1, lambda, 0.051, "already-normal data needs no transform")
}

func TestBoxCoxLambdaHalfForSquaredNormal(t *testing.T) {
	z := normalScores(200)
	values := make([]float64, len(z))
	for i, zi := range z {
		values[i] = (10 + zi) * (10 + zi)
	}

	lambda := BoxCoxLambda(values)
	assert.InDelta(t, 0.5, lambda, 0.051)
}

func TestBoxCoxLambdaRejectsBadInput(t *testing.T) {
	assert.True(t, math.IsNaN(BoxCoxLambda([]float64{1, -2, 3})))
	assert.True(t, math.IsNaN(BoxCoxLambda([]float64{5})))
	assert.True(t, math.IsNaN(BoxCoxLambda(nil)))
}
