// Package arma fits ARMA(p,q) models to decomposition residuals by
// conditional sum of squares.
package arma

import (
	"errors"
	"math"

	"search-interest-lab/internal/stats"
)

// Minimum observations beyond the model order required for a fit.
const minExtraObs = 10

// ErrInsufficientData is returned when the series is too short for the order.
var ErrInsufficientData = errors.New("insufficient data points for the specified order")

// Model is an ARMA(p,q) model with intercept.
type Model struct {
	P int
	Q int

	ARCoeffs  []float64
	MACoeffs  []float64
	Intercept float64
	Variance  float64

	LogLik float64
	AIC    float64
	AICc   float64
	BIC    float64

	fitted     bool
	data       []float64
	residuals  []float64
	fittedVals []float64
}

// New creates an unfitted ARMA model of the given order.
func New(p, q int) *Model {
	return &Model{
		P:        p,
		Q:        q,
		ARCoeffs: make([]float64, p),
		MACoeffs: make([]float64, q),
	}
}

// Fit estimates the model over values by conditional sum of squares.
// AR coefficients start from Yule-Walker estimates and are refined by
// gradient steps; coefficients are clamped to (-0.99, 0.99) to keep the
// model stationary and invertible.
func (m *Model) Fit(values []float64) error {
	if len(values) < m.P+m.Q+minExtraObs {
		return ErrInsufficientData
	}

	m.data = make([]float64, len(values))
	copy(m.data, values)

	if err := m.fitCSS(); err != nil {
		return err
	}
	m.calculateIC()

	m.fitted = true
	return nil
}

// fitCSS fits by conditional sum of squares.
func (m *Model) fitCSS() error {
	y := m.data
	n := len(y)

	if m.P == 0 && m.Q == 0 {
		// White noise model.
		m.Intercept = stats.Mean(y)
		m.Variance = stats.Variance(y)
		m.residuals = make([]float64, n)
		m.fittedVals = make([]float64, n)
		for i, v := range y {
			m.residuals[i] = v - m.Intercept
			m.fittedVals[i] = m.Intercept
		}
		return nil
	}

	if m.P > 0 {
		if acf := stats.ACF(y, m.P); acf != nil {
			if phi := yuleWalker(acf, m.P); phi != nil {
				m.ARCoeffs = phi
			}
		}
	}
	for i := range m.MACoeffs {
		m.MACoeffs[i] = 0.1
	}

	m.optimizeCSS(y)
	return nil
}

// optimizeCSS refines coefficients with gradient steps on the conditional
// sum of squares.
func (m *Model) optimizeCSS(y []float64) {
	n := len(y)
	p := m.P
	q := m.Q

	m.Intercept = stats.Mean(y)

	const (
		maxIter      = 100
		tolerance    = 1e-6
		learningRate = 0.01
	)

	startIdx := max(p, q)

	for iter := 0; iter < maxIter; iter++ {
		residuals := make([]float64, n)
		prevSSE := 0.0
		for t := startIdx; t < n; t++ {
			pred := m.predictOne(y, residuals, t)
			residuals[t] = y[t] - pred
			prevSSE += residuals[t] * residuals[t]
		}

		arGrad := make([]float64, p)
		maGrad := make([]float64, q)
		for t := startIdx; t < n; t++ {
			for i := 0; i < p && t-i-1 >= 0; i++ {
				arGrad[i] -= 2 * residuals[t] * (y[t-i-1] - m.Intercept)
			}
			for i := 0; i < q && t-i-1 >= 0; i++ {
				maGrad[i] -= 2 * residuals[t] * residuals[t-i-1]
			}
		}

		for i := 0; i < p; i++ {
			m.ARCoeffs[i] -= learningRate * arGrad[i] / float64(n)
			m.ARCoeffs[i] = clamp(m.ARCoeffs[i])
		}
		for i := 0; i < q; i++ {
			m.MACoeffs[i] -= learningRate * maGrad[i] / float64(n)
			m.MACoeffs[i] = clamp(m.MACoeffs[i])
		}

		newSSE := 0.0
		for t := startIdx; t < n; t++ {
			pred := m.predictOne(y, residuals, t)
			residuals[t] = y[t] - pred
			newSSE += residuals[t] * residuals[t]
		}

		if math.Abs(prevSSE-newSSE) < tolerance {
			break
		}
	}

	// Final residuals, fitted values, and variance.
	m.residuals = make([]float64, n)
	m.fittedVals = make([]float64, n)
	for t := 0; t < n; t++ {
		if t < startIdx {
			m.fittedVals[t] = m.Intercept
			m.residuals[t] = y[t] - m.Intercept
			continue
		}
		pred := m.predictOne(y, m.residuals, t)
		m.fittedVals[t] = pred
		m.residuals[t] = y[t] - pred
	}

	sse := 0.0
	count := 0
	for t := startIdx; t < n; t++ {
		sse += m.residuals[t] * m.residuals[t]
		count++
	}
	if count > p+q+1 {
		m.Variance = sse / float64(count-p-q-1)
	} else if count > 0 {
		m.Variance = sse / float64(count)
	}
}

// predictOne computes the one-step prediction at index t given history y
// and shock history residuals.
func (m *Model) predictOne(y, residuals []float64, t int) float64 {
	pred := m.Intercept
	for i := 0; i < m.P && t-i-1 >= 0; i++ {
		pred += m.ARCoeffs[i] * (y[t-i-1] - m.Intercept)
	}
	for i := 0; i < m.Q && t-i-1 >= 0; i++ {
		pred += m.MACoeffs[i] * residuals[t-i-1]
	}
	return pred
}

// calculateIC computes log-likelihood, AIC, AICc, and BIC assuming
// Gaussian errors.
func (m *Model) calculateIC() {
	n := len(m.residuals)
	k := m.P + m.Q + 1

	sse := 0.0
	for _, r := range m.residuals {
		sse += r * r
	}

	if m.Variance > 0 {
		m.LogLik = -float64(n)/2*math.Log(2*math.Pi) - float64(n)/2*math.Log(m.Variance) - sse/(2*m.Variance)
	} else {
		m.LogLik = math.Inf(-1)
	}

	kf := float64(k)
	nf := float64(n)

	m.AIC = -2*m.LogLik + 2*kf
	if nf-kf-1 > 0 {
		m.AICc = m.AIC + 2*kf*(kf+1)/(nf-kf-1)
	} else {
		m.AICc = math.Inf(1)
	}
	m.BIC = -2*m.LogLik + kf*math.Log(nf)
}

// Predict forecasts steps values ahead. Future shocks are zero.
func (m *Model) Predict(steps int) ([]float64, error) {
	if !m.fitted {
		return nil, errors.New("model must be fitted before prediction")
	}
	if steps < 1 {
		return nil, errors.New("steps must be at least 1")
	}

	n := len(m.data)

	extY := make([]float64, n+steps)
	copy(extY, m.data)
	extResiduals := make([]float64, n+steps)
	copy(extResiduals, m.residuals)

	for h := 0; h < steps; h++ {
		t := n + h
		pred := m.Intercept
		for i := 0; i < m.P && t-i-1 >= 0; i++ {
			pred += m.ARCoeffs[i] * (extY[t-i-1] - m.Intercept)
		}
		for i := 0; i < m.Q && t-i-1 >= 0 && t-i-1 < n; i++ {
			pred += m.MACoeffs[i] * extResiduals[t-i-1]
		}
		extY[t] = pred
		extResiduals[t] = 0
	}

	return extY[n:], nil
}

// PsiWeights returns the first steps MA(infinity) weights of the model,
// used to accumulate forecast variance: var(h) = sigma^2 * sum(psi_j^2,
// j=0..h-1) with psi_0 = 1.
func (m *Model) PsiWeights(steps int) []float64 {
	psi := make([]float64, steps)
	if steps == 0 {
		return psi
	}
	psi[0] = 1
	for j := 1; j < steps; j++ {
		v := 0.0
		if j <= m.Q {
			v = m.MACoeffs[j-1]
		}
		for i := 1; i <= m.P && i <= j; i++ {
			v += m.ARCoeffs[i-1] * psi[j-i]
		}
		psi[j] = v
	}
	return psi
}

// Residuals returns a copy of the fitted model residuals.
func (m *Model) Residuals() []float64 {
	if !m.fitted {
		return nil
	}
	out := make([]float64, len(m.residuals))
	copy(out, m.residuals)
	return out
}

// FittedValues returns a copy of the in-sample fitted values.
func (m *Model) FittedValues() []float64 {
	if !m.fitted {
		return nil
	}
	out := make([]float64, len(m.fittedVals))
	copy(out, m.fittedVals)
	return out
}

// NObs returns the number of observations the model was fitted on.
func (m *Model) NObs() int {
	return len(m.data)
}

func clamp(v float64) float64 {
	return math.Max(-0.99, math.Min(0.99, v))
}

// yuleWalker estimates AR coefficients from the ACF via Levinson-Durbin.
func yuleWalker(acf []float64, order int) []float64 {
	if order <= 0 || len(acf) <= order {
		return nil
	}

	phi := make([]float64, order)
	if order == 1 {
		phi[0] = acf[1]
		return phi
	}

	phi[0] = acf[1]
	v := 1 - phi[0]*phi[0]

	for i := 1; i < order; i++ {
		lambda := acf[i+1]
		for j := 0; j < i; j++ {
			lambda -= phi[j] * acf[i-j]
		}
		lambda /= v

		newPhi := make([]float64, i+1)
		for j := 0; j < i; j++ {
			newPhi[j] = phi[j] - lambda*phi[i-1-j]
		}
		newPhi[i] = lambda
		copy(phi, newPhi)

		v *= 1 - lambda*lambda
		if v <= 0 {
			break
		}
	}

	return phi
}
