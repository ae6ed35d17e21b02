package stats

import "gonum.org/v1/gonum/stat/distuv"

// LjungBoxResult represents the result of a Ljung-Box test.
type LjungBoxResult struct {
	Statistic float64
	PValue    float64
	Lags      int
	DOF       int
}

// LjungBox performs the Ljung-Box test for autocorrelation in residuals.
// The null hypothesis is no autocorrelation up to the given lag; p < 0.05
// rejects it. fitdf is the number of parameters estimated by the model
// (p + q for an ARMA fit), subtracted from the degrees of freedom.
func LjungBox(values []float64, lags, fitdf int) *LjungBoxResult {
	n := len(values)
	if n < 10 || lags < 1 {
		return nil
	}
	if lags >= n {
		lags = n - 1
	}

	acf := ACF(values, lags)
	if acf == nil {
		return nil
	}

	q := 0.0
	for k := 1; k <= lags; k++ {
		q += (acf[k] * acf[k]) / float64(n-k)
	}
	q *= float64(n * (n + 2))

	dof := lags - fitdf
	if dof < 1 {
		dof = 1
	}

	chi := distuv.ChiSquared{K: float64(dof)}
	pValue := 1 - chi.CDF(q)

	return &LjungBoxResult{
		Statistic: q,
		PValue:    pValue,
		Lags:      lags,
		DOF:       dof,
	}
}
