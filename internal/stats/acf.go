package stats

import "math"

// ACF calculates the autocorrelation function of values for lags 0..maxLag.
func ACF(values []float64, maxLag int) []float64 {
	n := len(values)
	if maxLag >= n {
		maxLag = n - 1
	}
	if maxLag < 0 {
		return nil
	}

	mean := Mean(values)
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	if variance == 0 {
		return nil
	}

	acf := make([]float64, maxLag+1)
	for k := 0; k <= maxLag; k++ {
		sum := 0.0
		for i := k; i < n; i++ {
			sum += (values[i] - mean) * (values[i-k] - mean)
		}
		acf[k] = sum / variance
	}

	return acf
}

// PACF calculates the partial autocorrelation function for lags 0..maxLag
// using the Durbin-Levinson recursion.
func PACF(values []float64, maxLag int) []float64 {
	n := len(values)
	if maxLag >= n {
		maxLag = n - 1
	}
	if maxLag < 1 {
		return nil
	}

	acf := ACF(values, maxLag)
	if acf == nil {
		return nil
	}

	pacf := make([]float64, maxLag+1)
	pacf[0] = 1.0

	phi := make([][]float64, maxLag+1)
	for i := range phi {
		phi[i] = make([]float64, maxLag+1)
	}

	phi[1][1] = acf[1]
	pacf[1] = acf[1]

	for k := 2; k <= maxLag; k++ {
		num := acf[k]
		den := 1.0
		for j := 1; j < k; j++ {
			num -= phi[k-1][j] * acf[k-j]
			den -= phi[k-1][j] * acf[j]
		}

		if den == 0 {
			pacf[k] = 0
			continue
		}

		phi[k][k] = num / den
		pacf[k] = phi[k][k]

		for j := 1; j < k; j++ {
			phi[k][j] = phi[k-1][j] - phi[k][k]*phi[k-1][k-j]
		}
	}

	return pacf
}

// CorrelogramResult holds ACF or PACF values with confidence bounds.
type CorrelogramResult struct {
	Lags       []int
	Values     []float64
	ConfBounds float64 // 95% bounds (±1.96/sqrt(n))
}

// ACFWithConfidence calculates the ACF with 95% confidence bounds.
func ACFWithConfidence(values []float64, maxLag int) *CorrelogramResult {
	acf := ACF(values, maxLag)
	if acf == nil {
		return nil
	}
	return newCorrelogram(acf, len(values))
}

// PACFWithConfidence calculates the PACF with 95% confidence bounds.
func PACFWithConfidence(values []float64, maxLag int) *CorrelogramResult {
	pacf := PACF(values, maxLag)
	if pacf == nil {
		return nil
	}
	return newCorrelogram(pacf, len(values))
}

func newCorrelogram(values []float64, n int) *CorrelogramResult {
	lags := make([]int, len(values))
	for i := range lags {
		lags[i] = i
	}
	return &CorrelogramResult{
		Lags:       lags,
		Values:     values,
		ConfBounds: 1.96 / math.Sqrt(float64(n)),
	}
}

// SignificantLags returns the lags (excluding 0) whose absolute value
// exceeds the confidence bound.
func (c *CorrelogramResult) SignificantLags() []int {
	var significant []int
	for i := 1; i < len(c.Values); i++ {
		if math.Abs(c.Values[i]) > c.ConfBounds {
			significant = append(significant, i)
		}
	}
	return significant
}
