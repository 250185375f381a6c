package stats

import "math"

// minTrendObservations is the floor below which trend estimates are not
// reported; short series give meaningless slopes and rank correlations.
const minTrendObservations = 10

// OLSResult holds an ordinary least-squares slope estimate with its
// two-sided significance.
type OLSResult struct {
	Slope     float64
	Intercept float64
	PValue    float64
	N         int
}

// OLS fits y = intercept + slope*x by least squares and reports the
// two-sided p-value of the slope under the t distribution with n-2 degrees
// of freedom. Returns NaN fields when fewer than 10 paired observations are
// supplied or the x values are degenerate.
func OLS(x, y []float64) OLSResult {
	n := len(y)
	if n != len(x) || n < minTrendObservations {
		return OLSResult{Slope: math.NaN(), Intercept: math.NaN(), PValue: math.NaN(), N: n}
	}

	mx := Mean(x)
	my := Mean(y)

	var sxx, sxy float64
	for i := 0; i < n; i++ {
		dx := x[i] - mx
		sxx += dx * dx
		sxy += dx * (y[i] - my)
	}
	if sxx == 0 {
		return OLSResult{Slope: math.NaN(), Intercept: math.NaN(), PValue: math.NaN(), N: n}
	}

	slope := sxy / sxx
	intercept := my - slope*mx

	// Residual variance with n-2 degrees of freedom for the slope t-test.
	var sse float64
	for i := 0; i < n; i++ {
		r := y[i] - intercept - slope*x[i]
		sse += r * r
	}
	df := float64(n - 2)

	pValue := math.NaN()
	if df > 0 {
		se := math.Sqrt(sse / df / sxx)
		if se == 0 {
			// A perfect fit: the slope is exact.
			pValue = 0
		} else {
			t := slope / se
			pValue = 2 * (1 - StudentTCDF(math.Abs(t), df))
		}
	}

	return OLSResult{Slope: slope, Intercept: intercept, PValue: pValue, N: n}
}
