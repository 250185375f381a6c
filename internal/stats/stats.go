// Package stats is the shared statistics kernel: descriptive moments,
// percentiles, trend estimators, and the distribution functions their
// p-values need. All functions operate on plain float64 slices that have
// already been filtered of missing values.
package stats

import "math"

// Mean returns the arithmetic mean of xs, or NaN for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range xs {
		sum += v
	}
	return sum / float64(len(xs))
}

// PopStd returns the population (ddof=0) standard deviation of xs, or NaN
// for an empty slice. The rolling z-score uses the population form to match
// the index definition.
func PopStd(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	mu := Mean(xs)
	sumSq := 0.0
	for _, v := range xs {
		d := v - mu
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)))
}
