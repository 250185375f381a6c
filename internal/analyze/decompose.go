package analyze

import (
	"errors"
	"time"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
)

// Decomposition splits a daily series into additive components:
// value = trend + seasonal + residual wherever the trend is defined.
// Positions where the input or the centered trend window is missing carry
// missing markers in all three components.
type Decomposition struct {
	Dates    []time.Time
	Value    []float64
	Trend    []float64
	Seasonal []float64
	Residual []float64
	Period   int
}

// Decompose performs classical additive decomposition of the index series
// with the given seasonal period in days: trend by centered moving average
// (with the usual 2x(period) average for even periods), seasonal component
// by averaging the detrended values at each period position and centering
// them, residual as the remainder. Missing values are excluded from every
// average. Requires at least two full periods of data.
func Decompose(rows []domain.IndexRow, period int) (Decomposition, error) {
	n := len(rows)
	if period < 2 || n < 2*period {
		return Decomposition{}, errors.New("series shorter than two seasonal periods")
	}

	d := Decomposition{
		Dates:    make([]time.Time, n),
		Value:    make([]float64, n),
		Trend:    make([]float64, n),
		Seasonal: make([]float64, n),
		Residual: make([]float64, n),
		Period:   period,
	}
	for i, r := range rows {
		d.Dates[i] = r.Date
		d.Value[i] = r.DPBI
	}

	d.Trend = centeredMovingAverage(d.Value, period)

	// Detrend, then average by period position.
	pattern := make([]float64, period)
	counts := make([]int, period)
	for i := 0; i < n; i++ {
		if domain.IsMissing(d.Value[i]) || domain.IsMissing(d.Trend[i]) {
			continue
		}
		pos := i % period
		pattern[pos] += d.Value[i] - d.Trend[i]
		counts[pos]++
	}

	var patternSum float64
	patternN := 0
	for i := range pattern {
		if counts[i] > 0 {
			pattern[i] /= float64(counts[i])
			patternSum += pattern[i]
			patternN++
		} else {
			pattern[i] = domain.Missing()
		}
	}

	// Center the seasonal pattern so it sums to zero over one period.
	if patternN > 0 {
		offset := patternSum / float64(patternN)
		for i := range pattern {
			if !domain.IsMissing(pattern[i]) {
				pattern[i] -= offset
			}
		}
	}

	for i := 0; i < n; i++ {
		d.Seasonal[i] = pattern[i%period]
		if domain.IsMissing(d.Value[i]) || domain.IsMissing(d.Trend[i]) || domain.IsMissing(d.Seasonal[i]) {
			d.Residual[i] = domain.Missing()
			continue
		}
		d.Residual[i] = d.Value[i] - d.Trend[i] - d.Seasonal[i]
	}
	return d, nil
}

// centeredMovingAverage computes the classical trend estimate. For odd
// periods it is a simple centered window; for even periods the half-weighted
// endpoints of the 2xMA are approximated by a window of period+1 values with
// half weight on both ends. Windows containing any position outside the
// series are missing; missing values inside the window are skipped with
// their weight removed.
func centeredMovingAverage(values []float64, period int) []float64 {
	n := len(values)
	trend := make([]float64, n)

	half := period / 2
	for i := range trend {
		trend[i] = domain.Missing()

		lo, hi := i-half, i+half
		if lo < 0 || hi >= n {
			continue
		}

		var sum, weight float64
		for j := lo; j <= hi; j++ {
			if domain.IsMissing(values[j]) {
				continue
			}
			w := 1.0
			if period%2 == 0 && (j == lo || j == hi) {
				w = 0.5
			}
			sum += values[j] * w
			weight += w
		}
		if weight == 0 {
			continue
		}
		trend[i] = sum / weight
	}
	return trend
}
