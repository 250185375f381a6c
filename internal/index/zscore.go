// Package index computes per-pollutant rolling z-scores and the Daily
// Pollution Burden Index over the merged daily dataset.
package index

import (
	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/couchcryptid/air-quality-etl/internal/stats"
)

// Params controls the rolling normalization.
type Params struct {
	// Window is the trailing window length in calendar days, inclusive of
	// the scored day.
	Window int
	// MinObservations is the minimum count of non-missing values a window
	// must hold before a z-score is produced.
	MinObservations int
}

// RollingZScores computes a trailing-window z-score for each position of
// values, where values holds one entry per consecutive calendar day with
// missing markers for absent days.
//
// For position i the window is values[max(0, i-Window+1) .. i]; the mean and
// population standard deviation are taken over the window's non-missing
// entries. The score is missing when the day's own value is missing, when
// the window holds fewer than MinObservations non-missing entries, or when
// the window standard deviation is zero. Early positions use the shrinking
// window available from the start of the range, subject to the same
// observation floor.
func RollingZScores(values []float64, p Params) []float64 {
	scores := make([]float64, len(values))
	window := make([]float64, 0, p.Window)

	for i := range values {
		scores[i] = domain.Missing()
		if domain.IsMissing(values[i]) {
			continue
		}

		lo := i - p.Window + 1
		if lo < 0 {
			lo = 0
		}
		window = window[:0]
		for _, v := range values[lo : i+1] {
			if !domain.IsMissing(v) {
				window = append(window, v)
			}
		}
		if len(window) < p.MinObservations {
			continue
		}

		sd := stats.PopStd(window)
		if sd == 0 {
			continue
		}
		scores[i] = (values[i] - stats.Mean(window)) / sd
	}
	return scores
}
