// Package analyze derives extreme-event flags, trend statistics, and the
// seasonal decomposition from the DPBI series.
package analyze

import (
	"sort"
	"strconv"
	"strings"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/couchcryptid/air-quality-etl/internal/stats"
)

// ExtremeSet is the result of flagging one percentile threshold over the
// full index series.
type ExtremeSet struct {
	Percentile float64
	Threshold  float64
	Flags      []domain.ExtremeFlag
}

// FlagExtremes computes the p-th percentile over the non-missing DPBI values
// and marks every day whose DPBI is at or above it. Days with a missing DPBI
// are never flagged. Flags cover every index row, in order.
func FlagExtremes(rows []domain.IndexRow, percentile float64) ExtremeSet {
	values := make([]float64, 0, len(rows))
	for _, r := range rows {
		if !domain.IsMissing(r.DPBI) {
			values = append(values, r.DPBI)
		}
	}
	threshold := stats.Percentile(values, percentile)

	set := ExtremeSet{Percentile: percentile, Threshold: threshold}
	for _, r := range rows {
		set.Flags = append(set.Flags, domain.ExtremeFlag{
			Date:       r.Date,
			Percentile: percentile,
			Threshold:  threshold,
			IsExtreme:  !domain.IsMissing(r.DPBI) && r.DPBI >= threshold,
		})
	}
	return set
}

// YearlyCounts groups the flagged days by calendar year.
func YearlyCounts(set ExtremeSet) map[int]int {
	counts := make(map[int]int)
	for _, f := range set.Flags {
		if f.IsExtreme {
			counts[f.Date.Year()]++
		}
	}
	return counts
}

// Years returns the years present in counts in ascending order.
func Years(counts map[int]int) []int {
	years := make([]int, 0, len(counts))
	for y := range counts {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// ThresholdTag renders a percentile as the compact file tag used in output
// names: 90 -> "9", 95 -> "95", 97.5 -> "975".
func ThresholdTag(percentile float64) string {
	tag := strconv.Itoa(int(percentile * 10))
	return strings.TrimRight(tag, "0")
}
