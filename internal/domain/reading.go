package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// sentinels are the Air Quality Ontario codes for "no measurement".
var sentinels = map[float64]bool{
	9999:  true,
	-999:  true,
	-9999: true,
}

// Missing returns the marker used for absent concentrations throughout the
// pipeline. Stored as NaN so no arithmetic can accidentally absorb it.
func Missing() float64 {
	return math.NaN()
}

// IsMissing reports whether v is the missing marker.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// IsSentinel reports whether v is one of the missing-value sentinel codes.
func IsSentinel(v float64) bool {
	return sentinels[v]
}

// ParseConcentration converts a raw CSV cell into a concentration value.
// Sentinel codes, empty cells, and malformed cells all map to the missing
// marker; every other numeric value passes through unchanged. The mapping is
// idempotent: a missing marker formats back to an empty cell, which parses to
// missing again.
func ParseConcentration(cell string) float64 {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return Missing()
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || IsSentinel(v) {
		return Missing()
	}
	return v
}

// HourlyReading is one cleaned hourly observation for a pollutant.
// Value is the missing marker when the hour was not measured.
type HourlyReading struct {
	Time  time.Time
	Value float64
}

// HourlySeries is the cleaned, time-ordered hourly sequence for one
// pollutant. Missing hours are present with a missing Value, never dropped,
// so downstream coverage counts stay correct.
type HourlySeries struct {
	Pollutant Pollutant
	Readings  []HourlyReading
}

// DailyRecord is the per-day reduction of an HourlySeries. Mean carries the
// arithmetic mean of the valid hourly values when ValidHours meets the
// coverage threshold, and the missing marker otherwise. ValidHours is always
// in [0, 24].
type DailyRecord struct {
	Date       time.Time
	Pollutant  Pollutant
	Mean       float64
	ValidHours int
}

// MergedRow is one calendar day of the four-pollutant joined dataset.
type MergedRow struct {
	Date   time.Time
	Values map[Pollutant]float64
}

// Value returns the daily mean for p, or the missing marker when the
// pollutant has no record for this date.
func (r MergedRow) Value(p Pollutant) float64 {
	v, ok := r.Values[p]
	if !ok {
		return Missing()
	}
	return v
}

// Dataset is the merged daily table over the full study range: exactly one
// row per calendar day in [Start, End], no date ever dropped.
type Dataset struct {
	Start time.Time
	End   time.Time
	Rows  []MergedRow
}

// IndexRow is one day of the composite index series. DPBI is the mean of the
// available per-pollutant z-scores; ZScores holds the individual terms with
// missing markers where a pollutant contributed nothing.
type IndexRow struct {
	Date    time.Time
	DPBI    float64
	ZScores map[Pollutant]float64
}

// ExtremeFlag marks whether a day's DPBI reached the percentile threshold.
// Flags are derived on demand and recomputed per requested percentile.
type ExtremeFlag struct {
	Date       time.Time
	Percentile float64
	Threshold  float64
	IsExtreme  bool
}

// Date truncates t to midnight UTC, the canonical day key for grouping and
// joining.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
