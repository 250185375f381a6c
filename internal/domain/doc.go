// Package domain models hourly air-quality monitoring data and the derived
// daily structures the pipeline produces.
//
// # Data Source
//
// Raw input follows the Air Quality Ontario station export format: one CSV
// file per pollutant covering the study period hourly. Each file opens with a
// free-form metadata preamble (station name, station ID, units), followed by a
// header row containing a Date column and twenty-four hour columns H01..H24,
// followed by one row per calendar day. Column H(k) holds the concentration
// for hour k-1 of that day, so H01 is midnight and H24 is 23:00 local time.
//
// # Missing-Value Conventions
//
// The export encodes "no measurement" with the sentinel values 9999, -999,
// and -9999. The pipeline represents missing concentrations as NaN from the
// moment a cell is parsed; a missing value stays missing through every later
// stage and is never coerced to zero. Malformed cells (non-numeric,
// non-sentinel) are likewise treated as missing rather than failing the load.
//
// # Derived Structures
//
// HourlySeries is the cleaned per-pollutant hourly sequence. DailyRecord is
// the per-day reduction: the mean concentration is present only when at least
// MinValidHours (default 18) hourly values were measured that day. Dataset is
// the four-pollutant outer join over the full study range, one row per
// calendar day with no gaps. IndexRow carries the Daily Pollution Burden
// Index (DPBI): the mean of the available per-pollutant rolling z-scores for
// that day.
//
// # Units
//
// Concentrations are ppb for the gaseous pollutants (SO2, NO2, O3) and
// µg/m³ for PM2.5. Units are carried per pollutant and never mixed; the
// rolling z-score normalization is what makes the four series comparable.
package domain
