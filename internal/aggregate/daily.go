// Package aggregate reduces cleaned hourly series to daily records and joins
// the per-pollutant daily series into the merged study-range dataset.
package aggregate

import (
	"sort"
	"time"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
)

// Daily groups an hourly series by calendar day and applies the coverage
// rule: the daily mean is present only when at least minValidHours hourly
// values were measured that day. The threshold is judged against hours
// actually reported, so partial days (DST transitions, truncated files) are
// handled without a fixed 24-hour expectation. Output is ordered by date,
// one record per reported day.
func Daily(series domain.HourlySeries, minValidHours int) []domain.DailyRecord {
	type dayAccum struct {
		sum   float64
		valid int
	}
	byDay := make(map[time.Time]*dayAccum)

	for _, r := range series.Readings {
		day := domain.Date(r.Time)
		acc := byDay[day]
		if acc == nil {
			acc = &dayAccum{}
			byDay[day] = acc
		}
		if !domain.IsMissing(r.Value) {
			acc.sum += r.Value
			acc.valid++
		}
	}

	records := make([]domain.DailyRecord, 0, len(byDay))
	for day, acc := range byDay {
		mean := domain.Missing()
		if acc.valid >= minValidHours {
			mean = acc.sum / float64(acc.valid)
		}
		records = append(records, domain.DailyRecord{
			Date:       day,
			Pollutant:  series.Pollutant,
			Mean:       mean,
			ValidHours: acc.valid,
		})
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
	return records
}

// Merge outer-joins the per-pollutant daily records over the full study
// range [start, end]. The result has exactly one row per calendar day in the
// range; a date missing from a pollutant's records yields the missing marker
// for that pollutant, and no date is ever dropped even when all four are
// missing. No imputation happens here: missing stays missing.
func Merge(start, end time.Time, records map[domain.Pollutant][]domain.DailyRecord) domain.Dataset {
	start = domain.Date(start)
	end = domain.Date(end)

	byDay := make(map[domain.Pollutant]map[time.Time]float64, len(records))
	for p, recs := range records {
		m := make(map[time.Time]float64, len(recs))
		for _, r := range recs {
			m[r.Date] = r.Mean
		}
		byDay[p] = m
	}

	ds := domain.Dataset{Start: start, End: end}
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		row := domain.MergedRow{Date: day, Values: make(map[domain.Pollutant]float64, len(domain.Pollutants))}
		for _, p := range domain.Pollutants {
			v := domain.Missing()
			if m, ok := byDay[p]; ok {
				if mv, ok := m[day]; ok {
					v = mv
				}
			}
			row.Values[p] = v
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds
}

// CoverageRatio reports the fraction of days in the dataset with a present
// mean for pollutant p. Used for run summaries.
func CoverageRatio(ds domain.Dataset, p domain.Pollutant) float64 {
	if len(ds.Rows) == 0 {
		return 0
	}
	present := 0
	for _, row := range ds.Rows {
		if !domain.IsMissing(row.Value(p)) {
			present++
		}
	}
	return float64(present) / float64(len(ds.Rows))
}

// Column extracts pollutant p's daily means from the dataset in row order,
// with missing markers preserved.
func Column(ds domain.Dataset, p domain.Pollutant) []float64 {
	col := make([]float64, len(ds.Rows))
	for i, row := range ds.Rows {
		col[i] = row.Value(p)
	}
	return col
}
