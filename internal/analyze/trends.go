package analyze

import (
	"time"

	"github.com/couchcryptid/air-quality-etl/internal/aggregate"
	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/couchcryptid/air-quality-etl/internal/stats"
)

// TrendRow summarizes the monotone trend of one series: the OLS slope in
// concentration units per day against days since the first observation, and
// Kendall's tau-b against the observation order, each with its two-sided
// p-value. Fields are NaN when fewer than 10 non-missing observations exist.
type TrendRow struct {
	Series   string
	SlopeDay float64
	SlopeP   float64
	Tau      float64
	TauP     float64
	N        int
}

// seriesPoint pairs a date with a present value.
type seriesPoint struct {
	date  time.Time
	value float64
}

// Trend computes the trend statistics for one dated series, skipping missing
// values.
func Trend(name string, dates []time.Time, values []float64) TrendRow {
	points := make([]seriesPoint, 0, len(values))
	for i, v := range values {
		if !domain.IsMissing(v) {
			points = append(points, seriesPoint{date: dates[i], value: v})
		}
	}

	row := TrendRow{Series: name, N: len(points)}
	if len(points) == 0 {
		row.SlopeDay = domain.Missing()
		row.SlopeP = domain.Missing()
		row.Tau = domain.Missing()
		row.TauP = domain.Missing()
		return row
	}

	// Slope regressor: whole days elapsed since the first observation.
	// Rank regressor: observation position, tie-free by construction.
	days := make([]float64, len(points))
	order := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, pt := range points {
		days[i] = pt.date.Sub(points[0].date).Hours() / 24
		order[i] = float64(i)
		ys[i] = pt.value
	}

	ols := stats.OLS(days, ys)
	kendall := stats.KendallTau(order, ys)

	row.SlopeDay = ols.Slope
	row.SlopeP = ols.PValue
	row.Tau = kendall.Tau
	row.TauP = kendall.PValue
	return row
}

// TrendSummary produces one TrendRow per pollutant plus one for DPBI,
// mirroring the persisted trend summary table.
func TrendSummary(ds domain.Dataset, indexRows []domain.IndexRow) []TrendRow {
	dates := make([]time.Time, len(ds.Rows))
	for i, row := range ds.Rows {
		dates[i] = row.Date
	}

	rows := make([]TrendRow, 0, len(domain.Pollutants)+1)
	for _, p := range domain.Pollutants {
		rows = append(rows, Trend(string(p), dates, aggregate.Column(ds, p)))
	}

	dpbi := make([]float64, len(indexRows))
	indexDates := make([]time.Time, len(indexRows))
	for i, r := range indexRows {
		dpbi[i] = r.DPBI
		indexDates[i] = r.Date
	}
	rows = append(rows, Trend("DPBI", indexDates, dpbi))
	return rows
}
