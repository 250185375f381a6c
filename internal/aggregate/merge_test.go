package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
)

func rec(p domain.Pollutant, d time.Time, mean float64) domain.DailyRecord {
	return domain.DailyRecord{Date: d, Pollutant: p, Mean: mean, ValidHours: 24}
}

func TestMerge_OneRowPerCalendarDay(t *testing.T) {
	start := day(2021, 1, 1)
	end := day(2021, 1, 31)

	// Very sparse coverage: two pollutants with a handful of days, two with
	// none at all.
	records := map[domain.Pollutant][]domain.DailyRecord{
		domain.SO2: {rec(domain.SO2, day(2021, 1, 5), 1.5)},
		domain.NO2: {
			rec(domain.NO2, day(2021, 1, 1), 10),
			rec(domain.NO2, day(2021, 1, 31), 12),
		},
	}

	ds := Merge(start, end, records)
	require.Len(t, ds.Rows, 31, "row count equals calendar days in range regardless of sparseness")

	assert.Equal(t, start, ds.Rows[0].Date)
	assert.Equal(t, end, ds.Rows[30].Date)

	assert.Equal(t, 10.0, ds.Rows[0].Value(domain.NO2))
	assert.Equal(t, 1.5, ds.Rows[4].Value(domain.SO2))
	assert.True(t, domain.IsMissing(ds.Rows[4].Value(domain.NO2)))
	assert.True(t, domain.IsMissing(ds.Rows[0].Value(domain.O3)))
	assert.True(t, domain.IsMissing(ds.Rows[0].Value(domain.PM25)))
}

func TestMerge_AllMissingDateKept(t *testing.T) {
	ds := Merge(day(2021, 2, 1), day(2021, 2, 3), nil)
	require.Len(t, ds.Rows, 3)
	for _, row := range ds.Rows {
		for _, p := range domain.Pollutants {
			assert.True(t, domain.IsMissing(row.Value(p)))
		}
	}
}

func TestMerge_MissingDailyMeanPropagates(t *testing.T) {
	// A day that failed the coverage rule arrives with a missing mean and
	// must stay missing in the merged row, not become zero.
	records := map[domain.Pollutant][]domain.DailyRecord{
		domain.O3: {rec(domain.O3, day(2021, 3, 1), domain.Missing())},
	}
	ds := Merge(day(2021, 3, 1), day(2021, 3, 1), records)
	require.Len(t, ds.Rows, 1)
	assert.True(t, domain.IsMissing(ds.Rows[0].Value(domain.O3)))
	assert.NotEqual(t, 0.0, ds.Rows[0].Value(domain.O3))
}

func TestMerge_LeapYearRange(t *testing.T) {
	ds := Merge(day(2024, 1, 1), day(2024, 12, 31), nil)
	assert.Len(t, ds.Rows, 366)
}

func TestCoverageRatioAndColumn(t *testing.T) {
	records := map[domain.Pollutant][]domain.DailyRecord{
		domain.PM25: {
			rec(domain.PM25, day(2021, 1, 1), 8),
			rec(domain.PM25, day(2021, 1, 3), 9),
		},
	}
	ds := Merge(day(2021, 1, 1), day(2021, 1, 4), records)

	assert.InDelta(t, 0.5, CoverageRatio(ds, domain.PM25), 1e-12)
	assert.Zero(t, CoverageRatio(ds, domain.SO2))

	col := Column(ds, domain.PM25)
	require.Len(t, col, 4)
	assert.Equal(t, 8.0, col[0])
	assert.True(t, domain.IsMissing(col[1]))
	assert.Equal(t, 9.0, col[2])
	assert.True(t, domain.IsMissing(col[3]))
}
