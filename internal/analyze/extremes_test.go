package analyze

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
)

// indexSeries builds contiguous index rows from values, with NaN for
// missing days.
func indexSeries(values []float64) []domain.IndexRow {
	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]domain.IndexRow, len(values))
	for i, v := range values {
		rows[i] = domain.IndexRow{Date: start.AddDate(0, 0, i), DPBI: v}
	}
	return rows
}

func TestFlagExtremes_QuantileThreshold(t *testing.T) {
	rows := indexSeries([]float64{10, 20, 30, 40, 50})
	set := FlagExtremes(rows, 80)

	assert.InDelta(t, 42.0, set.Threshold, 1e-12)
	flagged := 0
	for _, f := range set.Flags {
		if f.IsExtreme {
			flagged++
		}
	}
	assert.Equal(t, 1, flagged)
	assert.True(t, set.Flags[4].IsExtreme)
}

func TestFlagExtremes_FlagsAtMostTailShare(t *testing.T) {
	// 1000 distinct values: the 95th percentile must flag no more than ~5%.
	values := make([]float64, 1000)
	for i := range values {
		values[i] = float64(i)
	}
	set := FlagExtremes(indexSeries(values), 95)

	flagged := 0
	for _, f := range set.Flags {
		if f.IsExtreme {
			flagged++
		}
	}
	assert.LessOrEqual(t, flagged, 51, "at most ~5%% of 1000 non-missing values")
	assert.Greater(t, flagged, 0)
}

func TestFlagExtremes_SensitivityNesting(t *testing.T) {
	values := make([]float64, 400)
	for i := range values {
		values[i] = math.Sin(float64(i)/7) * float64(i%13)
	}
	rows := indexSeries(values)

	at90 := FlagExtremes(rows, 90)
	at95 := FlagExtremes(rows, 95)
	at975 := FlagExtremes(rows, 97.5)

	for i := range rows {
		if at975.Flags[i].IsExtreme {
			assert.True(t, at95.Flags[i].IsExtreme, "97.5 flags nest inside 95 (day %d)", i)
		}
		if at95.Flags[i].IsExtreme {
			assert.True(t, at90.Flags[i].IsExtreme, "95 flags nest inside 90 (day %d)", i)
		}
	}
}

func TestFlagExtremes_MissingDaysNeverFlagged(t *testing.T) {
	rows := indexSeries([]float64{1, domain.Missing(), 3, domain.Missing(), 5})
	set := FlagExtremes(rows, 50)

	assert.False(t, set.Flags[1].IsExtreme)
	assert.False(t, set.Flags[3].IsExtreme)
	// Threshold computed over the three present values only.
	assert.InDelta(t, 3.0, set.Threshold, 1e-12)
}

func TestYearlyCounts(t *testing.T) {
	rows := []domain.IndexRow{
		{Date: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), DPBI: 10},
		{Date: time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC), DPBI: 1},
		{Date: time.Date(2022, 3, 5, 0, 0, 0, 0, time.UTC), DPBI: 10},
		{Date: time.Date(2022, 8, 9, 0, 0, 0, 0, time.UTC), DPBI: 10},
	}
	set := FlagExtremes(rows, 50)
	counts := YearlyCounts(set)

	require.Equal(t, []int{2021, 2022}, Years(counts))
	assert.Equal(t, 1, counts[2021])
	assert.Equal(t, 2, counts[2022])
}

func TestThresholdTag(t *testing.T) {
	assert.Equal(t, "9", ThresholdTag(90))
	assert.Equal(t, "95", ThresholdTag(95))
	assert.Equal(t, "975", ThresholdTag(97.5))
}
