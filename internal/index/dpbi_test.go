package index

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
)

// buildDataset makes a contiguous dataset from per-pollutant columns of
// equal length.
func buildDataset(t *testing.T, cols map[domain.Pollutant][]float64) domain.Dataset {
	t.Helper()
	n := 0
	for _, col := range cols {
		n = len(col)
		break
	}
	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

	ds := domain.Dataset{Start: start, End: start.AddDate(0, 0, n-1)}
	for i := 0; i < n; i++ {
		row := domain.MergedRow{
			Date:   start.AddDate(0, 0, i),
			Values: make(map[domain.Pollutant]float64),
		}
		for _, p := range domain.Pollutants {
			col, ok := cols[p]
			require.True(t, ok, "column for %s", p)
			row.Values[p] = col[i]
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds
}

func TestCompute_AveragesAvailableZScores(t *testing.T) {
	// Four identical ramps: every pollutant z-score is identical, so DPBI
	// equals the per-pollutant score wherever defined.
	ramp := []float64{1, 2, 3, 4, 5, 6}
	ds := buildDataset(t, map[domain.Pollutant][]float64{
		domain.SO2: ramp, domain.NO2: ramp, domain.O3: ramp, domain.PM25: ramp,
	})

	rows := Compute(ds, Params{Window: 3, MinObservations: 3})
	require.Len(t, rows, 6)

	assert.True(t, domain.IsMissing(rows[0].DPBI))
	assert.True(t, domain.IsMissing(rows[1].DPBI))
	for i := 2; i < 6; i++ {
		require.False(t, domain.IsMissing(rows[i].DPBI), "row %d", i)
		assert.InDelta(t, rows[i].ZScores[domain.SO2], rows[i].DPBI, 1e-12)
	}
}

func TestCompute_ThreeOfFourAvailable(t *testing.T) {
	ramp := []float64{1, 2, 3, 4, 5, 6}
	missingCol := make([]float64, len(ramp))
	for i := range missingCol {
		missingCol[i] = domain.Missing()
	}

	ds := buildDataset(t, map[domain.Pollutant][]float64{
		domain.SO2: ramp, domain.NO2: ramp, domain.O3: ramp, domain.PM25: missingCol,
	})

	rows := Compute(ds, Params{Window: 3, MinObservations: 3})
	last := rows[len(rows)-1]

	require.False(t, domain.IsMissing(last.DPBI))
	assert.True(t, domain.IsMissing(last.ZScores[domain.PM25]))

	// DPBI is the mean of exactly the three available scores.
	sum := last.ZScores[domain.SO2] + last.ZScores[domain.NO2] + last.ZScores[domain.O3]
	assert.InDelta(t, sum/3, last.DPBI, 1e-12)
}

func TestCompute_AllMissingDayIsMissing(t *testing.T) {
	col := []float64{1, 2, 3, domain.Missing(), 5, 6}
	ds := buildDataset(t, map[domain.Pollutant][]float64{
		domain.SO2: col, domain.NO2: col, domain.O3: col, domain.PM25: col,
	})

	rows := Compute(ds, Params{Window: 3, MinObservations: 2})
	assert.True(t, domain.IsMissing(rows[3].DPBI))
}
