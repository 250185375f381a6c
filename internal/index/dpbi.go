package index

import (
	"github.com/couchcryptid/air-quality-etl/internal/domain"
)

// Compute derives the DPBI series from the merged dataset: a rolling z-score
// per pollutant, then the per-day mean of whatever z-scores are available.
// A day where all four z-scores are missing gets a missing DPBI; a day with
// three available equals the mean of exactly those three.
func Compute(ds domain.Dataset, p Params) []domain.IndexRow {
	zByPollutant := make(map[domain.Pollutant][]float64, len(domain.Pollutants))
	for _, pol := range domain.Pollutants {
		col := make([]float64, len(ds.Rows))
		for i, row := range ds.Rows {
			col[i] = row.Value(pol)
		}
		zByPollutant[pol] = RollingZScores(col, p)
	}

	rows := make([]domain.IndexRow, len(ds.Rows))
	for i, row := range ds.Rows {
		ir := domain.IndexRow{
			Date:    row.Date,
			DPBI:    domain.Missing(),
			ZScores: make(map[domain.Pollutant]float64, len(domain.Pollutants)),
		}

		sum := 0.0
		available := 0
		for _, pol := range domain.Pollutants {
			z := zByPollutant[pol][i]
			ir.ZScores[pol] = z
			if !domain.IsMissing(z) {
				sum += z
				available++
			}
		}
		if available > 0 {
			ir.DPBI = sum / float64(available)
		}
		rows[i] = ir
	}
	return rows
}
