package index

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/couchcryptid/air-quality-etl/internal/stats"
)

// manualZ recomputes the trailing-window z-score independently of the
// implementation under test.
func manualZ(values []float64, i, window, minObs int) float64 {
	lo := i - window + 1
	if lo < 0 {
		lo = 0
	}
	var in []float64
	for _, v := range values[lo : i+1] {
		if !domain.IsMissing(v) {
			in = append(in, v)
		}
	}
	if domain.IsMissing(values[i]) || len(in) < minObs {
		return domain.Missing()
	}
	sd := stats.PopStd(in)
	if sd == 0 {
		return domain.Missing()
	}
	return (values[i] - stats.Mean(in)) / sd
}

func TestRollingZScores_MatchesManualCalculation(t *testing.T) {
	values := []float64{5, 7, 9, 11, 13, 15}
	p := Params{Window: 3, MinObservations: 3}

	got := RollingZScores(values, p)
	require.Len(t, got, len(values))

	for i := range values {
		want := manualZ(values, i, p.Window, p.MinObservations)
		if domain.IsMissing(want) {
			assert.True(t, domain.IsMissing(got[i]), "index %d", i)
			continue
		}
		assert.InDelta(t, want, got[i], 1e-12, "index %d", i)
	}

	// First two positions lack the observation floor; the rest score a
	// linear ramp identically.
	assert.True(t, domain.IsMissing(got[0]))
	assert.True(t, domain.IsMissing(got[1]))
	assert.InDelta(t, 1.2247448713915892, got[2], 1e-12)
	assert.InDelta(t, got[2], got[5], 1e-12)
}

func TestRollingZScores_MissingValueDay(t *testing.T) {
	values := []float64{1, 2, 3, domain.Missing(), 5, 6}
	got := RollingZScores(values, Params{Window: 3, MinObservations: 2})

	assert.True(t, domain.IsMissing(got[3]), "a missing value never gets a score")
	// Neighbors still score from the non-missing window content.
	assert.False(t, domain.IsMissing(got[2]))
	assert.False(t, domain.IsMissing(got[4]))
}

func TestRollingZScores_ObservationFloor(t *testing.T) {
	// Window of 4 with only 2 non-missing values inside: below the floor
	// of 3, so no score even though the day itself has a value.
	values := []float64{1, domain.Missing(), domain.Missing(), 4}
	got := RollingZScores(values, Params{Window: 4, MinObservations: 3})
	assert.True(t, domain.IsMissing(got[3]))
}

func TestRollingZScores_ZeroStddev(t *testing.T) {
	values := []float64{2, 2, 2, 2, 2}
	got := RollingZScores(values, Params{Window: 3, MinObservations: 2})
	for i, z := range got {
		assert.True(t, domain.IsMissing(z), "index %d: constant window must not divide by zero", i)
	}
}

func TestRollingZScores_WarmupUsesShrinkingWindow(t *testing.T) {
	// With a 90-day window but a floor of 3, day 3 of the range already
	// scores using the short window available from the start.
	values := []float64{1, 2, 3, 4, 5}
	got := RollingZScores(values, Params{Window: 90, MinObservations: 3})

	assert.True(t, domain.IsMissing(got[0]))
	assert.True(t, domain.IsMissing(got[1]))
	assert.False(t, domain.IsMissing(got[2]))
	assert.InDelta(t, manualZ(values, 4, 90, 3), got[4], 1e-12)
}

func TestRollingZScores_UsesPopulationStddev(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	got := RollingZScores(values, Params{Window: 4, MinObservations: 4})

	mean := 2.5
	sd := math.Sqrt((2.25 + 0.25 + 0.25 + 2.25) / 4) // ddof=0
	assert.InDelta(t, (4-mean)/sd, got[3], 1e-12)
}
