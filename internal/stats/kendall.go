package stats

import (
	"math"
	"sort"
)

// KendallResult holds a Kendall tau-b rank correlation with its two-sided
// significance under the normal approximation.
type KendallResult struct {
	Tau    float64
	PValue float64
	N      int
}

// KendallTau computes the tau-b rank correlation between x and y with tie
// correction, and a two-sided p-value from the normal approximation of the
// S statistic. Returns NaN fields when fewer than 10 paired observations
// are supplied or either variable is constant.
func KendallTau(x, y []float64) KendallResult {
	n := len(y)
	if n != len(x) || n < minTrendObservations {
		return KendallResult{Tau: math.NaN(), PValue: math.NaN(), N: n}
	}

	var s float64 // concordant minus discordant
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := sign(x[j] - x[i])
			dy := sign(y[j] - y[i])
			s += dx * dy
		}
	}

	tx := tieCorrection(x)
	ty := tieCorrection(y)
	n0 := float64(n*(n-1)) / 2

	denom := math.Sqrt((n0 - tx.pairs) * (n0 - ty.pairs))
	if denom == 0 {
		return KendallResult{Tau: math.NaN(), PValue: math.NaN(), N: n}
	}
	tau := s / denom

	// Normal approximation of var(S) with tie terms; the joint-tie cross
	// terms vanish when at least one variable is tie-free, which holds for
	// the monotone day-index regressor this package is used with.
	nf := float64(n)
	varS := (nf*(nf-1)*(2*nf+5) - tx.v0 - ty.v0) / 18
	varS += tx.v1 * ty.v1 / (2 * nf * (nf - 1))
	varS += tx.v2 * ty.v2 / (9 * nf * (nf - 1) * (nf - 2))

	pValue := math.NaN()
	if varS > 0 {
		z := s / math.Sqrt(varS)
		pValue = 2 * (1 - NormalCDF(math.Abs(z)))
	} else if s == 0 {
		pValue = 1
	}

	return KendallResult{Tau: tau, PValue: pValue, N: n}
}

type tieStats struct {
	pairs float64 // sum t*(t-1)/2 over tie groups
	v0    float64 // sum t*(t-1)*(2t+5)
	v1    float64 // sum t*(t-1)
	v2    float64 // sum t*(t-1)*(t-2)
}

func tieCorrection(xs []float64) tieStats {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	var ts tieStats
	run := 1
	flush := func() {
		if run < 2 {
			return
		}
		t := float64(run)
		ts.pairs += t * (t - 1) / 2
		ts.v0 += t * (t - 1) * (2*t + 5)
		ts.v1 += t * (t - 1)
		ts.v2 += t * (t - 1) * (t - 2)
	}
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			run++
			continue
		}
		flush()
		run = 1
	}
	flush()
	return ts
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
