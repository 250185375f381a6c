package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// batch pipeline.
type Metrics struct {
	RowsParsed        *prometheus.CounterVec // label: pollutant
	RowsSkipped       *prometheus.CounterVec // label: pollutant
	SentinelsReplaced *prometheus.CounterVec // label: pollutant

	DaysAggregated    *prometheus.CounterVec // label: pollutant
	DaysBelowCoverage *prometheus.CounterVec // label: pollutant

	ZScoresComputed prometheus.Counter
	ZScoresMissing  prometheus.Counter

	StageDuration   *prometheus.HistogramVec // label: stage
	PipelineRunning prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RowsParsed,
		m.RowsSkipped,
		m.SentinelsReplaced,
		m.DaysAggregated,
		m.DaysBelowCoverage,
		m.ZScoresComputed,
		m.ZScoresMissing,
		m.StageDuration,
		m.PipelineRunning,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airq_etl",
			Name:      "rows_parsed_total",
			Help:      "Day rows successfully parsed from raw pollutant files.",
		}, []string{"pollutant"}),
		RowsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airq_etl",
			Name:      "rows_skipped_total",
			Help:      "Day rows skipped during load (malformed, duplicate, or fully missing).",
		}, []string{"pollutant"}),
		SentinelsReplaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airq_etl",
			Name:      "sentinels_replaced_total",
			Help:      "Hour cells holding a sentinel code replaced with the missing marker.",
		}, []string{"pollutant"}),
		DaysAggregated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airq_etl",
			Name:      "days_aggregated_total",
			Help:      "Days promoted to a daily mean by the coverage rule.",
		}, []string{"pollutant"}),
		DaysBelowCoverage: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airq_etl",
			Name:      "days_below_coverage_total",
			Help:      "Days marked missing for insufficient valid hours.",
		}, []string{"pollutant"}),
		ZScoresComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "airq_etl",
			Name:      "zscores_computed_total",
			Help:      "Per-pollutant rolling z-scores successfully computed.",
		}),
		ZScoresMissing: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "airq_etl",
			Name:      "zscores_missing_total",
			Help:      "Per-pollutant z-scores marked missing (thin window, zero stddev, or missing value).",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "airq_etl",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "airq_etl",
			Name:      "pipeline_running",
			Help:      "1 while a batch run is active, 0 otherwise.",
		}),
	}
}
