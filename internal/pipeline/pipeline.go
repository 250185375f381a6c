// Package pipeline wires the batch stages together: parallel per-pollutant
// load and daily aggregation, the merge, the composite index, the analyzers,
// and persistence.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/air-quality-etl/internal/aggregate"
	"github.com/couchcryptid/air-quality-etl/internal/analyze"
	"github.com/couchcryptid/air-quality-etl/internal/config"
	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/couchcryptid/air-quality-etl/internal/index"
	"github.com/couchcryptid/air-quality-etl/internal/observability"
)

// SeriesLoader reads one pollutant's raw file into a cleaned hourly series.
type SeriesLoader interface {
	Load(pollutant domain.Pollutant, path string) (domain.HourlySeries, error)
}

// Persister stores a completed run's outputs.
type Persister interface {
	Persist(res *Result) error
}

// Result is everything one batch run produces.
type Result struct {
	RunID     string
	StartedAt time.Time

	Daily    map[domain.Pollutant][]domain.DailyRecord
	Dataset  domain.Dataset
	Index    []domain.IndexRow
	Extremes []analyze.ExtremeSet
	Trends   []analyze.TrendRow

	// Decomposition is nil when the index series is shorter than two
	// seasonal periods.
	Decomposition *analyze.Decomposition
}

// Pipeline runs the full batch transform.
type Pipeline struct {
	loader     SeriesLoader
	persisters []Persister
	cfg        *config.Config
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// New creates a Pipeline. Persisters run in order after the analysis stages
// complete; pass none to compute without persisting.
func New(loader SeriesLoader, persisters []Persister, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		loader:     loader,
		persisters: persisters,
		cfg:        cfg,
		logger:     logger,
		metrics:    metrics,
	}
}

// Run executes one batch run. The four pollutants are loaded and reduced to
// daily records in parallel; any pollutant failing to load aborts the run
// with an error naming it, never a zero-filled column. The remaining stages
// are sequential pure transforms.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	res := &Result{
		RunID:     uuid.NewString(),
		StartedAt: domain.Now(),
		Daily:     make(map[domain.Pollutant][]domain.DailyRecord, len(domain.Pollutants)),
	}
	logger := p.logger.With("run_id", res.RunID)

	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)
	logger.Info("pipeline started",
		"window_days", p.cfg.Index.WindowDays,
		"min_valid_hours", p.cfg.Study.MinValidHours,
	)

	start, end, err := p.cfg.StudyRange()
	if err != nil {
		return nil, err
	}

	if err := p.loadAndAggregate(ctx, res, logger); err != nil {
		return nil, err
	}

	mergeStart := time.Now()
	res.Dataset = aggregate.Merge(start, end, res.Daily)
	p.metrics.StageDuration.WithLabelValues("merge").Observe(time.Since(mergeStart).Seconds())
	coverage := make([]any, 0, 2*len(domain.Pollutants)+2)
	coverage = append(coverage, "days", len(res.Dataset.Rows))
	for _, pol := range domain.Pollutants {
		coverage = append(coverage, "coverage_"+string(pol), aggregate.CoverageRatio(res.Dataset, pol))
	}
	logger.Info("merged daily series", coverage...)

	indexStart := time.Now()
	res.Index = index.Compute(res.Dataset, index.Params{
		Window:          p.cfg.Index.WindowDays,
		MinObservations: p.cfg.Index.MinObservations,
	})
	p.observeIndex(res.Index)
	p.metrics.StageDuration.WithLabelValues("index").Observe(time.Since(indexStart).Seconds())

	analyzeStart := time.Now()
	for _, pct := range p.cfg.Extremes.Percentiles {
		set := analyze.FlagExtremes(res.Index, pct)
		res.Extremes = append(res.Extremes, set)
		logger.Info("flagged extremes",
			"percentile", pct,
			"threshold", set.Threshold,
			"flagged", flaggedCount(set),
		)
	}
	res.Trends = analyze.TrendSummary(res.Dataset, res.Index)

	if d, err := analyze.Decompose(res.Index, p.cfg.Index.SeasonalPeriod); err != nil {
		logger.Warn("seasonal decomposition skipped", "error", err)
	} else {
		res.Decomposition = &d
	}
	p.metrics.StageDuration.WithLabelValues("analyze").Observe(time.Since(analyzeStart).Seconds())

	persistStart := time.Now()
	for _, persister := range p.persisters {
		if err := persister.Persist(res); err != nil {
			return nil, fmt.Errorf("persist run %s: %w", res.RunID, err)
		}
	}
	p.metrics.StageDuration.WithLabelValues("persist").Observe(time.Since(persistStart).Seconds())

	logger.Info("pipeline finished", "elapsed", domain.Now().Sub(res.StartedAt))
	return res, nil
}

// loadAndAggregate runs the per-pollutant load and daily reduction in
// parallel. The four series are independent until the merge, so failures
// surface through the errgroup and cancel the remaining loads.
func (p *Pipeline) loadAndAggregate(ctx context.Context, res *Result, logger *slog.Logger) error {
	loadStart := time.Now()
	g, _ := errgroup.WithContext(ctx)
	var mu sync.Mutex

	for _, pol := range domain.Pollutants {
		pol := pol
		g.Go(func() error {
			series, err := p.loader.Load(pol, p.cfg.Input.Path(pol))
			if err != nil {
				return err
			}

			records := aggregate.Daily(series, p.cfg.Study.MinValidHours)
			present := 0
			for _, r := range records {
				if !domain.IsMissing(r.Mean) {
					present++
				}
			}
			p.metrics.DaysAggregated.WithLabelValues(string(pol)).Add(float64(present))
			p.metrics.DaysBelowCoverage.WithLabelValues(string(pol)).Add(float64(len(records) - present))
			logger.Info("aggregated pollutant",
				"pollutant", pol,
				"days", len(records),
				"days_with_mean", present,
			)

			mu.Lock()
			res.Daily[pol] = records
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	p.metrics.StageDuration.WithLabelValues("load").Observe(time.Since(loadStart).Seconds())
	return nil
}

func (p *Pipeline) observeIndex(rows []domain.IndexRow) {
	for _, r := range rows {
		for _, pol := range domain.Pollutants {
			if domain.IsMissing(r.ZScores[pol]) {
				p.metrics.ZScoresMissing.Inc()
			} else {
				p.metrics.ZScoresComputed.Inc()
			}
		}
	}
}

func flaggedCount(set analyze.ExtremeSet) int {
	n := 0
	for _, f := range set.Flags {
		if f.IsExtreme {
			n++
		}
	}
	return n
}
