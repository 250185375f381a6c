package pipeline

import (
	"fmt"

	"github.com/couchcryptid/air-quality-etl/internal/config"
	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/couchcryptid/air-quality-etl/internal/storage"
)

// CSVPersister writes the full set of processed CSV tables.
type CSVPersister struct {
	writer *storage.CSVWriter
}

// NewCSVPersister targets the given output directory.
func NewCSVPersister(dir string) (*CSVPersister, error) {
	w, err := storage.NewCSVWriter(dir)
	if err != nil {
		return nil, err
	}
	return &CSVPersister{writer: w}, nil
}

// Persist implements Persister.
func (p *CSVPersister) Persist(res *Result) error {
	for _, pol := range domain.Pollutants {
		if err := p.writer.WriteDaily(pol, res.Daily[pol]); err != nil {
			return err
		}
	}
	if err := p.writer.WriteMerged(res.Dataset); err != nil {
		return err
	}
	if err := p.writer.WriteIndex(res.Index); err != nil {
		return err
	}
	for _, set := range res.Extremes {
		if err := p.writer.WriteExtremes(set, res.Index); err != nil {
			return err
		}
	}
	if err := p.writer.WriteTrendSummary(res.Trends); err != nil {
		return err
	}
	if res.Decomposition != nil {
		if err := p.writer.WriteDecomposition(*res.Decomposition); err != nil {
			return err
		}
	}
	return nil
}

// SQLitePersister mirrors the merged table, index, and extreme flags into
// the SQLite store.
type SQLitePersister struct {
	store *storage.Store
	cfg   *config.Config
}

// NewSQLitePersister opens (or creates) the database at the configured path.
func NewSQLitePersister(cfg *config.Config) (*SQLitePersister, error) {
	store, err := storage.Open(cfg.Output.SQLitePath)
	if err != nil {
		return nil, err
	}
	return &SQLitePersister{store: store, cfg: cfg}, nil
}

// Persist implements Persister.
func (p *SQLitePersister) Persist(res *Result) error {
	start, end, err := p.cfg.StudyRange()
	if err != nil {
		return err
	}

	meta := storage.RunMeta{
		ID:            res.RunID,
		StartedAt:     res.StartedAt,
		StudyStart:    start,
		StudyEnd:      end,
		WindowDays:    p.cfg.Index.WindowDays,
		MinValidHours: p.cfg.Study.MinValidHours,
	}
	if err := p.store.SaveRun(meta); err != nil {
		return err
	}
	if err := p.store.SaveDataset(res.RunID, res.Dataset, res.Index); err != nil {
		return err
	}
	for _, set := range res.Extremes {
		if err := p.store.SaveExtremes(res.RunID, set); err != nil {
			return fmt.Errorf("extremes at percentile %g: %w", set.Percentile, err)
		}
	}
	return nil
}

// Close releases the underlying store.
func (p *SQLitePersister) Close() error {
	return p.store.Close()
}
