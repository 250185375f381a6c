package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/couchcryptid/air-quality-etl/internal/analyze"
	"github.com/couchcryptid/air-quality-etl/internal/domain"
)

// Store persists the merged daily dataset, the index, and extreme flags in a
// SQLite database so downstream consumers can query the processed data
// without reparsing CSVs.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TIMESTAMP NOT NULL,
	study_start TEXT NOT NULL,
	study_end TEXT NOT NULL,
	window_days INTEGER NOT NULL,
	min_valid_hours INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS daily (
	run_id TEXT NOT NULL REFERENCES runs(id),
	date TEXT NOT NULL,
	so2 REAL,
	no2 REAL,
	o3 REAL,
	pm25 REAL,
	dpbi REAL,
	PRIMARY KEY (run_id, date)
);

CREATE TABLE IF NOT EXISTS extremes (
	run_id TEXT NOT NULL REFERENCES runs(id),
	date TEXT NOT NULL,
	percentile REAL NOT NULL,
	threshold REAL NOT NULL,
	is_extreme INTEGER NOT NULL,
	PRIMARY KEY (run_id, date, percentile)
);
`

// Open opens (creating if necessary) the SQLite database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// RunMeta identifies one pipeline execution.
type RunMeta struct {
	ID            string
	StartedAt     time.Time
	StudyStart    time.Time
	StudyEnd      time.Time
	WindowDays    int
	MinValidHours int
}

// SaveRun records the run metadata row.
func (s *Store) SaveRun(meta RunMeta) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (id, started_at, study_start, study_end, window_days, min_valid_hours)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		meta.ID,
		meta.StartedAt.UTC(),
		meta.StudyStart.Format(dateLayout),
		meta.StudyEnd.Format(dateLayout),
		meta.WindowDays,
		meta.MinValidHours,
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", meta.ID, err)
	}
	return nil
}

// SaveDataset writes the merged daily table with the DPBI column in a single
// transaction. Missing values are stored as NULL, never zero.
func (s *Store) SaveDataset(runID string, ds domain.Dataset, indexRows []domain.IndexRow) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO daily (run_id, date, so2, no2, o3, pm25, dpbi) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare daily insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range ds.Rows {
		dpbi := domain.Missing()
		if i < len(indexRows) {
			dpbi = indexRows[i].DPBI
		}
		_, err := stmt.Exec(
			runID,
			row.Date.Format(dateLayout),
			nullable(row.Value(domain.SO2)),
			nullable(row.Value(domain.NO2)),
			nullable(row.Value(domain.O3)),
			nullable(row.Value(domain.PM25)),
			nullable(dpbi),
		)
		if err != nil {
			return fmt.Errorf("insert daily %s: %w", row.Date.Format(dateLayout), err)
		}
	}
	return tx.Commit()
}

// SaveExtremes writes one threshold's flags.
func (s *Store) SaveExtremes(runID string, set analyze.ExtremeSet) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO extremes (run_id, date, percentile, threshold, is_extreme) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare extremes insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range set.Flags {
		_, err := stmt.Exec(runID, f.Date.Format(dateLayout), f.Percentile, f.Threshold, f.IsExtreme)
		if err != nil {
			return fmt.Errorf("insert extreme %s: %w", f.Date.Format(dateLayout), err)
		}
	}
	return tx.Commit()
}

// CountExtremes returns the number of flagged days stored for a run at the
// given percentile.
func (s *Store) CountExtremes(runID string, percentile float64) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM extremes WHERE run_id = ? AND percentile = ? AND is_extreme = 1`,
		runID, percentile,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count extremes: %w", err)
	}
	return n, nil
}

// DailyRow is one persisted day as read back from the store.
type DailyRow struct {
	Date   string
	Values map[domain.Pollutant]float64
	DPBI   float64
}

// LoadDataset reads a run's merged table back in date order.
func (s *Store) LoadDataset(runID string) ([]DailyRow, error) {
	rows, err := s.db.Query(
		`SELECT date, so2, no2, o3, pm25, dpbi FROM daily WHERE run_id = ? ORDER BY date`, runID)
	if err != nil {
		return nil, fmt.Errorf("query daily: %w", err)
	}
	defer rows.Close()

	var out []DailyRow
	for rows.Next() {
		var (
			date                     string
			so2, no2, o3, pm25, dpbi sql.NullFloat64
		)
		if err := rows.Scan(&date, &so2, &no2, &o3, &pm25, &dpbi); err != nil {
			return nil, fmt.Errorf("scan daily: %w", err)
		}
		out = append(out, DailyRow{
			Date: date,
			Values: map[domain.Pollutant]float64{
				domain.SO2:  fromNull(so2),
				domain.NO2:  fromNull(no2),
				domain.O3:   fromNull(o3),
				domain.PM25: fromNull(pm25),
			},
			DPBI: fromNull(dpbi),
		})
	}
	return out, rows.Err()
}

func nullable(v float64) any {
	if domain.IsMissing(v) {
		return nil
	}
	return v
}

func fromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return domain.Missing()
	}
	return v.Float64
}
