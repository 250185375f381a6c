// Package storage persists pipeline outputs: the processed CSV tables and a
// SQLite copy of the merged daily dataset.
package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/air-quality-etl/internal/analyze"
	"github.com/couchcryptid/air-quality-etl/internal/domain"
)

const dateLayout = "2006-01-02"

// CSVWriter writes the processed tables into a single output directory,
// using the same file names as the downstream report tooling expects.
type CSVWriter struct {
	dir string
}

// NewCSVWriter creates the output directory if needed.
func NewCSVWriter(dir string) (*CSVWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &CSVWriter{dir: dir}, nil
}

// WriteDaily persists one pollutant's daily records as
// <pollutant>_daily_mean.csv.
func (w *CSVWriter) WriteDaily(p domain.Pollutant, records []domain.DailyRecord) error {
	rows := [][]string{{"date", "mean", "valid_hours"}}
	for _, r := range records {
		rows = append(rows, []string{
			r.Date.Format(dateLayout),
			formatValue(r.Mean),
			strconv.Itoa(r.ValidHours),
		})
	}
	return w.writeFile(fmt.Sprintf("%s_daily_mean.csv", p), rows)
}

// WriteMerged persists the joined daily table as merged_daily_mean.csv.
func (w *CSVWriter) WriteMerged(ds domain.Dataset) error {
	header := []string{"date"}
	for _, p := range domain.Pollutants {
		header = append(header, string(p))
	}
	rows := [][]string{header}
	for _, row := range ds.Rows {
		rec := []string{row.Date.Format(dateLayout)}
		for _, p := range domain.Pollutants {
			rec = append(rec, formatValue(row.Value(p)))
		}
		rows = append(rows, rec)
	}
	return w.writeFile("merged_daily_mean.csv", rows)
}

// WriteIndex persists the per-pollutant z-scores and the DPBI series as
// zscores_90d.csv and dpbi.csv.
func (w *CSVWriter) WriteIndex(indexRows []domain.IndexRow) error {
	zHeader := []string{"date"}
	for _, p := range domain.Pollutants {
		zHeader = append(zHeader, string(p)+"_z")
	}
	zRows := [][]string{zHeader}
	dpbiRows := [][]string{{"date", "DPBI"}}

	for _, r := range indexRows {
		zRec := []string{r.Date.Format(dateLayout)}
		for _, p := range domain.Pollutants {
			zRec = append(zRec, formatValue(r.ZScores[p]))
		}
		zRows = append(zRows, zRec)
		dpbiRows = append(dpbiRows, []string{r.Date.Format(dateLayout), formatValue(r.DPBI)})
	}

	if err := w.writeFile("zscores_90d.csv", zRows); err != nil {
		return err
	}
	return w.writeFile("dpbi.csv", dpbiRows)
}

// WriteExtremes persists one threshold's flags and yearly counts as
// dpbi_extremes_<tag>.csv and dpbi_extremes_<tag>_yearly_counts.csv.
func (w *CSVWriter) WriteExtremes(set analyze.ExtremeSet, indexRows []domain.IndexRow) error {
	tag := analyze.ThresholdTag(set.Percentile)

	rows := [][]string{{"date", "value", "is_high_extreme", "threshold"}}
	for i, f := range set.Flags {
		rows = append(rows, []string{
			f.Date.Format(dateLayout),
			formatValue(indexRows[i].DPBI),
			strconv.FormatBool(f.IsExtreme),
			formatValue(f.Threshold),
		})
	}
	if err := w.writeFile(fmt.Sprintf("dpbi_extremes_%s.csv", tag), rows); err != nil {
		return err
	}

	counts := analyze.YearlyCounts(set)
	countRows := [][]string{{"year", "count_high"}}
	for _, year := range analyze.Years(counts) {
		countRows = append(countRows, []string{strconv.Itoa(year), strconv.Itoa(counts[year])})
	}
	return w.writeFile(fmt.Sprintf("dpbi_extremes_%s_yearly_counts.csv", tag), countRows)
}

// WriteTrendSummary persists the trend table as trend_summary.csv.
func (w *CSVWriter) WriteTrendSummary(trends []analyze.TrendRow) error {
	rows := [][]string{{"series", "slope_per_day", "slope_p", "kendall_tau", "kendall_p", "n"}}
	for _, t := range trends {
		rows = append(rows, []string{
			t.Series,
			formatValue(t.SlopeDay),
			formatValue(t.SlopeP),
			formatValue(t.Tau),
			formatValue(t.TauP),
			strconv.Itoa(t.N),
		})
	}
	return w.writeFile("trend_summary.csv", rows)
}

// WriteDecomposition persists the seasonal decomposition as
// dpbi_decomposition.csv.
func (w *CSVWriter) WriteDecomposition(d analyze.Decomposition) error {
	rows := [][]string{{"date", "value", "trend", "seasonal", "resid"}}
	for i, date := range d.Dates {
		rows = append(rows, []string{
			date.Format(dateLayout),
			formatValue(d.Value[i]),
			formatValue(d.Trend[i]),
			formatValue(d.Seasonal[i]),
			formatValue(d.Residual[i]),
		})
	}
	return w.writeFile("dpbi_decomposition.csv", rows)
}

func (w *CSVWriter) writeFile(name string, rows [][]string) error {
	path := filepath.Join(w.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

// formatValue renders a float for CSV output; missing markers become empty
// cells so they survive a round trip without turning into zeros.
func formatValue(v float64) string {
	if domain.IsMissing(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
