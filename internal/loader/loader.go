// Package loader reads Air Quality Ontario wide-format CSV exports and
// normalizes them into cleaned hourly series.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/couchcryptid/air-quality-etl/internal/observability"
)

// headerScanRows bounds the metadata preamble scan when locating the header row.
const headerScanRows = 40

var (
	// ErrNoHeader means no row looked like the expected Date + H01..H24 header.
	ErrNoHeader = errors.New("no header row found")
	// ErrNoValidDays means the file parsed but produced zero usable day rows.
	ErrNoValidDays = errors.New("no valid days in file")
)

// dateLayouts are tried in order when parsing the Date column. Station
// exports are inconsistent about zero padding and separators.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
}

// Loader reads one pollutant's raw CSV into a domain.HourlySeries.
type Loader struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Loader with the given observability.
func New(logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{logger: logger, metrics: metrics}
}

// Load reads and cleans the file at path for the given pollutant.
//
// Row-level problems (malformed cells, unparseable dates, duplicate day rows)
// are tolerated: the offending value becomes missing or the row is skipped,
// and the load continues. File-level problems (absent file, no detectable
// header, zero valid days) are fatal and the returned error names both the
// pollutant and the path.
func (l *Loader) Load(pollutant domain.Pollutant, path string) (domain.HourlySeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.HourlySeries{}, fmt.Errorf("load %s from %s: %w", pollutant, path, err)
	}
	defer f.Close()

	rows, err := readAllRows(f)
	if err != nil {
		return domain.HourlySeries{}, fmt.Errorf("load %s from %s: %w", pollutant, path, err)
	}

	headerIdx, err := detectHeaderRow(rows)
	if err != nil {
		return domain.HourlySeries{}, fmt.Errorf("load %s from %s: %w", pollutant, path, err)
	}
	dateCol, hourCols, err := resolveColumns(rows[headerIdx])
	if err != nil {
		return domain.HourlySeries{}, fmt.Errorf("load %s from %s: %w", pollutant, path, err)
	}

	series := domain.HourlySeries{Pollutant: pollutant}
	seen := make(map[time.Time]bool)
	skipped := 0

	for _, row := range rows[headerIdx+1:] {
		if dateCol >= len(row) {
			skipped++
			continue
		}
		day, ok := parseDate(row[dateCol])
		if !ok {
			skipped++
			continue
		}
		if seen[day] {
			// Duplicate day rows keep the first occurrence, matching the
			// dedup pass of the station export tooling.
			skipped++
			continue
		}

		readings := make([]domain.HourlyReading, 0, len(hourCols))
		valid := 0
		for hour, col := range hourCols {
			v := domain.Missing()
			if col < len(row) {
				v = domain.ParseConcentration(row[col])
				if domain.IsMissing(v) && isSentinelCell(row[col]) {
					l.metrics.SentinelsReplaced.WithLabelValues(string(pollutant)).Inc()
				}
			}
			if !domain.IsMissing(v) {
				valid++
			}
			readings = append(readings, domain.HourlyReading{
				Time:  day.Add(time.Duration(hour) * time.Hour),
				Value: v,
			})
		}

		// Day rows with every hour missing carry no information and are
		// dropped outright; partially missing days are kept intact.
		if valid == 0 {
			skipped++
			continue
		}

		seen[day] = true
		series.Readings = append(series.Readings, readings...)
		l.metrics.RowsParsed.WithLabelValues(string(pollutant)).Inc()
	}

	if len(series.Readings) == 0 {
		return domain.HourlySeries{}, fmt.Errorf("load %s from %s: %w", pollutant, path, ErrNoValidDays)
	}

	sort.Slice(series.Readings, func(i, j int) bool {
		return series.Readings[i].Time.Before(series.Readings[j].Time)
	})

	if skipped > 0 {
		l.metrics.RowsSkipped.WithLabelValues(string(pollutant)).Add(float64(skipped))
	}
	l.logger.Info("loaded pollutant file",
		"pollutant", pollutant,
		"path", path,
		"hours", len(series.Readings),
		"rows_skipped", skipped,
	)
	return series, nil
}

// readAllRows parses the whole file with a lenient CSV reader; preamble rows
// have arbitrary field counts.
func readAllRows(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("empty file")
	}
	return rows, nil
}

// detectHeaderRow scans the top of the file for the header: a row with a cell
// starting with "date" alongside a cell starting with "h01". Falls back to the
// row after a "station id" cell when the primary heuristic finds nothing.
func detectHeaderRow(rows [][]string) (int, error) {
	limit := len(rows)
	if limit > headerScanRows {
		limit = headerScanRows
	}

	for i := 0; i < limit; i++ {
		hasDate, hasH01 := false, false
		for _, cell := range rows[i] {
			c := strings.ToLower(strings.TrimSpace(cell))
			if strings.HasPrefix(c, "date") {
				hasDate = true
			}
			if strings.HasPrefix(c, "h01") {
				hasH01 = true
			}
		}
		if hasDate && hasH01 {
			return i, nil
		}
	}

	for i := 0; i < limit; i++ {
		for _, cell := range rows[i] {
			if strings.EqualFold(strings.TrimSpace(cell), "station id") && i+1 < len(rows) {
				return i + 1, nil
			}
		}
	}

	return 0, ErrNoHeader
}

// resolveColumns maps the header row to the date column index and the ordered
// hour column indexes. Hour columns are any headers of the form H<digits>;
// hour H(k) corresponds to clock hour k-1.
func resolveColumns(header []string) (dateCol int, hourCols map[int]int, err error) {
	dateCol = -1
	hourCols = make(map[int]int)

	for i, cell := range header {
		c := strings.ToLower(strings.TrimSpace(cell))
		if dateCol < 0 && strings.HasPrefix(c, "date") {
			dateCol = i
			continue
		}
		if strings.HasPrefix(c, "h") {
			var n int
			if _, serr := fmt.Sscanf(c, "h%d", &n); serr == nil && n >= 1 && n <= 24 {
				hourCols[n-1] = i
			}
		}
	}

	if dateCol < 0 {
		return 0, nil, errors.New("header has no Date column")
	}
	if len(hourCols) == 0 {
		return 0, nil, errors.New("header has no hour columns (expected H01..H24)")
	}
	return dateCol, hourCols, nil
}

func isSentinelCell(cell string) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	return err == nil && domain.IsSentinel(v)
}

func parseDate(cell string) (time.Time, bool) {
	cell = strings.TrimSpace(cell)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return domain.Date(t), true
		}
	}
	return time.Time{}, false
}
