package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/couchcryptid/air-quality-etl/internal/observability"
)

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	return New(observability.NewLoggerTo(os.Stderr, "error", "text"), observability.NewMetricsForTesting())
}

// writeFixture writes a wide CSV with the given day rows under a realistic
// preamble. Each row value list must have 24 entries.
func writeFixture(t *testing.T, days map[string][]string) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("Air Quality Ontario - Hourly Concentrations\n")
	b.WriteString("Station Name,Toronto North\n")
	b.WriteString("Station ID,34021\n")
	b.WriteString("\n")
	b.WriteString("Date")
	for h := 1; h <= 24; h++ {
		fmt.Fprintf(&b, ",H%02d", h)
	}
	b.WriteString("\n")

	dates := make([]string, 0, len(days))
	for d := range days {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	for _, d := range dates {
		b.WriteString(d + "," + strings.Join(days[d], ",") + "\n")
	}

	path := filepath.Join(t.TempDir(), "fixture.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func hours(value string) []string {
	out := make([]string, 24)
	for i := range out {
		out[i] = value
	}
	return out
}

func TestLoad_CleanFile(t *testing.T) {
	path := writeFixture(t, map[string][]string{
		"2021-01-01": hours("10.0"),
		"2021-01-02": hours("12.0"),
	})

	series, err := newTestLoader(t).Load(domain.NO2, path)
	require.NoError(t, err)

	assert.Equal(t, domain.NO2, series.Pollutant)
	require.Len(t, series.Readings, 48)

	// Readings are time-ordered, H01 maps to midnight.
	assert.Equal(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), series.Readings[0].Time)
	assert.Equal(t, time.Date(2021, 1, 1, 23, 0, 0, 0, time.UTC), series.Readings[23].Time)
	assert.Equal(t, time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC), series.Readings[24].Time)
	for _, r := range series.Readings[:24] {
		assert.Equal(t, 10.0, r.Value)
	}
}

func TestLoad_SentinelsBecomeMissingButStayPresent(t *testing.T) {
	row := hours("8.0")
	row[3] = "9999"
	row[4] = "-999"
	row[5] = "-9999"
	path := writeFixture(t, map[string][]string{"2021-01-01": row})

	series, err := newTestLoader(t).Load(domain.SO2, path)
	require.NoError(t, err)

	// Missing hours are never dropped; coverage counts depend on them.
	require.Len(t, series.Readings, 24)
	assert.True(t, domain.IsMissing(series.Readings[3].Value))
	assert.True(t, domain.IsMissing(series.Readings[4].Value))
	assert.True(t, domain.IsMissing(series.Readings[5].Value))
	assert.Equal(t, 8.0, series.Readings[6].Value)
}

func TestLoad_MalformedCellBecomesMissing(t *testing.T) {
	row := hours("5.0")
	row[10] = "no data"
	path := writeFixture(t, map[string][]string{"2021-01-01": row})

	series, err := newTestLoader(t).Load(domain.O3, path)
	require.NoError(t, err)
	require.Len(t, series.Readings, 24)
	assert.True(t, domain.IsMissing(series.Readings[10].Value))
	assert.Equal(t, 5.0, series.Readings[11].Value)
}

func TestLoad_AllMissingDayDropped(t *testing.T) {
	path := writeFixture(t, map[string][]string{
		"2021-01-01": hours("9999"),
		"2021-01-02": hours("6.0"),
	})

	series, err := newTestLoader(t).Load(domain.PM25, path)
	require.NoError(t, err)
	require.Len(t, series.Readings, 24)
	assert.Equal(t, time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC), series.Readings[0].Time)
}

func TestLoad_DuplicateDayKeepsFirst(t *testing.T) {
	var b strings.Builder
	b.WriteString("Date")
	for h := 1; h <= 24; h++ {
		fmt.Fprintf(&b, ",H%02d", h)
	}
	b.WriteString("\n")
	b.WriteString("2021-01-01," + strings.Join(hours("1.0"), ",") + "\n")
	b.WriteString("2021-01-01," + strings.Join(hours("2.0"), ",") + "\n")

	path := filepath.Join(t.TempDir(), "dup.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))

	series, err := newTestLoader(t).Load(domain.NO2, path)
	require.NoError(t, err)
	require.Len(t, series.Readings, 24)
	assert.Equal(t, 1.0, series.Readings[0].Value)
}

func TestLoad_HeaderDetection(t *testing.T) {
	t.Run("station id fallback", func(t *testing.T) {
		var b strings.Builder
		b.WriteString("Some preamble\n")
		b.WriteString("Station ID,34021\n")
		// Header without an H01-prefixed cell match? It still has one, but
		// with an unusual Date label exercising the prefix match.
		b.WriteString("Date (LST)")
		for h := 1; h <= 24; h++ {
			fmt.Fprintf(&b, ",H%02d", h)
		}
		b.WriteString("\n")
		b.WriteString("2021-01-01," + strings.Join(hours("3.0"), ",") + "\n")

		path := filepath.Join(t.TempDir(), "alt.csv")
		require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))

		series, err := newTestLoader(t).Load(domain.SO2, path)
		require.NoError(t, err)
		assert.Len(t, series.Readings, 24)
	})

	t.Run("no header is fatal", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.csv")
		require.NoError(t, os.WriteFile(path, []byte("just,some,cells\nwithout,a,header\n"), 0o644))

		_, err := newTestLoader(t).Load(domain.O3, path)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoHeader)
		assert.Contains(t, err.Error(), "O3")
	})
}

func TestLoad_MissingFileNamesPollutant(t *testing.T) {
	_, err := newTestLoader(t).Load(domain.PM25, "/nonexistent/pm25.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PM25")
	assert.Contains(t, err.Error(), "/nonexistent/pm25.csv")
}

func TestLoad_NoValidDaysIsFatal(t *testing.T) {
	path := writeFixture(t, map[string][]string{"2021-01-01": hours("-9999")})

	_, err := newTestLoader(t).Load(domain.NO2, path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoValidDays)
	assert.Contains(t, err.Error(), "NO2")
}

func TestDetectHeaderRow_ScanLimit(t *testing.T) {
	rows := make([][]string, 0, headerScanRows+2)
	for i := 0; i < headerScanRows; i++ {
		rows = append(rows, []string{"metadata"})
	}
	rows = append(rows, []string{"Date", "H01"})

	_, err := detectHeaderRow(rows)
	assert.ErrorIs(t, err, ErrNoHeader)
}
