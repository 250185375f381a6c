// Command genmock writes synthetic Air Quality Ontario wide-format CSV files
// for the four pollutants, usable as pipeline input fixtures and demo data.
// Each file carries a realistic metadata preamble, a Date + H01..H24 header,
// and seasonally varying hourly values with configurable gaps and sentinel
// codes.
//
// Usage:
//
//	go run ./cmd/genmock -out-dir data_raw -start 2021-01-01 -end 2024-12-31
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
)

const dateLayout = "2006-01-02"

// profile shapes one pollutant's synthetic signal.
type profile struct {
	fileName string
	base     float64 // mean concentration level
	seasonal float64 // amplitude of the yearly cycle
	diurnal  float64 // amplitude of the daily cycle
	noise    float64 // stddev of the random component
}

var profiles = map[domain.Pollutant]profile{
	domain.SO2:  {fileName: "Sulphate_2021_2024.csv", base: 1.2, seasonal: 0.3, diurnal: 0.2, noise: 0.4},
	domain.NO2:  {fileName: "Nitrogen_2021_2024.csv", base: 12, seasonal: 4, diurnal: 5, noise: 2.5},
	domain.O3:   {fileName: "Ozone_2021-2024.csv", base: 28, seasonal: 10, diurnal: 8, noise: 4},
	domain.PM25: {fileName: "PM2.5_2021_2024.csv", base: 8, seasonal: 2, diurnal: 1.5, noise: 3},
}

func main() {
	outDir := flag.String("out-dir", "data_raw", "directory for the generated CSV files")
	startStr := flag.String("start", "2021-01-01", "first day (YYYY-MM-DD)")
	endStr := flag.String("end", "2024-12-31", "last day (YYYY-MM-DD)")
	seed := flag.Int64("seed", 1, "random seed for reproducible fixtures")
	missingRate := flag.Float64("missing-rate", 0.03, "probability an hour is a sentinel code")
	flag.Parse()

	start, err := time.Parse(dateLayout, *startStr)
	if err != nil {
		log.Fatalf("bad -start: %v", err)
	}
	end, err := time.Parse(dateLayout, *endStr)
	if err != nil {
		log.Fatalf("bad -end: %v", err)
	}
	if end.Before(start) {
		log.Fatalf("-end precedes -start")
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("create out dir: %v", err)
	}

	rng := rand.New(rand.NewSource(*seed))
	for _, p := range domain.Pollutants {
		prof := profiles[p]
		path := filepath.Join(*outDir, prof.fileName)
		days, err := writeFile(path, p, prof, start, end, rng, *missingRate)
		if err != nil {
			log.Fatalf("%s: %v", p, err)
		}
		log.Printf("%s: %d day rows -> %s", p, days, path)
	}
}

func writeFile(path string, p domain.Pollutant, prof profile, start, end time.Time, rng *rand.Rand, missingRate float64) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	// Metadata preamble mimicking a station export.
	preamble := [][]string{
		{"Air Quality Ontario - Hourly Concentrations"},
		{"Station Name", "Toronto North"},
		{"Station ID", "34021"},
		{"Pollutant", string(p)},
		{"Units", p.Unit()},
		{""},
	}
	for _, row := range preamble {
		if err := w.Write(row); err != nil {
			return 0, err
		}
	}

	header := []string{"Date"}
	for h := 1; h <= 24; h++ {
		header = append(header, fmt.Sprintf("H%02d", h))
	}
	if err := w.Write(header); err != nil {
		return 0, err
	}

	sentinelCodes := []string{"9999", "-999", "-9999"}
	days := 0
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		row := []string{day.Format(dateLayout)}
		yearFrac := float64(day.YearDay()) / 365
		for h := 0; h < 24; h++ {
			if rng.Float64() < missingRate {
				row = append(row, sentinelCodes[rng.Intn(len(sentinelCodes))])
				continue
			}
			v := prof.base +
				prof.seasonal*math.Sin(2*math.Pi*yearFrac) +
				prof.diurnal*math.Sin(2*math.Pi*float64(h)/24) +
				rng.NormFloat64()*prof.noise
			if v < 0 {
				v = 0
			}
			row = append(row, strconv.FormatFloat(v, 'f', 1, 64))
		}
		if err := w.Write(row); err != nil {
			return days, err
		}
		days++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return days, err
	}
	return days, f.Close()
}
