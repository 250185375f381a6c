// Command validate performs integrity checks on the raw pollutant exports
// before a pipeline run: header detectability, row parse rate, and study
// range coverage. It reports one pass/fail phase per pollutant and exits
// non-zero if any phase fails.
//
// Usage:
//
//	go run ./cmd/validate -config config.yaml
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/air-quality-etl/internal/aggregate"
	"github.com/couchcryptid/air-quality-etl/internal/config"
	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/couchcryptid/air-quality-etl/internal/loader"
	"github.com/couchcryptid/air-quality-etl/internal/observability"
)

// phase tracks pass/fail for one validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := resolveConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	os.Exit(run(cfg))
}

func resolveConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := config.Default()
		return cfg, cfg.Validate()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func run(cfg *config.Config) int {
	logger := observability.NewLogger("error", "text")
	metrics := observability.NewMetricsForTesting()
	l := loader.New(logger, metrics)

	start, end, err := cfg.StudyRange()
	if err != nil {
		fmt.Fprintf(os.Stderr, "study range: %v\n", err)
		return 1
	}
	rangeDays := int(end.Sub(start).Hours()/24) + 1

	failed := 0
	for _, pol := range domain.Pollutants {
		ph := &phase{name: string(pol)}
		checkPollutant(ph, l, cfg, pol, rangeDays)
		report(ph)
		if !ph.passed() {
			failed++
		}
	}

	if failed > 0 {
		fmt.Printf("\nFAIL: %d of %d pollutant files have problems\n", failed, len(domain.Pollutants))
		return 1
	}
	fmt.Println("\nOK: all pollutant files validated")
	return 0
}

func checkPollutant(ph *phase, l *loader.Loader, cfg *config.Config, pol domain.Pollutant, rangeDays int) {
	path := cfg.Input.Path(pol)

	series, err := l.Load(pol, path)
	if err != nil {
		ph.errorf("load failed: %v", err)
		return
	}

	days := aggregate.Daily(series, cfg.Study.MinValidHours)
	withMean := 0
	for _, d := range days {
		if !domain.IsMissing(d.Mean) {
			withMean++
		}
	}

	if len(days) == 0 {
		ph.errorf("no day rows parsed from %s", path)
		return
	}
	coverage := float64(len(days)) / float64(rangeDays)
	if coverage < 0.5 {
		ph.errorf("only %d of %d study days present (%.0f%%)", len(days), rangeDays, coverage*100)
	}
	if withMean == 0 {
		ph.errorf("no day meets the %d-hour coverage rule", cfg.Study.MinValidHours)
	}

	fmt.Printf("  %s: %d hours, %d days, %d days with mean\n",
		pol, len(series.Readings), len(days), withMean)
}

func report(ph *phase) {
	if ph.passed() {
		fmt.Printf("PASS %s\n", ph.name)
		return
	}
	fmt.Printf("FAIL %s\n", ph.name)
	for _, e := range ph.errors {
		fmt.Printf("  - %s\n", e)
	}
}
