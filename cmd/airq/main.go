// Command airq runs the air-quality batch pipeline: load the four raw
// pollutant exports, reduce them to daily means, merge them over the study
// range, compute the Daily Pollution Burden Index, flag extremes, and
// persist the processed tables.
//
// Usage:
//
//	airq -config config.yaml
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/air-quality-etl/internal/config"
	"github.com/couchcryptid/air-quality-etl/internal/loader"
	"github.com/couchcryptid/air-quality-etl/internal/observability"
	"github.com/couchcryptid/air-quality-etl/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	metrics := observability.NewMetrics()

	csvOut, err := pipeline.NewCSVPersister(cfg.Output.Dir)
	if err != nil {
		logger.Error("failed to prepare csv output", "error", err)
		os.Exit(1)
	}

	sqliteOut, err := pipeline.NewSQLitePersister(cfg)
	if err != nil {
		logger.Error("failed to open sqlite output", "error", err)
		os.Exit(1)
	}
	defer sqliteOut.Close()

	p := pipeline.New(
		loader.New(logger, metrics),
		[]pipeline.Persister{csvOut, sqliteOut},
		cfg,
		logger,
		metrics,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := p.Run(ctx)
	if err != nil {
		logger.Error("pipeline failed", "error", err)
		os.Exit(1)
	}

	logger.Info("run complete",
		"run_id", res.RunID,
		"days", len(res.Dataset.Rows),
		"thresholds", len(res.Extremes),
	)
}

// loadConfig reads the file when it exists, otherwise falls back to the
// built-in defaults so the tool runs against the conventional data layout
// without a config file.
func loadConfig(path string) (*config.Config, error) {
	var cfg *config.Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg = config.Default()
	} else {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
