// Package config loads and validates the pipeline configuration from a YAML
// file with AIRQ_-prefixed environment overrides.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
)

const dateLayout = "2006-01-02"

// Config holds the complete pipeline configuration.
type Config struct {
	Input    InputConfig    `mapstructure:"input"`
	Study    StudyConfig    `mapstructure:"study"`
	Index    IndexConfig    `mapstructure:"index"`
	Extremes ExtremesConfig `mapstructure:"extremes"`
	Output   OutputConfig   `mapstructure:"output"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// InputConfig maps each pollutant to its raw CSV export.
type InputConfig struct {
	SO2  string `mapstructure:"so2"`
	NO2  string `mapstructure:"no2"`
	O3   string `mapstructure:"o3"`
	PM25 string `mapstructure:"pm25"`
}

// Path returns the configured file for a pollutant.
func (c InputConfig) Path(p domain.Pollutant) string {
	switch p {
	case domain.SO2:
		return c.SO2
	case domain.NO2:
		return c.NO2
	case domain.O3:
		return c.O3
	case domain.PM25:
		return c.PM25
	}
	return ""
}

// StudyConfig bounds the study range and the daily coverage rule.
type StudyConfig struct {
	Start         string `mapstructure:"start"`
	End           string `mapstructure:"end"`
	MinValidHours int    `mapstructure:"min_valid_hours"`
}

// IndexConfig controls the rolling z-score normalization.
type IndexConfig struct {
	WindowDays      int `mapstructure:"window_days"`
	MinObservations int `mapstructure:"min_observations"`
	SeasonalPeriod  int `mapstructure:"seasonal_period"`
}

// ExtremesConfig lists the percentile thresholds to flag. The first entry is
// the primary threshold; the rest are sensitivity variants.
type ExtremesConfig struct {
	Percentiles []float64 `mapstructure:"percentiles"`
}

// OutputConfig selects where processed tables land.
type OutputConfig struct {
	Dir        string `mapstructure:"dir"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from the file at path, applying defaults and
// AIRQ_ environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	v.SetEnvPrefix("AIRQ")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration without reading any file.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("unmarshal default config: %v", err))
	}
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("input.so2", "data_raw/Sulphate_2021_2024.csv")
	v.SetDefault("input.no2", "data_raw/Nitrogen_2021_2024.csv")
	v.SetDefault("input.o3", "data_raw/Ozone_2021-2024.csv")
	v.SetDefault("input.pm25", "data_raw/PM2.5_2021_2024.csv")

	v.SetDefault("study.start", "2021-01-01")
	v.SetDefault("study.end", "2024-12-31")
	v.SetDefault("study.min_valid_hours", 18)

	v.SetDefault("index.window_days", 90)
	v.SetDefault("index.min_observations", 45)
	v.SetDefault("index.seasonal_period", 365)

	v.SetDefault("extremes.percentiles", []float64{95, 90, 97.5})

	v.SetDefault("output.dir", "data_processed")
	v.SetDefault("output.sqlite_path", "data_processed/airquality.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// StudyRange parses the configured study bounds.
func (c *Config) StudyRange() (start, end time.Time, err error) {
	start, err = time.Parse(dateLayout, c.Study.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("study.start: %w", err)
	}
	end, err = time.Parse(dateLayout, c.Study.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("study.end: %w", err)
	}
	return start, end, nil
}

// Validate checks that all configuration values are usable.
func (c *Config) Validate() error {
	for _, p := range domain.Pollutants {
		if c.Input.Path(p) == "" {
			return fmt.Errorf("input path for %s is required", p)
		}
	}

	start, end, err := c.StudyRange()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("study.end %s precedes study.start %s", c.Study.End, c.Study.Start)
	}

	if c.Study.MinValidHours < 1 || c.Study.MinValidHours > 24 {
		return fmt.Errorf("study.min_valid_hours must be in [1, 24], got %d", c.Study.MinValidHours)
	}
	if c.Index.WindowDays < 2 {
		return fmt.Errorf("index.window_days must be at least 2, got %d", c.Index.WindowDays)
	}
	if c.Index.MinObservations < 2 || c.Index.MinObservations > c.Index.WindowDays {
		return fmt.Errorf("index.min_observations must be in [2, window_days], got %d", c.Index.MinObservations)
	}
	if c.Index.SeasonalPeriod < 2 {
		return fmt.Errorf("index.seasonal_period must be at least 2, got %d", c.Index.SeasonalPeriod)
	}

	if len(c.Extremes.Percentiles) == 0 {
		return fmt.Errorf("extremes.percentiles must contain at least one threshold")
	}
	for _, p := range c.Extremes.Percentiles {
		if p <= 0 || p >= 100 {
			return fmt.Errorf("extremes.percentiles entries must be in (0, 100), got %g", p)
		}
	}

	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
