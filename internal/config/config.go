// Package config loads tool configuration from environment variables and an
// optional YAML file. Environment values take precedence over file values,
// and built-in defaults fill whatever both leave unset.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete tool configuration.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Anomaly    AnomalyConfig    `yaml:"anomaly" envconfig:"ANOMALY"`
	Enrichment EnrichmentConfig `yaml:"enrichment" envconfig:"ENRICHMENT"`
	Reference  ReferenceConfig  `yaml:"reference" envconfig:"REFERENCE"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// AnomalyConfig contains detection thresholds. The values apply to the whole
// run, regardless of rubric.
type AnomalyConfig struct {
	OutlierMultiplier float64 `yaml:"outlier_multiplier" envconfig:"OUTLIER_MULTIPLIER"`
	OutlierMinSamples int     `yaml:"outlier_min_samples" envconfig:"OUTLIER_MIN_SAMPLES"`
	InflationMultiple float64 `yaml:"inflation_multiple" envconfig:"INFLATION_MULTIPLE"`
}

// EnrichmentConfig controls the CUIT registry lookup.
type EnrichmentConfig struct {
	Enabled   bool          `yaml:"enabled" envconfig:"ENABLED"`
	BaseURL   string        `yaml:"base_url" envconfig:"BASE_URL"`
	RateLimit float64       `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
	Burst     int           `yaml:"burst" envconfig:"BURST"`
	Timeout   time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	CacheTTL  time.Duration `yaml:"cache_ttl" envconfig:"CACHE_TTL"`
}

// ReferenceConfig holds default paths for the reference series files.
type ReferenceConfig struct {
	FXSeries         string `yaml:"fx_series" envconfig:"FX_SERIES"`
	MonthlyInflation string `yaml:"monthly_inflation" envconfig:"MONTHLY_INFLATION"`
	AnnualInflation  string `yaml:"annual_inflation" envconfig:"ANNUAL_INFLATION"`
}

// Load builds the configuration from environment variables with the EXP
// prefix, merged over the YAML file at path when one is given and exists.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("EXP", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			fileCfg, err := loadFromFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
			cfg = mergeConfigs(*fileCfg, cfg)
		}
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeConfigs merges file config into env config where env left a field
// unset, so environment variables take precedence over the file.
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Logging.Level == "" {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if envConfig.Logging.Format == "" {
		envConfig.Logging.Format = fileConfig.Logging.Format
	}
	if envConfig.Logging.Output == "" {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}
	if envConfig.Logging.FilePath == "" {
		envConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}
	if envConfig.Anomaly.OutlierMultiplier == 0 {
		envConfig.Anomaly.OutlierMultiplier = fileConfig.Anomaly.OutlierMultiplier
	}
	if envConfig.Anomaly.OutlierMinSamples == 0 {
		envConfig.Anomaly.OutlierMinSamples = fileConfig.Anomaly.OutlierMinSamples
	}
	if envConfig.Anomaly.InflationMultiple == 0 {
		envConfig.Anomaly.InflationMultiple = fileConfig.Anomaly.InflationMultiple
	}
	if fileConfig.Enrichment.Enabled {
		envConfig.Enrichment.Enabled = true
	}
	if envConfig.Enrichment.BaseURL == "" {
		envConfig.Enrichment.BaseURL = fileConfig.Enrichment.BaseURL
	}
	if envConfig.Enrichment.RateLimit == 0 {
		envConfig.Enrichment.RateLimit = fileConfig.Enrichment.RateLimit
	}
	if envConfig.Enrichment.Burst == 0 {
		envConfig.Enrichment.Burst = fileConfig.Enrichment.Burst
	}
	if envConfig.Enrichment.Timeout == 0 {
		envConfig.Enrichment.Timeout = fileConfig.Enrichment.Timeout
	}
	if envConfig.Enrichment.CacheTTL == 0 {
		envConfig.Enrichment.CacheTTL = fileConfig.Enrichment.CacheTTL
	}
	if envConfig.Reference.FXSeries == "" {
		envConfig.Reference.FXSeries = fileConfig.Reference.FXSeries
	}
	if envConfig.Reference.MonthlyInflation == "" {
		envConfig.Reference.MonthlyInflation = fileConfig.Reference.MonthlyInflation
	}
	if envConfig.Reference.AnnualInflation == "" {
		envConfig.Reference.AnnualInflation = fileConfig.Reference.AnnualInflation
	}
	return envConfig
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "console"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/expensas.log"
	}
	if c.Anomaly.OutlierMultiplier == 0 {
		c.Anomaly.OutlierMultiplier = 3.5
	}
	if c.Anomaly.OutlierMinSamples == 0 {
		c.Anomaly.OutlierMinSamples = 8
	}
	if c.Anomaly.InflationMultiple == 0 {
		c.Anomaly.InflationMultiple = 1.5
	}
	if c.Enrichment.RateLimit == 0 {
		c.Enrichment.RateLimit = 1
	}
	if c.Enrichment.Burst == 0 {
		c.Enrichment.Burst = 1
	}
	if c.Enrichment.Timeout == 0 {
		c.Enrichment.Timeout = 15 * time.Second
	}
	if c.Enrichment.CacheTTL == 0 {
		c.Enrichment.CacheTTL = 24 * time.Hour
	}
}

func (c *Config) validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid log output: %s", c.Logging.Output)
	}
	if c.Anomaly.OutlierMultiplier <= 0 {
		return fmt.Errorf("outlier multiplier must be positive, got %g", c.Anomaly.OutlierMultiplier)
	}
	if c.Anomaly.OutlierMinSamples < 2 {
		return fmt.Errorf("outlier min samples must be at least 2, got %d", c.Anomaly.OutlierMinSamples)
	}
	if c.Anomaly.InflationMultiple <= 0 {
		return fmt.Errorf("inflation multiple must be positive, got %g", c.Anomaly.InflationMultiple)
	}
	if c.Enrichment.Enabled && c.Enrichment.RateLimit <= 0 {
		return fmt.Errorf("enrichment rate limit must be positive, got %g", c.Enrichment.RateLimit)
	}
	return nil
}
