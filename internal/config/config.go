// Package config loads pipeline configuration from an optional YAML file
// with environment-variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DateLayout is the run-date wire format.
const DateLayout = "2006-01-02"

// ErrInvalidConfig marks configuration errors. They are fatal at startup.
var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Run       RunConfig       `yaml:"run"`
	Generator GeneratorConfig `yaml:"generator"`
	Source    SourceConfig    `yaml:"source"`
	Storage   StorageConfig   `yaml:"storage"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Notify    NotifyConfig    `yaml:"notify"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type RunConfig struct {
	// Date is the logical run-date (YYYY-MM-DD) batches are keyed by,
	// independent of wall-clock execution time. Defaults to today.
	Date string `yaml:"date"`
}

type GeneratorConfig struct {
	Records        int     `yaml:"records"`
	Seed           int64   `yaml:"seed"`
	Users          int     `yaml:"users"`
	ChargebackRate float64 `yaml:"chargeback_rate"`
	AmountMin      float64 `yaml:"amount_min"`
	AmountMax      float64 `yaml:"amount_max"`
}

type SourceConfig struct {
	Backend    string `yaml:"backend"`
	LocalDir   string `yaml:"local_dir"`
	GCSBucket  string `yaml:"gcs_bucket"`
	S3Bucket   string `yaml:"s3_bucket"`
	S3Endpoint string `yaml:"s3_endpoint"`
	S3Region   string `yaml:"s3_region"`
	Prefix     string `yaml:"prefix"`
}

type StorageConfig struct {
	Backend    string `yaml:"backend"`
	LocalDir   string `yaml:"local_dir"`
	GCSBucket  string `yaml:"gcs_bucket"`
	S3Bucket   string `yaml:"s3_bucket"`
	S3Endpoint string `yaml:"s3_endpoint"`
	S3Region   string `yaml:"s3_region"`
	Prefix     string `yaml:"prefix"`

	// Format selects the curated output encoding: "csv" or "parquet".
	// Raw and quarantine outputs are always CSV.
	Format string `yaml:"format"`

	// Compression is "" or "zstd"; applies to CSV outputs only.
	Compression string `yaml:"compression"`
}

type CatalogConfig struct {
	PostgresDSN string `yaml:"postgres_dsn"`
	Namespace   string `yaml:"namespace"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

type NotifyConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

type LoggingConfig struct {
	Format string `yaml:"format"` // "json" | "text"
	Level  string `yaml:"level"`  // "debug" | "info" | "warn" | "error"
}

// Default returns the built-in configuration, matching the layout the
// pipeline has always used.
func Default() Config {
	return Config{
		Run: RunConfig{},
		Generator: GeneratorConfig{
			Records:        1000,
			Seed:           42,
			Users:          300,
			ChargebackRate: 0.05,
			AmountMin:      1.0,
			AmountMax:      1000.0,
		},
		Source: SourceConfig{
			Backend:  "local",
			LocalDir: "./data",
		},
		Storage: StorageConfig{
			Backend:  "local",
			LocalDir: "./data",
			Format:   "csv",
		},
		Catalog: CatalogConfig{
			Namespace: "transactions",
		},
		Metrics: MetricsConfig{
			Address: ":9090",
		},
		Logging: LoggingConfig{
			Format: "text",
			Level:  "info",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is empty the file is optional and skipped), then environment
// overrides, then validation.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
		}
	}

	applyEnv(&cfg)

	if cfg.Run.Date == "" {
		cfg.Run.Date = time.Now().UTC().Format(DateLayout)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv applies environment-variable overrides on top of file values.
func applyEnv(cfg *Config) {
	if v := os.Getenv("RUN_DATE"); v != "" {
		cfg.Run.Date = v
	}
	if v := os.Getenv("GENERATOR_RECORDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Generator.Records = n
		}
	}
	if v := os.Getenv("GENERATOR_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Generator.Seed = n
		}
	}
	if v := os.Getenv("SOURCE_BACKEND"); v != "" {
		cfg.Source.Backend = v
	}
	if v := os.Getenv("SOURCE_LOCAL_DIR"); v != "" {
		cfg.Source.LocalDir = v
	}
	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("STORAGE_LOCAL_DIR"); v != "" {
		cfg.Storage.LocalDir = v
	}
	if v := os.Getenv("STORAGE_FORMAT"); v != "" {
		cfg.Storage.Format = v
	}
	if v := os.Getenv("CATALOG_DSN"); v != "" {
		cfg.Catalog.PostgresDSN = v
	}
	if v := os.Getenv("NOTIFY_ENDPOINT"); v != "" {
		cfg.Notify.Endpoint = v
		cfg.Notify.Enabled = true
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Metrics.Address = v
		cfg.Metrics.Enabled = true
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate rejects configuration the pipeline cannot run with. All failures
// wrap ErrInvalidConfig and abort before any data is touched.
func (c *Config) Validate() error {
	if _, err := time.Parse(DateLayout, c.Run.Date); err != nil {
		return fmt.Errorf("%w: run date %q must be YYYY-MM-DD", ErrInvalidConfig, c.Run.Date)
	}
	if c.Generator.Records <= 0 {
		return fmt.Errorf("%w: generator records must be positive, got %d", ErrInvalidConfig, c.Generator.Records)
	}
	if c.Generator.Users <= 0 {
		return fmt.Errorf("%w: generator users must be positive, got %d", ErrInvalidConfig, c.Generator.Users)
	}
	if c.Generator.AmountMin <= 0 || c.Generator.AmountMax < c.Generator.AmountMin {
		return fmt.Errorf("%w: invalid amount bounds [%v, %v]", ErrInvalidConfig, c.Generator.AmountMin, c.Generator.AmountMax)
	}
	if c.Generator.ChargebackRate < 0 || c.Generator.ChargebackRate > 1 {
		return fmt.Errorf("%w: chargeback rate %v out of [0, 1]", ErrInvalidConfig, c.Generator.ChargebackRate)
	}
	switch c.Storage.Format {
	case "csv", "parquet":
	default:
		return fmt.Errorf("%w: unknown storage format %q", ErrInvalidConfig, c.Storage.Format)
	}
	switch c.Storage.Compression {
	case "", "zstd":
	default:
		return fmt.Errorf("%w: unknown compression %q", ErrInvalidConfig, c.Storage.Compression)
	}
	return nil
}
