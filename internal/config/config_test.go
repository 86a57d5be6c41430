package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Generator.Records != 1000 || cfg.Generator.Seed != 42 {
		t.Errorf("generator defaults = %+v", cfg.Generator)
	}
	if cfg.Source.Backend != "local" || cfg.Storage.Backend != "local" {
		t.Errorf("backends = %s / %s, want local", cfg.Source.Backend, cfg.Storage.Backend)
	}
	if cfg.Storage.Format != "csv" {
		t.Errorf("format = %s, want csv", cfg.Storage.Format)
	}

	// Run date defaults to today.
	if cfg.Run.Date != time.Now().UTC().Format(DateLayout) {
		t.Errorf("run date = %s", cfg.Run.Date)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
run:
  date: "2026-08-26"
generator:
  records: 250
  seed: 7
storage:
  format: parquet
  compression: zstd
catalog:
  namespace: payments
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Run.Date != "2026-08-26" {
		t.Errorf("run date = %s", cfg.Run.Date)
	}
	if cfg.Generator.Records != 250 || cfg.Generator.Seed != 7 {
		t.Errorf("generator = %+v", cfg.Generator)
	}
	// Values the file omits keep their defaults.
	if cfg.Generator.Users != 300 {
		t.Errorf("users = %d, want default 300", cfg.Generator.Users)
	}
	if cfg.Storage.Format != "parquet" || cfg.Storage.Compression != "zstd" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Catalog.Namespace != "payments" {
		t.Errorf("namespace = %s", cfg.Catalog.Namespace)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("run:\n  date: \"2026-01-01\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RUN_DATE", "2026-08-26")
	t.Setenv("GENERATOR_RECORDS", "10")
	t.Setenv("NOTIFY_ENDPOINT", "https://hooks.example.com/runs")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Run.Date != "2026-08-26" {
		t.Errorf("run date = %s, env must win over file", cfg.Run.Date)
	}
	if cfg.Generator.Records != 10 {
		t.Errorf("records = %d", cfg.Generator.Records)
	}
	if !cfg.Notify.Enabled || cfg.Notify.Endpoint != "https://hooks.example.com/runs" {
		t.Errorf("notify = %+v, endpoint env must enable notifications", cfg.Notify)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load accepted a missing explicit config path")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("run: [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Load error = %v, want ErrInvalidConfig", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad run date", func(c *Config) { c.Run.Date = "08/26/2026" }},
		{"zero records", func(c *Config) { c.Generator.Records = 0 }},
		{"negative users", func(c *Config) { c.Generator.Users = -1 }},
		{"inverted amounts", func(c *Config) { c.Generator.AmountMin = 100; c.Generator.AmountMax = 1 }},
		{"zero amount min", func(c *Config) { c.Generator.AmountMin = 0 }},
		{"chargeback rate above 1", func(c *Config) { c.Generator.ChargebackRate = 1.5 }},
		{"unknown format", func(c *Config) { c.Storage.Format = "avro" }},
		{"unknown compression", func(c *Config) { c.Storage.Compression = "gzip" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.Run.Date = "2026-08-26"
			tc.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Validate error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
