package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Stage identifies which pipeline output a batch belongs to.
type Stage string

const (
	StageRaw        Stage = "raw"
	StageCurated    Stage = "curated"
	StageQuarantine Stage = "quarantine"
)

// BatchRef describes a batch file location, keyed by stage and run-date for
// compatibility with the existing pipeline layout.
type BatchRef struct {
	Stage   Stage
	RunDate string // YYYY-MM-DD
	Format  string // "csv" | "parquet"

	// Compressed appends .zst; only meaningful for CSV output.
	Compressed bool
}

// Filename returns the file name for this batch.
func (r BatchRef) Filename() string {
	name := "transactions_" + r.RunDate
	if r.Stage != StageRaw {
		name = fmt.Sprintf("transactions_%s_%s", r.Stage, r.RunDate)
	}
	ext := ".csv"
	if r.Format == "parquet" {
		ext = ".parquet"
	}
	name += ext
	if r.Compressed && r.Format != "parquet" {
		name += ".zst"
	}
	return name
}

// Path returns the storage path for this batch file.
func (r BatchRef) Path(prefix string) string {
	return fmt.Sprintf("%s%s/%s", prefix, r.Stage, r.Filename())
}

// ManifestPath returns the storage path for the run's manifest. The manifest
// lives alongside the curated output regardless of the ref's stage.
func (r BatchRef) ManifestPath(prefix string) string {
	return fmt.Sprintf("%s%s/transactions_manifest_%s.json", prefix, StageCurated, r.RunDate)
}

// Manifest describes the outputs of one transform run.
type Manifest struct {
	RunDate   string                `json:"run_date"`
	Total     int                   `json:"total_records"`
	Outputs   map[string]OutputInfo `json:"outputs"`
	Producer  ProducerInfo          `json:"producer"`
	CreatedAt time.Time             `json:"created_at"`
}

// OutputInfo describes a single written batch file.
type OutputInfo struct {
	File     string `json:"file"`
	Checksum string `json:"checksum"`
	RowCount int64  `json:"row_count"`
	ByteSize int64  `json:"byte_size"`
}

// ProducerInfo describes the software that produced the outputs.
type ProducerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	GitSHA  string `json:"git_sha,omitempty"`
}

// MarshalJSON returns the manifest as indented JSON bytes.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	type Alias Manifest
	return json.MarshalIndent((*Alias)(m), "", "  ")
}

// BatchStore abstracts writing batch files to storage. Writes are atomic:
// either the whole file lands at its canonical path or nothing does.
type BatchStore interface {
	// WriteBatch writes encoded batch bytes to storage.
	WriteBatch(ctx context.Context, ref BatchRef, data []byte) error

	// WriteManifest writes the run manifest.
	WriteManifest(ctx context.Context, ref BatchRef, manifest *Manifest) error

	// Exists checks whether a batch file is already present.
	Exists(ctx context.Context, ref BatchRef) (bool, error)

	// URI returns the canonical URI for the given key.
	// For local: file:///path, GCS: gs://bucket/path, S3: s3://bucket/path
	URI(key string) string

	// Close releases any resources.
	Close() error
}

// StorageConfig configures the storage backend.
type StorageConfig struct {
	Backend string // "local" | "gcs" | "s3"

	// Local filesystem
	LocalDir string // e.g. ./data

	// GCS
	GCSBucket string

	// S3 (also works for B2, R2, MinIO)
	S3Bucket   string
	S3Endpoint string // custom endpoint for B2/MinIO/R2
	S3Region   string

	// Common
	Prefix string // path prefix within bucket or local dir
}

// NewBatchStore creates a storage backend based on configuration.
func NewBatchStore(cfg StorageConfig) (BatchStore, error) {
	switch cfg.Backend {
	case "local":
		if cfg.LocalDir == "" {
			return nil, fmt.Errorf("LocalDir required for local backend")
		}
		return NewLocalStore(cfg.LocalDir, cfg.Prefix)
	case "gcs":
		if cfg.GCSBucket == "" {
			return nil, fmt.Errorf("GCSBucket required for gcs backend")
		}
		return NewGCSStore(cfg.GCSBucket, cfg.Prefix)
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("S3Bucket required for s3 backend")
		}
		return NewS3Store(cfg.S3Bucket, cfg.Prefix, cfg.S3Endpoint, cfg.S3Region)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}
