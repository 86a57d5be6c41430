// Package source reads raw transaction batches from local or bucket storage.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/veridata/txn-curator/internal/tabular"
)

// ErrNotFound is returned when no raw batch exists for the requested
// run-date.
var ErrNotFound = errors.New("raw batch not found")

// BatchSource reads the raw batch for a run-date. The whole batch is loaded
// into memory; there is no streaming.
type BatchSource interface {
	Read(ctx context.Context, runDate string) (*tabular.Batch, error)
	Close() error
}

// SourceConfig configures the raw batch source.
type SourceConfig struct {
	Backend string // "local" | "gcs" | "s3"

	LocalDir string

	GCSBucket string

	S3Bucket   string
	S3Endpoint string
	S3Region   string

	Prefix string
}

// NewBatchSource constructs a batch source based on the configured backend.
func NewBatchSource(cfg SourceConfig) (BatchSource, error) {
	switch cfg.Backend {
	case "local":
		if cfg.LocalDir == "" {
			return nil, fmt.Errorf("LocalDir required for local backend")
		}
		return NewLocalSource(cfg.LocalDir, cfg.Prefix)
	case "gcs":
		if cfg.GCSBucket == "" {
			return nil, fmt.Errorf("GCSBucket required for gcs backend")
		}
		return NewGCSSource(cfg.GCSBucket, cfg.Prefix)
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("S3Bucket required for s3 backend")
		}
		return NewS3Source(cfg.S3Bucket, cfg.Prefix, cfg.S3Endpoint, cfg.S3Region)
	default:
		return nil, fmt.Errorf("unknown source backend: %s", cfg.Backend)
	}
}

// rawKey returns the storage key of the raw batch for a run-date.
// Compressed selects the zstd variant.
func rawKey(prefix, runDate string, compressed bool) string {
	key := fmt.Sprintf("%sraw/transactions_%s.csv", prefix, runDate)
	if compressed {
		key += ".zst"
	}
	return key
}
