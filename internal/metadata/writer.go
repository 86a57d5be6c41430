// Package metadata records run lineage and quality to an optional catalog.
package metadata

import (
	"context"
	"log/slog"
)

// CatalogConfig configures the catalog connection.
type CatalogConfig struct {
	PostgresDSN string
	Namespace   string
}

// Writer persists lineage and quality records for completed runs.
type Writer interface {
	// EnsureDataset registers or retrieves the dataset entry, returning
	// its catalog ID.
	EnsureDataset(ctx context.Context, info DatasetInfo) (int64, error)

	// RecordRun writes a lineage record for a completed transform run.
	RecordRun(ctx context.Context, rec RunRecord) error

	// RecordQuality writes the validation outcome summary for a run.
	RecordQuality(ctx context.Context, rec QualityRecord) error

	Close()
}

// DatasetInfo identifies a dataset in the catalog.
type DatasetInfo struct {
	Dataset     string
	Namespace   string
	Description string
}

// RunRecord is the lineage entry for one transform run.
type RunRecord struct {
	DatasetID       int64
	RunDate         string
	TotalRecords    int64
	CuratedRecords  int64
	QuarantineCount int64
	Checksum        string
	StorageURI      string
	ProducerVersion string
	ProducerGitSHA  string
}

// QualityRecord summarizes the validation outcome for one run.
type QualityRecord struct {
	DatasetID       int64
	RunDate         string
	Passed          bool
	ViolationFields int64
	ErrorMessage    string
}

// NewWriter creates a catalog writer. Without a DSN the catalog is disabled
// and a no-op writer is returned; catalog trouble must never fail a run.
func NewWriter(cfg CatalogConfig) Writer {
	if cfg.PostgresDSN == "" {
		return noopWriter{}
	}
	w, err := NewPostgresWriter(cfg)
	if err != nil {
		slog.Warn("catalog unavailable, lineage disabled", "error", err)
		return noopWriter{}
	}
	return w
}

type noopWriter struct{}

func (noopWriter) EnsureDataset(context.Context, DatasetInfo) (int64, error) { return 0, nil }
func (noopWriter) RecordRun(context.Context, RunRecord) error                { return nil }
func (noopWriter) RecordQuality(context.Context, QualityRecord) error        { return nil }
func (noopWriter) Close()                                                    {}
