package metadata

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// PostgresWriter implements Writer using PostgreSQL.
type PostgresWriter struct {
	pool         *pgxpool.Pool
	cfg          CatalogConfig
	mu           sync.RWMutex
	datasetCache map[string]int64
}

// NewPostgresWriter creates a new PostgreSQL catalog writer.
func NewPostgresWriter(cfg CatalogConfig) (*PostgresWriter, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	poolCfg.MaxConns = 5
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	w := &PostgresWriter{
		pool:         pool,
		cfg:          cfg,
		datasetCache: make(map[string]int64),
	}

	if err := w.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	slog.Info("connected to PostgreSQL catalog", "namespace", cfg.Namespace)
	return w, nil
}

// initSchema creates the _meta_* tables if they don't exist.
func (w *PostgresWriter) initSchema(ctx context.Context) error {
	_, err := w.pool.Exec(ctx, schemaSQL)
	if err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// EnsureDataset registers or retrieves a dataset entry.
func (w *PostgresWriter) EnsureDataset(ctx context.Context, info DatasetInfo) (int64, error) {
	cacheKey := info.Dataset + "." + info.Namespace
	w.mu.RLock()
	if id, ok := w.datasetCache[cacheKey]; ok {
		w.mu.RUnlock()
		return id, nil
	}
	w.mu.RUnlock()

	query := `
		INSERT INTO _meta_datasets (dataset, namespace, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (dataset, namespace)
		DO UPDATE SET updated_at = NOW()
		RETURNING id
	`

	var id int64
	err := w.pool.QueryRow(ctx, query, info.Dataset, info.Namespace, info.Description).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ensure dataset: %w", err)
	}

	w.mu.Lock()
	w.datasetCache[cacheKey] = id
	w.mu.Unlock()

	return id, nil
}

// RecordRun writes a lineage record for a completed transform run.
func (w *PostgresWriter) RecordRun(ctx context.Context, rec RunRecord) error {
	if rec.DatasetID == 0 {
		return fmt.Errorf("DatasetID is required (call EnsureDataset first)")
	}

	query := `
		INSERT INTO _meta_runs (
			dataset_id, run_date, total_records, curated_records,
			quarantine_count, checksum, storage_uri,
			producer_version, producer_git_sha
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := w.pool.Exec(ctx, query,
		rec.DatasetID,
		rec.RunDate,
		rec.TotalRecords,
		rec.CuratedRecords,
		rec.QuarantineCount,
		rec.Checksum,
		rec.StorageURI,
		rec.ProducerVersion,
		rec.ProducerGitSHA,
	)
	if err != nil {
		return fmt.Errorf("insert run record: %w", err)
	}
	return nil
}

// RecordQuality writes the validation outcome summary for a run.
func (w *PostgresWriter) RecordQuality(ctx context.Context, rec QualityRecord) error {
	if rec.DatasetID == 0 {
		return fmt.Errorf("DatasetID is required (call EnsureDataset first)")
	}

	query := `
		INSERT INTO _meta_quality (
			dataset_id, run_date, passed, violation_fields, error_message
		) VALUES ($1, $2, $3, $4, $5)
	`

	_, err := w.pool.Exec(ctx, query,
		rec.DatasetID,
		rec.RunDate,
		rec.Passed,
		rec.ViolationFields,
		rec.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("insert quality record: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (w *PostgresWriter) Close() {
	w.pool.Close()
}
