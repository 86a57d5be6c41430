// Package curator implements the validate-and-partition core of the
// pipeline and the run orchestration around it.
package curator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/veridata/txn-curator/internal/config"
	"github.com/veridata/txn-curator/internal/generate"
	"github.com/veridata/txn-curator/internal/logging"
	"github.com/veridata/txn-curator/internal/metadata"
	"github.com/veridata/txn-curator/internal/metrics"
	"github.com/veridata/txn-curator/internal/notify"
	"github.com/veridata/txn-curator/internal/schema"
	"github.com/veridata/txn-curator/internal/source"
	"github.com/veridata/txn-curator/internal/storage"
	"github.com/veridata/txn-curator/internal/tables"
	"github.com/veridata/txn-curator/internal/tabular"
)

// Version information (set via ldflags)
var (
	Version = "v0.1.0"
	GitSHA  = "unknown"
)

// Dataset is the catalog name of the dataset this pipeline produces.
const Dataset = "transactions"

// Curator orchestrates a transform run: read raw, partition, publish
// curated and quarantine outputs, record lineage.
type Curator struct {
	cfg     config.Config
	sch     *schema.Schema
	src     source.BatchSource
	store   storage.BatchStore
	meta    metadata.Writer
	notify  notify.Emitter
	metrics *metrics.Metrics // nil when metrics are disabled
	log     *slog.Logger
}

// New creates a Curator. The catalog writer and event emitter are built from
// configuration; both degrade to no-ops when unconfigured.
func New(cfg config.Config, sch *schema.Schema, src source.BatchSource, store storage.BatchStore, m *metrics.Metrics) *Curator {
	return &Curator{
		cfg:   cfg,
		sch:   sch,
		src:   src,
		store: store,
		meta: metadata.NewWriter(metadata.CatalogConfig{
			PostgresDSN: cfg.Catalog.PostgresDSN,
			Namespace:   cfg.Catalog.Namespace,
		}),
		notify: notify.NewEmitter(notify.Config{
			Enabled:  cfg.Notify.Enabled,
			Endpoint: cfg.Notify.Endpoint,
		}),
		metrics: m,
		log:     slog.With("component", "curator", "run_date", cfg.Run.Date),
	}
}

// Close releases the catalog and emitter resources.
func (c *Curator) Close() {
	c.meta.Close()
	c.notify.Close()
}

// Run executes one transform run for the configured run-date.
//
// Validation failures are data: they route records to quarantine and never
// abort the run. Only configuration and I/O problems return an error.
func (c *Curator) Run(ctx context.Context) error {
	start := time.Now()
	log := c.log
	if id := logging.CorrelationID(ctx); id != "" {
		log = log.With("correlation_id", id)
	}

	batch, err := c.src.Read(ctx, c.cfg.Run.Date)
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			return fmt.Errorf("input batch for %s: %w", c.cfg.Run.Date, err)
		}
		return fmt.Errorf("read raw batch: %w", err)
	}
	log.Info("raw batch loaded", "records", batch.Len())

	curated, quarantine, rep := Partition(batch, c.sch)

	outputs := make(map[string]storage.OutputInfo)

	// Curated output is always written, even when empty, so downstream
	// consumers can distinguish "no valid data" from "no run".
	curRef, curInfo, err := c.writeOutput(ctx, storage.StageCurated, curated)
	if err != nil {
		return err
	}
	outputs[string(storage.StageCurated)] = curInfo

	// Quarantine output is omitted entirely when empty.
	if quarantine.Len() > 0 {
		_, qInfo, err := c.writeOutput(ctx, storage.StageQuarantine, quarantine)
		if err != nil {
			return err
		}
		outputs[string(storage.StageQuarantine)] = qInfo
	}

	manifest := c.buildManifest(rep, outputs)
	if err := c.store.WriteManifest(ctx, curRef, manifest); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	c.observe(rep, outputs)
	c.record(ctx, rep, curRef, outputs)

	if err := c.notify.EmitRun(ctx, c.buildEvent(rep, outputs)); err != nil {
		log.Warn("run notification failed", "error", err)
	}

	log.Info("transform complete",
		"total", rep.Total,
		"curated", rep.Valid,
		"quarantined", rep.Invalid,
		"valid_pct", rep.ValidPercent(),
		"invalid_pct", rep.InvalidPercent(),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// RunGenerate synthesizes the raw batch for the configured run-date and
// publishes it to the raw stage.
func (c *Curator) RunGenerate(ctx context.Context, gen *generate.Generator) error {
	start := time.Now()

	runDate, err := time.Parse(config.DateLayout, c.cfg.Run.Date)
	if err != nil {
		return fmt.Errorf("%w: run date %q", config.ErrInvalidConfig, c.cfg.Run.Date)
	}

	batch := gen.Generate(c.cfg.Generator.Records, c.cfg.Generator.Seed, runDate)

	ref := storage.BatchRef{
		Stage:      storage.StageRaw,
		RunDate:    c.cfg.Run.Date,
		Format:     "csv",
		Compressed: c.cfg.Storage.Compression == "zstd",
	}
	data, err := encodeBatch(batch, ref)
	if err != nil {
		return fmt.Errorf("encode raw batch: %w", err)
	}
	if err := c.store.WriteBatch(ctx, ref, data); err != nil {
		return fmt.Errorf("write raw batch: %w", err)
	}

	chargebacks := 0
	for _, row := range batch.Rows {
		if row.Record["is_chargeback"] == "1" {
			chargebacks++
		}
	}

	c.log.Info("generate complete",
		"records", batch.Len(),
		"chargeback_pct", fmt.Sprintf("%.2f%%", 100*float64(chargebacks)/float64(batch.Len())),
		"file", c.store.URI(ref.Path(c.cfg.Storage.Prefix)),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// writeOutput encodes and writes one output batch, returning its ref and
// manifest entry.
func (c *Curator) writeOutput(ctx context.Context, stage storage.Stage, b *tabular.Batch) (storage.BatchRef, storage.OutputInfo, error) {
	ref := c.outputRef(stage)
	data, err := encodeBatch(b, ref)
	if err != nil {
		return ref, storage.OutputInfo{}, fmt.Errorf("encode %s batch: %w", stage, err)
	}
	if err := c.store.WriteBatch(ctx, ref, data); err != nil {
		return ref, storage.OutputInfo{}, fmt.Errorf("write %s batch: %w", stage, err)
	}
	c.log.Info("batch written", "stage", string(stage), "records", b.Len(), "bytes", len(data))
	return ref, storage.OutputInfo{
		File:     ref.Filename(),
		Checksum: tables.ComputeChecksum(data),
		RowCount: int64(b.Len()),
		ByteSize: int64(len(data)),
	}, nil
}

// outputRef builds the storage ref for an output stage. Parquet applies to
// the curated output only: quarantined rows may hold values that do not
// coerce to the typed row.
func (c *Curator) outputRef(stage storage.Stage) storage.BatchRef {
	format := "csv"
	if stage == storage.StageCurated && c.cfg.Storage.Format == "parquet" {
		format = "parquet"
	}
	return storage.BatchRef{
		Stage:      stage,
		RunDate:    c.cfg.Run.Date,
		Format:     format,
		Compressed: c.cfg.Storage.Compression == "zstd" && format == "csv",
	}
}
