package curator

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/veridata/txn-curator/internal/metadata"
	"github.com/veridata/txn-curator/internal/notify"
	"github.com/veridata/txn-curator/internal/storage"
	"github.com/veridata/txn-curator/internal/tables"
	"github.com/veridata/txn-curator/internal/tabular"
)

// encodeBatch serializes a batch per its ref: CSV (optionally zstd) or
// parquet.
func encodeBatch(b *tabular.Batch, ref storage.BatchRef) ([]byte, error) {
	if ref.Format == "parquet" {
		return tables.EncodeParquet(b)
	}
	data, err := tables.EncodeCSV(b)
	if err != nil {
		return nil, err
	}
	if ref.Compressed {
		return tables.CompressZstd(data)
	}
	return data, nil
}

// buildManifest creates the run manifest from the report and written
// outputs.
func (c *Curator) buildManifest(rep Report, outputs map[string]storage.OutputInfo) *storage.Manifest {
	return &storage.Manifest{
		RunDate:   c.cfg.Run.Date,
		Total:     rep.Total,
		Outputs:   outputs,
		Producer:  producerInfo(),
		CreatedAt: time.Now().UTC(),
	}
}

// buildEvent creates the run-completion notification.
func (c *Curator) buildEvent(rep Report, outputs map[string]storage.OutputInfo) notify.Event {
	outs := make(map[string]notify.OutputInfo, len(outputs))
	for stage, info := range outputs {
		ref := c.outputRef(storage.Stage(stage))
		outs[stage] = notify.OutputInfo{
			Checksum:    info.Checksum,
			RowCount:    info.RowCount,
			ByteSize:    info.ByteSize,
			StoragePath: ref.Path(c.cfg.Storage.Prefix),
		}
	}
	return notify.Event{
		Run: notify.RunInfo{
			Dataset:     Dataset,
			RunDate:     c.cfg.Run.Date,
			Total:       rep.Total,
			Curated:     rep.Valid,
			Quarantined: rep.Invalid,
		},
		Outputs: outs,
		Producer: notify.ProducerInfo{
			Name:    "txn-curator",
			Version: Version,
			GitSHA:  GitSHA,
		},
	}
}

// record writes lineage and quality rows to the catalog. Catalog trouble is
// logged and swallowed: the outputs are already published.
func (c *Curator) record(ctx context.Context, rep Report, curRef storage.BatchRef, outputs map[string]storage.OutputInfo) {
	datasetID, err := c.meta.EnsureDataset(ctx, metadataDataset(c.cfg.Catalog.Namespace))
	if err != nil {
		c.log.Warn("catalog dataset registration failed", "error", err)
		return
	}
	if datasetID == 0 {
		return // catalog disabled
	}

	curInfo := outputs[string(storage.StageCurated)]
	if err := c.meta.RecordRun(ctx, runRecord(datasetID, c.cfg.Run.Date, rep, curInfo,
		c.store.URI(curRef.Path(c.cfg.Storage.Prefix)))); err != nil {
		c.log.Warn("catalog lineage record failed", "error", err)
	}
	if err := c.meta.RecordQuality(ctx, qualityRecord(datasetID, c.cfg.Run.Date, rep)); err != nil {
		c.log.Warn("catalog quality record failed", "error", err)
	}
}

// observe feeds the run's counts into the metrics registry, if enabled.
func (c *Curator) observe(rep Report, outputs map[string]storage.OutputInfo) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordsProcessed.WithLabelValues(Dataset).Add(float64(rep.Total))
	c.metrics.RecordsCurated.WithLabelValues(Dataset).Add(float64(rep.Valid))
	c.metrics.RecordsQuarantined.WithLabelValues(Dataset).Add(float64(rep.Invalid))
	for field, n := range rep.Violations {
		c.metrics.ViolationsTotal.WithLabelValues(Dataset, field).Add(float64(n))
	}
	for stage, info := range outputs {
		c.metrics.OutputBytes.WithLabelValues(stage).Observe(float64(info.ByteSize))
	}
}

func producerInfo() storage.ProducerInfo {
	return storage.ProducerInfo{
		Name:    "txn-curator",
		Version: Version,
		GitSHA:  GitSHA,
	}
}

func metadataDataset(namespace string) metadata.DatasetInfo {
	return metadata.DatasetInfo{
		Dataset:     Dataset,
		Namespace:   namespace,
		Description: "daily synthetic transactions, curated",
	}
}

func runRecord(datasetID int64, runDate string, rep Report, curInfo storage.OutputInfo, uri string) metadata.RunRecord {
	return metadata.RunRecord{
		DatasetID:       datasetID,
		RunDate:         runDate,
		TotalRecords:    int64(rep.Total),
		CuratedRecords:  int64(rep.Valid),
		QuarantineCount: int64(rep.Invalid),
		Checksum:        curInfo.Checksum,
		StorageURI:      uri,
		ProducerVersion: fmt.Sprintf("txn-curator@%s", Version),
		ProducerGitSHA:  GitSHA,
	}
}

func qualityRecord(datasetID int64, runDate string, rep Report) metadata.QualityRecord {
	return metadata.QualityRecord{
		DatasetID:       datasetID,
		RunDate:         runDate,
		Passed:          rep.Invalid == 0,
		ViolationFields: int64(len(rep.Violations)),
		ErrorMessage:    violationSummary(rep),
	}
}

// violationSummary renders per-field violation counts as a stable,
// human-readable string for the quality log.
func violationSummary(rep Report) string {
	if len(rep.Violations) == 0 {
		return ""
	}
	fields := make([]string, 0, len(rep.Violations))
	for f := range rep.Violations {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s=%d", f, rep.Violations[f])
	}
	return strings.Join(parts, "; ")
}
