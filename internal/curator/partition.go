package curator

import (
	"github.com/veridata/txn-curator/internal/schema"
	"github.com/veridata/txn-curator/internal/tabular"
)

// Partition classifies every record in the batch as curated or quarantined.
//
// Step 1 validates each record independently, in original order. Step 2 is
// the batch-wide uniqueness pass: for every field flagged unique, any value
// occurring more than once marks every record sharing it invalid, including
// the first occurrence, even when each instance passed Step 1 on its own.
// Step 3 splits the batch, preserving relative input order within each
// output.
//
// The whole procedure is a pure function of batch contents and schema:
// running it twice yields identical outputs, and re-partitioning the
// concatenation of a previous run's outputs reproduces the classification.
func Partition(batch *tabular.Batch, sch *schema.Schema) (curated, quarantine *tabular.Batch, rep Report) {
	outcomes := make([]Outcome, len(batch.Rows))
	for i, row := range batch.Rows {
		outcomes[i] = ValidateRecord(row.Record, sch)
	}

	for _, spec := range sch.Fields {
		if !spec.Unique {
			continue
		}
		counts := make(map[string]int, len(batch.Rows))
		for _, row := range batch.Rows {
			counts[row.Record[spec.Name]]++
		}
		for i, row := range batch.Rows {
			if counts[row.Record[spec.Name]] > 1 {
				outcomes[i].add(spec.Name, schema.KindDuplicateKey)
			}
		}
	}

	curated = tabular.New(batch.Columns)
	quarantine = tabular.New(batch.Columns)
	violations := make(map[string]int)
	for i, row := range batch.Rows {
		if outcomes[i].Valid() {
			curated.AppendRow(row)
			continue
		}
		quarantine.AppendRow(row)
		for _, v := range outcomes[i].Violations {
			violations[v.Field]++
		}
	}

	rep = Summarize(batch.Len(), curated.Len(), quarantine.Len())
	if len(violations) > 0 {
		rep.Violations = violations
	}
	return curated, quarantine, rep
}
