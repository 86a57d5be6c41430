package tables

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/veridata/txn-curator/internal/tabular"
)

// EncodeCSV serializes a batch as CSV bytes: one header row in the batch's
// column order, then one line per row. Values are written exactly as stored;
// encoding never re-types or reformats them.
func EncodeCSV(batch *tabular.Batch) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(batch.Columns); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	line := make([]string, len(batch.Columns))
	for _, row := range batch.Rows {
		for i, col := range batch.Columns {
			line[i] = row.Record[col]
		}
		if err := w.Write(line); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row.Index, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
