package tables

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/veridata/txn-curator/internal/schema"
	"github.com/veridata/txn-curator/internal/tabular"
)

// TransactionRow is the typed row for parquet output of the curated subset.
// Only curated rows can take this shape: quarantined rows may hold values
// that do not coerce, so quarantine output is always CSV.
type TransactionRow struct {
	TransactionID string    `parquet:"transaction_id"`
	UserID        string    `parquet:"user_id"`
	Timestamp     time.Time `parquet:"timestamp,timestamp(millisecond)"`
	Amount        float64   `parquet:"amount"`
	Currency      string    `parquet:"currency"`
	PaymentMethod string    `parquet:"payment_method"`
	Country       string    `parquet:"country"`
	Device        string    `parquet:"device"`
	IsChargeback  int32     `parquet:"is_chargeback"`
}

// TableName returns the canonical table name.
func (TransactionRow) TableName() string {
	return "transactions_curated"
}

// ExtractRows converts a curated batch into typed rows, coercing each value
// to its declared type. A conversion failure means a non-conformant row
// reached the curated output, which is a bug upstream, so it is an error
// here rather than a violation.
func ExtractRows(batch *tabular.Batch) ([]TransactionRow, error) {
	rows := make([]TransactionRow, 0, batch.Len())
	for _, r := range batch.Rows {
		rec := r.Record

		ts, err := time.Parse(schema.TimestampLayout, rec["timestamp"])
		if err != nil {
			return nil, fmt.Errorf("row %d: parse timestamp %q: %w", r.Index, rec["timestamp"], err)
		}
		amount, err := strconv.ParseFloat(rec["amount"], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parse amount %q: %w", r.Index, rec["amount"], err)
		}
		chargeback, err := strconv.ParseInt(rec["is_chargeback"], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("row %d: parse is_chargeback %q: %w", r.Index, rec["is_chargeback"], err)
		}

		rows = append(rows, TransactionRow{
			TransactionID: rec["transaction_id"],
			UserID:        rec["user_id"],
			Timestamp:     ts,
			Amount:        amount,
			Currency:      rec["currency"],
			PaymentMethod: rec["payment_method"],
			Country:       rec["country"],
			Device:        rec["device"],
			IsChargeback:  int32(chargeback),
		})
	}
	return rows, nil
}

// EncodeParquet serializes a curated batch as a parquet file.
func EncodeParquet(batch *tabular.Batch) ([]byte, error) {
	rows, err := ExtractRows(batch)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := parquet.NewGenericWriter[TransactionRow](&buf, parquet.Compression(&parquet.Snappy))
	if len(rows) > 0 {
		if _, err := w.Write(rows); err != nil {
			return nil, fmt.Errorf("write parquet rows: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}
