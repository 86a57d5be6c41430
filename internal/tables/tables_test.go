package tables

import (
	"bytes"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/parquet-go/parquet-go"

	"github.com/veridata/txn-curator/internal/tabular"
)

func sampleBatch() *tabular.Batch {
	b := tabular.New([]string{"transaction_id", "user_id", "timestamp", "amount",
		"currency", "payment_method", "country", "device", "is_chargeback"})
	b.Append(tabular.Record{
		"transaction_id": "txn_000001",
		"user_id":        "u_0007",
		"timestamp":      "2026-03-01T12:34:56",
		"amount":         "99.90",
		"currency":       "EUR",
		"payment_method": "paypal",
		"country":        "DE",
		"device":         "tablet",
		"is_chargeback":  "0",
	})
	b.Append(tabular.Record{
		"transaction_id": "txn_000002",
		"user_id":        "u_0007",
		"timestamp":      "2026-03-02T08:00:00",
		"amount":         "5.00",
		"currency":       "HUF",
		"payment_method": "bank_transfer",
		"country":        "HU",
		"device":         "mobile",
		"is_chargeback":  "1",
	})
	return b
}

func TestEncodeCSV_PreservesRawValues(t *testing.T) {
	b := tabular.New([]string{"id", "amount"})
	// "007" and "10.50" must survive verbatim; encoding never re-types.
	b.Append(tabular.Record{"id": "007", "amount": "10.50"})

	data, err := EncodeCSV(b)
	if err != nil {
		t.Fatalf("EncodeCSV: %v", err)
	}
	want := "id,amount\n007,10.50\n"
	if string(data) != want {
		t.Errorf("EncodeCSV = %q, want %q", string(data), want)
	}
}

func TestEncodeCSV_EmptyBatchIsHeaderOnly(t *testing.T) {
	b := tabular.New([]string{"a", "b", "c"})
	data, err := EncodeCSV(b)
	if err != nil {
		t.Fatalf("EncodeCSV: %v", err)
	}
	if string(data) != "a,b,c\n" {
		t.Errorf("EncodeCSV = %q", string(data))
	}
}

func TestChecksum(t *testing.T) {
	data := []byte("hello")
	sum := ComputeChecksum(data)
	if !strings.HasPrefix(sum, "sha256:") {
		t.Errorf("checksum %q missing prefix", sum)
	}
	if !VerifyChecksum(data, sum) {
		t.Error("checksum does not verify against its own input")
	}
	if VerifyChecksum([]byte("hellx"), sum) {
		t.Error("checksum verified against altered input")
	}
}

func TestCompressZstd_Roundtrip(t *testing.T) {
	original, err := EncodeCSV(sampleBatch())
	if err != nil {
		t.Fatalf("EncodeCSV: %v", err)
	}

	compressed, err := CompressZstd(original)
	if err != nil {
		t.Fatalf("CompressZstd: %v", err)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()
	restored, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	if string(restored) != string(original) {
		t.Error("zstd roundtrip altered the payload")
	}
}

func TestExtractRows(t *testing.T) {
	rows, err := ExtractRows(sampleBatch())
	if err != nil {
		t.Fatalf("ExtractRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2", len(rows))
	}
	if rows[0].TransactionID != "txn_000001" || rows[0].Amount != 99.90 {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].IsChargeback != 1 {
		t.Errorf("row 1 is_chargeback = %d, want 1", rows[1].IsChargeback)
	}
	if got := rows[0].Timestamp.Format("2006-01-02T15:04:05"); got != "2026-03-01T12:34:56" {
		t.Errorf("row 0 timestamp = %s", got)
	}
}

func TestExtractRows_NonCoercibleValueIsError(t *testing.T) {
	b := sampleBatch()
	b.Rows[1].Record["amount"] = "free"

	if _, err := ExtractRows(b); err == nil {
		t.Fatal("ExtractRows accepted a non-coercible amount")
	}
}

func TestEncodeParquet_Roundtrip(t *testing.T) {
	data, err := EncodeParquet(sampleBatch())
	if err != nil {
		t.Fatalf("EncodeParquet: %v", err)
	}

	rows, err := parquet.Read[TransactionRow](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("read %d rows, want 2", len(rows))
	}
	if rows[0].TransactionID != "txn_000001" || rows[1].Currency != "HUF" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestEncodeParquet_EmptyBatch(t *testing.T) {
	data, err := EncodeParquet(tabular.New(sampleBatch().Columns))
	if err != nil {
		t.Fatalf("EncodeParquet: %v", err)
	}
	rows, err := parquet.Read[TransactionRow](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("read %d rows from an empty file", len(rows))
	}
}
