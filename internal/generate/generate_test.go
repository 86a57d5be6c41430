package generate

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/veridata/txn-curator/internal/config"
	"github.com/veridata/txn-curator/internal/schema"
)

func testGenerator() *Generator {
	return New(config.GeneratorConfig{
		Records:        100,
		Seed:           42,
		Users:          30,
		ChargebackRate: 0.05,
		AmountMin:      1,
		AmountMax:      1000,
	})
}

func runDate(t *testing.T) time.Time {
	t.Helper()
	d, err := time.Parse(config.DateLayout, "2026-08-26")
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestGenerate_Deterministic(t *testing.T) {
	gen := testGenerator()
	date := runDate(t)

	a := gen.Generate(100, 42, date)
	b := gen.Generate(100, 42, date)

	if !reflect.DeepEqual(a, b) {
		t.Error("same (count, seed, run-date) produced different batches")
	}

	c := gen.Generate(100, 43, date)
	if reflect.DeepEqual(a, c) {
		t.Error("different seeds produced identical batches")
	}
}

func TestGenerate_CountAndColumns(t *testing.T) {
	gen := testGenerator()
	batch := gen.Generate(50, 1, runDate(t))

	if batch.Len() != 50 {
		t.Errorf("Len() = %d, want 50", batch.Len())
	}
	if !reflect.DeepEqual(batch.Columns, Columns) {
		t.Errorf("columns = %v", batch.Columns)
	}
	// Column order must match the schema declaration.
	if !reflect.DeepEqual(batch.Columns, schema.MustTransactions().Columns()) {
		t.Error("generator column order diverges from the schema")
	}
}

func TestGenerate_RecordShape(t *testing.T) {
	gen := testGenerator()
	date := runDate(t)
	batch := gen.Generate(200, 7, date)

	idRe := regexp.MustCompile(`^txn_\d{6}$`)
	userRe := regexp.MustCompile(`^u_\d{4}$`)
	end := time.Date(date.Year(), date.Month(), date.Day(), 23, 59, 59, 0, time.UTC)
	start := end.AddDate(0, 0, -365).Truncate(24 * time.Hour)

	for i, row := range batch.Rows {
		rec := row.Record
		if want := fmt.Sprintf("txn_%06d", i+1); rec["transaction_id"] != want {
			t.Fatalf("row %d id = %q, want %q", i, rec["transaction_id"], want)
		}
		if !idRe.MatchString(rec["transaction_id"]) || !userRe.MatchString(rec["user_id"]) {
			t.Fatalf("row %d malformed ids: %q %q", i, rec["transaction_id"], rec["user_id"])
		}

		ts, err := time.Parse(schema.TimestampLayout, rec["timestamp"])
		if err != nil {
			t.Fatalf("row %d timestamp %q: %v", i, rec["timestamp"], err)
		}
		if ts.Before(start) || ts.After(end) {
			t.Fatalf("row %d timestamp %v outside [%v, %v]", i, ts, start, end)
		}

		amount, err := strconv.ParseFloat(rec["amount"], 64)
		if err != nil {
			t.Fatalf("row %d amount %q: %v", i, rec["amount"], err)
		}
		if amount < 1 || amount > 1000 {
			t.Fatalf("row %d amount %v outside configured bounds", i, amount)
		}

		if rec["is_chargeback"] != "0" && rec["is_chargeback"] != "1" {
			t.Fatalf("row %d is_chargeback = %q", i, rec["is_chargeback"])
		}
	}
}

func TestGenerate_UserPoolSize(t *testing.T) {
	gen := New(config.GeneratorConfig{
		Users:          5,
		ChargebackRate: 0,
		AmountMin:      1,
		AmountMax:      10,
	})
	batch := gen.Generate(500, 3, runDate(t))

	users := make(map[string]bool)
	for _, row := range batch.Rows {
		users[row.Record["user_id"]] = true
	}
	if len(users) > 5 {
		t.Errorf("%d distinct users from a pool of 5", len(users))
	}
}
