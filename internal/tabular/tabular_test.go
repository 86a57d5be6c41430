package tabular

import (
	"reflect"
	"testing"
)

func TestBatchAppendAssignsIndices(t *testing.T) {
	b := New([]string{"id"})
	b.Append(Record{"id": "a"})
	b.Append(Record{"id": "b"})

	if b.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", b.Len())
	}
	for i, row := range b.Rows {
		if row.Index != i {
			t.Errorf("row %d has index %d", i, row.Index)
		}
	}
}

func TestBatchAppendRowKeepsIndex(t *testing.T) {
	b := New([]string{"id"})
	b.AppendRow(Row{Index: 7, Record: Record{"id": "a"}})

	if b.Rows[0].Index != 7 {
		t.Errorf("index = %d, want 7 (provenance must survive)", b.Rows[0].Index)
	}
}

func TestNewCopiesColumns(t *testing.T) {
	cols := []string{"a", "b"}
	b := New(cols)
	cols[0] = "mutated"

	if b.Columns[0] != "a" {
		t.Error("batch shares the caller's column slice")
	}
}

func TestRecordClone(t *testing.T) {
	orig := Record{"id": "a", "amount": "1.00"}
	dup := orig.Clone()
	dup["amount"] = "2.00"

	if orig["amount"] != "1.00" {
		t.Error("Clone shares storage with the original")
	}
	if !reflect.DeepEqual(orig, Record{"id": "a", "amount": "1.00"}) {
		t.Errorf("original mutated: %v", orig)
	}
}

func TestConcatReindexes(t *testing.T) {
	a := New([]string{"id"})
	a.AppendRow(Row{Index: 3, Record: Record{"id": "x"}})
	b := New([]string{"id"})
	b.AppendRow(Row{Index: 9, Record: Record{"id": "y"}})

	out := Concat(a, b)

	if out.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", out.Len())
	}
	if out.Rows[0].Index != 0 || out.Rows[1].Index != 1 {
		t.Errorf("indices = %d, %d, want fresh 0, 1", out.Rows[0].Index, out.Rows[1].Index)
	}
	if out.Rows[0].Record["id"] != "x" || out.Rows[1].Record["id"] != "y" {
		t.Error("Concat reordered rows")
	}
}

func TestNilBatchLen(t *testing.T) {
	var b *Batch
	if b.Len() != 0 {
		t.Errorf("nil batch Len() = %d", b.Len())
	}
}
