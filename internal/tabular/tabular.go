// Package tabular holds the in-memory batch representation shared by the
// generator, the curator core, and the storage boundary.
package tabular

// Record maps field names to raw scalar values exactly as they arrived from
// storage. Values stay strings until the validator coerces them against the
// schema; the I/O layers never re-type them.
type Record map[string]string

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Row pairs a record with its original zero-based position in the source
// batch. The index survives partitioning so every output row is traceable
// back to its input line.
type Row struct {
	Index  int
	Record Record
}

// Batch is an ordered sequence of rows plus the column order they arrived
// with. A batch is built once, consumed once, and never mutated in place by
// the curator core.
type Batch struct {
	Columns []string
	Rows    []Row
}

// New creates an empty batch with the given column order.
func New(columns []string) *Batch {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Batch{Columns: cols}
}

// Append adds a record as the next row, assigning its provenance index.
func (b *Batch) Append(rec Record) {
	b.Rows = append(b.Rows, Row{Index: len(b.Rows), Record: rec})
}

// AppendRow adds a row keeping its existing provenance index.
func (b *Batch) AppendRow(row Row) {
	b.Rows = append(b.Rows, row)
}

// Len returns the number of rows.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Rows)
}

// Concat returns a new batch containing a's rows followed by b's rows,
// re-indexed in order. Column order is taken from a.
func Concat(a, b *Batch) *Batch {
	out := New(a.Columns)
	for _, row := range a.Rows {
		out.Append(row.Record)
	}
	for _, row := range b.Rows {
		out.Append(row.Record)
	}
	return out
}
