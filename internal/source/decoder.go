package source

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/veridata/txn-curator/internal/tabular"
)

// Decoder turns raw batch bytes into an in-memory batch. It handles optional
// zstd decompression and CSV parsing. Values are kept as raw strings in the
// file's column order; the decoder never re-types a numeric-looking string.
type Decoder struct {
	zstdDecoder *zstd.Decoder
}

// NewDecoder creates a new batch decoder.
func NewDecoder() (*Decoder, error) {
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &Decoder{zstdDecoder: dec}, nil
}

// Close releases decoder resources.
func (d *Decoder) Close() {
	if d.zstdDecoder != nil {
		d.zstdDecoder.Close()
	}
}

// DecodeCompressed decodes a zstd-compressed CSV batch.
func (d *Decoder) DecodeCompressed(compressedData []byte) (*tabular.Batch, error) {
	raw, err := d.zstdDecoder.DecodeAll(compressedData, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	return d.DecodeCSV(raw)
}

// DecodeCSV decodes raw CSV bytes into a batch. The first line is the
// header; every data row must have the header's field count.
func (d *Decoder) DecodeCSV(data []byte) (*tabular.Batch, error) {
	r := csv.NewReader(bytes.NewReader(data))

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty csv: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	batch := tabular.New(header)
	for {
		line, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", batch.Len(), err)
		}
		rec := make(tabular.Record, len(header))
		for i, col := range header {
			rec[col] = line[i]
		}
		batch.Append(rec)
	}
	return batch, nil
}
