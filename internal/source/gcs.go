package source

import (
	"context"
	"fmt"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/gcsblob" // GCS driver

	"github.com/veridata/txn-curator/internal/tabular"
)

// GCSSource reads raw batch files from Google Cloud Storage.
type GCSSource struct {
	bucket  *blob.Bucket
	prefix  string
	decoder *Decoder
}

// NewGCSSource creates a new GCS source.
func NewGCSSource(bucketName, prefix string) (*GCSSource, error) {
	ctx := context.Background()

	bucket, err := blob.OpenBucket(ctx, fmt.Sprintf("gs://%s", bucketName))
	if err != nil {
		return nil, fmt.Errorf("open GCS bucket %s: %w", bucketName, err)
	}

	decoder, err := NewDecoder()
	if err != nil {
		bucket.Close()
		return nil, fmt.Errorf("create decoder: %w", err)
	}

	return &GCSSource{
		bucket:  bucket,
		prefix:  prefix,
		decoder: decoder,
	}, nil
}

// Read loads the raw batch for a run-date from GCS.
func (s *GCSSource) Read(ctx context.Context, runDate string) (*tabular.Batch, error) {
	return readBucket(ctx, s.bucket, s.decoder, s.prefix, runDate)
}

// Close releases the bucket handle and decoder.
func (s *GCSSource) Close() error {
	s.decoder.Close()
	return s.bucket.Close()
}

// readBucket fetches the raw batch object, preferring the plain CSV key and
// falling back to the zstd variant.
func readBucket(ctx context.Context, bucket *blob.Bucket, dec *Decoder, prefix, runDate string) (*tabular.Batch, error) {
	key := rawKey(prefix, runDate, false)
	exists, err := bucket.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", key, err)
	}
	if exists {
		data, err := bucket.ReadAll(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		return dec.DecodeCSV(data)
	}

	zkey := rawKey(prefix, runDate, true)
	exists, err = bucket.Exists(ctx, zkey)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", zkey, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	data, err := bucket.ReadAll(ctx, zkey)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", zkey, err)
	}
	return dec.DecodeCompressed(data)
}
