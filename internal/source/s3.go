package source

import (
	"context"
	"fmt"
	"net/url"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/s3blob" // S3 driver

	"github.com/veridata/txn-curator/internal/tabular"
)

// S3Source reads raw batch files from S3-compatible storage.
type S3Source struct {
	bucket  *blob.Bucket
	prefix  string
	decoder *Decoder
}

// NewS3Source creates a new S3-compatible source.
// Works with AWS S3, Backblaze B2, Cloudflare R2, and MinIO.
func NewS3Source(bucketName, prefix, endpoint, region string) (*S3Source, error) {
	ctx := context.Background()

	bucketURL := fmt.Sprintf("s3://%s", bucketName)

	params := url.Values{}
	if region != "" {
		params.Set("region", region)
	}
	if endpoint != "" {
		params.Set("endpoint", endpoint)
		params.Set("s3ForcePathStyle", "true")
	}
	if len(params) > 0 {
		bucketURL = bucketURL + "?" + params.Encode()
	}

	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open S3 bucket %s: %w", bucketName, err)
	}

	decoder, err := NewDecoder()
	if err != nil {
		bucket.Close()
		return nil, fmt.Errorf("create decoder: %w", err)
	}

	return &S3Source{
		bucket:  bucket,
		prefix:  prefix,
		decoder: decoder,
	}, nil
}

// Read loads the raw batch for a run-date from S3.
func (s *S3Source) Read(ctx context.Context, runDate string) (*tabular.Batch, error) {
	return readBucket(ctx, s.bucket, s.decoder, s.prefix, runDate)
}

// Close releases the bucket handle and decoder.
func (s *S3Source) Close() error {
	s.decoder.Close()
	return s.bucket.Close()
}
