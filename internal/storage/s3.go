package storage

import (
	"context"
	"fmt"
	"net/url"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/s3blob" // S3 driver
)

// S3Store writes batch files to S3-compatible storage.
type S3Store struct {
	bucket     *blob.Bucket
	bucketName string
	prefix     string
}

// NewS3Store creates a new S3-compatible store.
// Works with AWS S3, Backblaze B2, Cloudflare R2, and MinIO.
func NewS3Store(bucketName, prefix, endpoint, region string) (*S3Store, error) {
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

	return &S3Store{
		bucket:     bucket,
		bucketName: bucketName,
		prefix:     prefix,
	}, nil
}

// WriteBatch writes batch bytes to S3.
func (s *S3Store) WriteBatch(ctx context.Context, ref BatchRef, data []byte) error {
	return writeBlob(ctx, s.bucket, ref.Path(s.prefix), data)
}

// WriteManifest writes the run manifest to S3.
func (s *S3Store) WriteManifest(ctx context.Context, ref BatchRef, manifest *Manifest) error {
	data, err := manifest.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return writeBlob(ctx, s.bucket, ref.ManifestPath(s.prefix), data)
}

// Exists checks if a batch file already exists in S3.
func (s *S3Store) Exists(ctx context.Context, ref BatchRef) (bool, error) {
	return s.bucket.Exists(ctx, ref.Path(s.prefix))
}

// URI returns the canonical URI for the given key.
func (s *S3Store) URI(key string) string {
	return fmt.Sprintf("s3://%s/%s", s.bucketName, key)
}

// Close releases the bucket handle.
func (s *S3Store) Close() error {
	return s.bucket.Close()
}
