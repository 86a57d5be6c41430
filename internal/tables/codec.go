package tables

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// ComputeChecksum computes a SHA256 checksum over output bytes, in the
// "sha256:<hex>" form recorded in manifests and catalog rows.
func ComputeChecksum(data []byte) string {
	hash := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(hash[:])
}

// VerifyChecksum verifies that data matches the expected checksum.
func VerifyChecksum(data []byte, expected string) bool {
	return ComputeChecksum(data) == expected
}

// CompressZstd compresses output bytes with zstd, for stores configured with
// compression enabled. The matching decompression lives in the source
// decoder.
func CompressZstd(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}
