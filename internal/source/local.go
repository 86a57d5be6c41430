package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/veridata/txn-curator/internal/tabular"
)

// LocalSource reads raw batch files from the local filesystem.
type LocalSource struct {
	baseDir string
	prefix  string
	decoder *Decoder
}

// NewLocalSource creates a new local filesystem source.
func NewLocalSource(baseDir, prefix string) (*LocalSource, error) {
	info, err := os.Stat(baseDir)
	if err != nil {
		return nil, fmt.Errorf("invalid local path %s: %w", baseDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("local path %s is not a directory", baseDir)
	}

	decoder, err := NewDecoder()
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}

	return &LocalSource{
		baseDir: baseDir,
		prefix:  prefix,
		decoder: decoder,
	}, nil
}

// Read loads the raw batch for a run-date. The plain CSV is preferred; the
// zstd variant is tried when the plain file is absent.
func (s *LocalSource) Read(ctx context.Context, runDate string) (*tabular.Batch, error) {
	path := filepath.Join(s.baseDir, rawKey(s.prefix, runDate, false))
	data, err := os.ReadFile(path)
	if err == nil {
		return s.decoder.DecodeCSV(data)
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	zpath := filepath.Join(s.baseDir, rawKey(s.prefix, runDate, true))
	data, err = os.ReadFile(zpath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", zpath, err)
	}
	return s.decoder.DecodeCompressed(data)
}

// Close releases decoder resources.
func (s *LocalSource) Close() error {
	s.decoder.Close()
	return nil
}
