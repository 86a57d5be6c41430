package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore writes batch files to the local filesystem.
type LocalStore struct {
	baseDir string
	prefix  string
}

// NewLocalStore creates a new local filesystem store.
func NewLocalStore(baseDir, prefix string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create base directory %s: %w", baseDir, err)
	}

	return &LocalStore{
		baseDir: baseDir,
		prefix:  prefix,
	}, nil
}

// WriteBatch writes batch bytes to the local filesystem.
func (s *LocalStore) WriteBatch(ctx context.Context, ref BatchRef, data []byte) error {
	return s.writeAtomic(filepath.Join(s.baseDir, ref.Path(s.prefix)), data)
}

// WriteManifest writes the run manifest to the local filesystem.
func (s *LocalStore) WriteManifest(ctx context.Context, ref BatchRef, manifest *Manifest) error {
	data, err := manifest.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return s.writeAtomic(filepath.Join(s.baseDir, ref.ManifestPath(s.prefix)), data)
}

// writeAtomic writes via temp file + rename so no partial batch is ever
// visible at the canonical path.
func (s *LocalStore) writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tempPath := path + ".tmp"

	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("write temp file %s: %w", tempPath, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("rename %s to %s: %w", tempPath, path, err)
	}

	return nil
}

// Exists checks if a batch file already exists.
func (s *LocalStore) Exists(ctx context.Context, ref BatchRef) (bool, error) {
	path := filepath.Join(s.baseDir, ref.Path(s.prefix))
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// URI returns the canonical URI for the given key.
func (s *LocalStore) URI(key string) string {
	absPath := filepath.Join(s.baseDir, key)
	return "file://" + absPath
}

// Close is a no-op for local storage.
func (s *LocalStore) Close() error {
	return nil
}
