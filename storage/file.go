package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/giygas/pharmacy-api/interfaces"
	"github.com/giygas/pharmacy-api/inventory"
	"github.com/giygas/pharmacy-api/logging"
)

// Compile-time check to ensure FileStore implements Persister interface
var _ interfaces.Persister = (*FileStore)(nil)

// FileStore keeps the inventory in a single text file
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: filepath.Clean(path)}
}

// Path returns the data file location
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the inventory. A missing file yields an empty inventory.
func (s *FileStore) Load() (*inventory.Index, error) {
	file, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		logging.Info("No inventory file found, starting empty", "path", s.path)
		return inventory.NewIndex(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("Failed to close inventory file", "error", err)
		}
	}()

	idx, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", s.path, err)
	}

	logging.Info("Inventory loaded", "path", s.path, "medicines", idx.Len())
	return idx, nil
}

// Save writes the inventory to a temporary file next to the target and
// renames it into place.
func (s *FileStore) Save(idx *inventory.Index) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		// no-op once renamed
		_ = os.Remove(tmpPath)
	}()

	if err := Encode(tmp, idx); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}

	logging.Debug("Inventory saved", "path", s.path, "medicines", idx.Len())
	return nil
}
