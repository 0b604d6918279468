package invoice

import (
	"fmt"
	"os"
	"path/filepath"
)

// Storage holds the uploaded invoice documents and their sidecars (the
// recognized .txt and the extracted .json record). Names are flat; the
// service keys them by invoice number.
type Storage interface {
	// Save stores a document or sidecar and returns the name it was
	// stored under
	Save(filename string, data []byte) (string, error)

	// Get retrieves a stored document or sidecar by name
	Get(path string) ([]byte, error)

	// Delete removes a stored document or sidecar
	Delete(path string) error
}

// LocalStorage implements the Storage interface on a single local directory
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new LocalStorage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	return &LocalStorage{
		basePath: basePath,
	}, nil
}

// Save writes a document under the storage directory. Invoice numbers and
// upload names can carry path separators, so names are flattened to their
// base to keep every file inside the directory.
func (l *LocalStorage) Save(filename string, data []byte) (string, error) {
	name := filepath.Base(filename)
	path := filepath.Join(l.basePath, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}
	return name, nil
}

// Get reads a stored document or sidecar
func (l *LocalStorage) Get(path string) ([]byte, error) {
	fullPath := filepath.Join(l.basePath, filepath.Base(path))
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

// Delete removes a stored document or sidecar
func (l *LocalStorage) Delete(path string) error {
	fullPath := filepath.Join(l.basePath, filepath.Base(path))
	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}
