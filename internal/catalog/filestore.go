package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"sci-cast/internal/models"
)

// FileStore keeps the catalog in one JSON file. A missing file reads as
// an empty catalog, never an error.
type FileStore struct {
	path string
}

// NewFileStore builds a FileStore at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Read loads the catalog from disk.
func (s *FileStore) Read() ([]models.Podcast, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read catalog %s: %w", s.path, err)
	}

	var podcasts []models.Podcast
	if err := json.Unmarshal(data, &podcasts); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", s.path, err)
	}
	return podcasts, nil
}

// Write replaces the catalog file, creating parent directories on first
// use.
func (s *FileStore) Write(podcasts []models.Podcast) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create catalog dir: %w", err)
	}

	data, err := json.MarshalIndent(podcasts, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write catalog %s: %w", s.path, err)
	}
	return nil
}
