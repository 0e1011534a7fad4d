// Package dataset owns the persisted JSON document the dashboard renders:
// loading, atomic writes with backups, and the ownership-preserving merge.
package dataset

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/patchwatch/repoboard/models"
)

// Store reads and writes the dataset file. Single-writer: one sync run
// loads the file once at the start and writes it once at the end.
type Store struct {
	path string
}

// NewStore creates a Store for the dataset at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the dataset file location.
func (s *Store) Path() string { return s.path }

// Load reads the persisted dataset. A missing file is not an error: it
// yields an empty dataset for the first run. A malformed file is one,
// because merging against garbage would risk the curated fields, so the run
// must abort before any fetch.
func (s *Store) Load() (*models.Dataset, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &models.Dataset{Repositories: []models.RepositoryRecord{}}, nil
		}
		return nil, fmt.Errorf("reading dataset %s: %w", s.path, err)
	}

	var ds models.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parsing dataset %s: %w", s.path, err)
	}
	if ds.Repositories == nil {
		ds.Repositories = []models.RepositoryRecord{}
	}
	return &ds, nil
}

// Save writes the dataset atomically. The previous file, if any, is kept as
// a timestamped backup first, so a bad run never destroys the only copy of
// the curated data.
func (s *Store) Save(ds *models.Dataset) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating dataset directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		backup := fmt.Sprintf("%s.bak-%s", s.path, time.Now().UTC().Format("20060102-150405"))
		if err := copyFile(s.path, backup); err != nil {
			return fmt.Errorf("backing up dataset: %w", err)
		}
		slog.Debug("Backed up previous dataset", "backup", backup)
	}

	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return fmt.Errorf("serialising dataset: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing dataset: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing dataset: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
