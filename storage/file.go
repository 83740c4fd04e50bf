package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/camden-git/familytreebackend/family"
)

// FileAdapter keeps the tree in a single JSON file.
type FileAdapter struct {
	Path string
}

func NewFileAdapter(path string) *FileAdapter {
	return &FileAdapter{Path: path}
}

func (a *FileAdapter) Load() (family.People, bool, error) {
	data, err := os.ReadFile(a.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", a.Path, err)
	}
	people, err := decode(data)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load %s: %w", a.Path, err)
	}
	return people, true, nil
}

// Save writes to a temp file in the same directory and renames it over Path.
func (a *FileAdapter) Save(people family.People) error {
	data, err := encode(people)
	if err != nil {
		return err
	}
	dir := filepath.Dir(a.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(a.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), a.Path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", a.Path, err)
	}
	return nil
}

func (a *FileAdapter) Clear() error {
	if err := os.Remove(a.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", a.Path, err)
	}
	return nil
}
