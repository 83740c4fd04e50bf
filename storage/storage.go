// Package storage persists whole family trees. Every backend reads and writes a
// complete snapshot; nothing is ever saved partially.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/camden-git/familytreebackend/family"
)

// ErrInvalidFormat is returned when imported bytes are not a tree document.
var ErrInvalidFormat = errors.New("invalid family tree format")

// Adapter is what the service needs from a storage backend.
type Adapter interface {
	// Load returns the saved tree. ok is false when nothing has been saved yet.
	Load() (people family.People, ok bool, err error)
	Save(people family.People) error
	Clear() error
}

// Export writes people as an indented JSON document.
func Export(w io.Writer, people family.People) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(people); err != nil {
		return fmt.Errorf("failed to export family tree: %w", err)
	}
	return nil
}

// ExportFileName is the download name for an export taken at t.
func ExportFileName(t time.Time) string {
	return fmt.Sprintf("family-tree-%s.json", t.Format("2006-01-02"))
}

// Import parses a document written by Export. Missing keys and nulls both mean
// "no relationship".
func Import(r io.Reader) (family.People, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read import: %w", err)
	}
	return decode(data)
}

func decode(data []byte) (family.People, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrInvalidFormat
	}
	var people family.People
	if err := json.Unmarshal(trimmed, &people); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	people.Normalize()
	return people, nil
}

func encode(people family.People) ([]byte, error) {
	data, err := json.Marshal(people)
	if err != nil {
		return nil, fmt.Errorf("failed to encode family tree: %w", err)
	}
	return data, nil
}
