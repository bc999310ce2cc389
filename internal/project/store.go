package project

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

var (
	ErrNotFound    = errors.New("project document not found")
	ErrInvalidJSON = errors.New("invalid JSON")
)

// ReadRaw reads a document from disk without imposing any shape on it. The
// returned value is whatever encoding/json produced and must be treated as
// untrusted until validated.
func ReadRaw(path string) (any, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, nil, fmt.Errorf("read project document: %w", err)
	}

	raw, err := ParseRaw(data)
	if err != nil {
		return nil, data, err
	}
	return raw, data, nil
}

// ParseRaw decodes arbitrary JSON. Trailing data after the first value is an
// error.
func ParseRaw(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after document", ErrInvalidJSON)
	}
	return raw, nil
}

// Decode converts document bytes into the typed model. Callers validate
// first; Decode only fails on shapes encoding/json itself rejects.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode project document: %w", err)
	}
	if doc.Tracks == nil {
		doc.Tracks = []Track{}
	}
	if doc.MediaFiles == nil {
		doc.MediaFiles = []MediaAsset{}
	}
	if doc.TimelineClips == nil {
		doc.TimelineClips = []TimelineClip{}
	}
	return &doc, nil
}

// Load reads and decodes a document without validating it.
func Load(path string) (*Document, error) {
	_, data, err := ReadRaw(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Save writes the document atomically. A sibling lock file serialises
// concurrent writers from separate processes.
func Save(path string, doc *Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create project directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock project document: %w", err)
	}
	defer lock.Unlock()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode project document: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), ".project-*.json")
	if err != nil {
		return fmt.Errorf("create temp document: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp document: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace project document: %w", err)
	}
	return nil
}
