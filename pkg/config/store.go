package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore is a flat key/value map persisted as one JSON file.
//
// The whole map is rewritten on every change, so keys written by other
// versions of the tool survive.
type FileStore struct {
	path   string
	values map[string]any
}

// NewFileStore returns an empty store backed by path. Call Load to read it.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:   path,
		values: make(map[string]any),
	}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Exists reports whether the backing file exists.
func (s *FileStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load replaces the in-memory map with the file contents. A missing or
// empty file leaves the store empty.
func (s *FileStore) Load() error {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.values = make(map[string]any)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", s.path, err)
	}

	values := make(map[string]any)
	if len(bytes.TrimSpace(b)) > 0 {
		if err := json.Unmarshal(b, &values); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", s.path, err)
		}
	}
	// A file holding JSON null decodes to a nil map.
	if values == nil {
		values = make(map[string]any)
	}
	s.values = values
	return nil
}

// Get returns the stored value of key.
func (s *FileStore) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Values returns a shallow copy of the stored map.
func (s *FileStore) Values() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Set stores value under key and rewrites the file.
func (s *FileStore) Set(key string, value any) error {
	if s.values == nil {
		s.values = make(map[string]any)
	}
	s.values[key] = value
	return s.write()
}

// Delete removes key and rewrites the file. Deleting a missing key is a no-op.
func (s *FileStore) Delete(key string) error {
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.write()
}

// write serializes the map with tab indentation via a temp file then rename,
// creating the parent directory when needed.
func (s *FileStore) write() error {
	b, err := json.MarshalIndent(s.values, "", "\t")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	b = append(b, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}

	f, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to write config file %s: %w", s.path, err)
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write config file %s: %w", s.path, err)
	}
	if err := f.Chmod(0o600); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write config file %s: %w", s.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", s.path, err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", s.path, err)
	}
	return nil
}
