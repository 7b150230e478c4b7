// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package jsonfile implements storage.VectorStore as a single JSON file.
//
// The file holds a pretty-printed array of {"text", "embedding"} objects.
// There is no schema version; changing the layout breaks old files.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/poiesic/ragbot/core"
	"github.com/poiesic/ragbot/storage"
)

// DefaultPath is the store file used when none is configured.
const DefaultPath = "data-gemini.json"

// Store is a VectorStore backed by one JSON file.
// Save writes a sibling temp file and renames it over the target, so a
// failed save leaves the previous store intact.
type Store struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

var (
	_ storage.VectorStore = (*Store)(nil)
	_ storage.Locator     = (*Store)(nil)
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New returns a store at path. An empty path uses DefaultPath.
// The file is not touched until Save or Load.
func New(path string, opts ...Option) *Store {
	if path == "" {
		path = DefaultPath
	}
	s := &Store{
		path:   path,
		logger: slog.Default().With("component", "jsonfile-store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the path of the store file.
func (s *Store) Location() string {
	return s.path
}

// Save replaces the file contents with records.
func (s *Store) Save(ctx context.Context, records []core.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := core.ValidateRecords(records); err != nil {
		return err
	}
	if records == nil {
		records = []core.Record{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeAtomic(s.path, data); err != nil {
		s.logger.Error("failed to write vector store", "path", s.path, "err", err)
		return err
	}

	s.logger.Debug("saved vector store", "path", s.path, "records", len(records))
	return nil
}

// Load reads every record from the file.
func (s *Store) Load(ctx context.Context) ([]core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	data, err := os.ReadFile(s.path)
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", core.ErrStoreNotFound, s.path)
		}
		return nil, err
	}

	var records []core.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrStoreCorrupt, s.path, err)
	}
	if records == nil {
		return nil, fmt.Errorf("%w: %s: expected a JSON array", core.ErrStoreCorrupt, s.path)
	}
	if err := core.ValidateRecords(records); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrStoreCorrupt, s.path, err)
	}

	s.logger.Debug("loaded vector store", "path", s.path, "records", len(records))
	return records, nil
}

// writeAtomic writes data to a temp file next to path and renames it into place.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
