package store

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

	"github.com/jkaninda/resourcebot/internal/domain"
)

// JSONStore persists each collection as a flat JSON file in a data directory
// (pending.json, approved.json). It is the default backend and matches the
// layout the bot has always used on disk.
//
// A single store-level mutex serializes every Load/Save/Update, so two
// concurrently handled messages cannot interleave their load→mutate→save
// sections and silently drop a write.
type JSONStore struct {
	mu     sync.Mutex
	dir    string
	logger *slog.Logger
}

// NewJSONStore creates a JSON file store rooted at dir, creating it if needed.
func NewJSONStore(dir string, logger *slog.Logger) (*JSONStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("creating data directory %s: %w", dir, err)
	}
	return &JSONStore{dir: dir, logger: logger}, nil
}

func (s *JSONStore) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

// Load implements Store.
func (s *JSONStore) Load(_ context.Context, collection string) (map[string]domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(collection)
}

func (s *JSONStore) load(collection string) (map[string]domain.Record, error) {
	data, err := os.ReadFile(s.path(collection))
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("collection file missing, treating as empty", slog.String("collection", collection))
		return map[string]domain.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading collection %s: %w", collection, err)
	}

	records := map[string]domain.Record{}
	if len(data) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding collection %s: %w", collection, err)
	}
	return records, nil
}

// Save implements Store. The collection file is replaced wholesale via a
// temp-file rename so a crash mid-write never leaves a truncated file.
func (s *JSONStore) Save(_ context.Context, collection string, records map[string]domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(collection, records)
}

func (s *JSONStore) save(collection string, records map[string]domain.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding collection %s: %w", collection, err)
	}

	path := s.path(collection)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0640); err != nil {
		return fmt.Errorf("writing collection %s: %w", collection, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing collection %s: %w", collection, err)
	}
	return nil
}

// Update implements Store.
func (s *JSONStore) Update(_ context.Context, collection string, fn func(map[string]domain.Record) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(collection)
	if err != nil {
		return err
	}
	if !fn(records) {
		return nil
	}
	return s.save(collection, records)
}

// Close implements Store.
func (s *JSONStore) Close() error { return nil }
