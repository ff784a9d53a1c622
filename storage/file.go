package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"eduadmin-client/utils/logger"
)

// FileStore is a KeyValueStore persisted as a single JSON document on disk.
// Every write rewrites the file; the record set is a handful of small session
// entries, so this stays cheap.
type FileStore struct {
	mu    sync.Mutex
	path  string
	items map[string]string
}

// NewFileStore opens (or creates) the store at the given path. A missing or
// empty file yields an empty store. A corrupt file is set aside with a
// warning and the store starts empty: the records here are a session cache,
// and losing them means a re-login, not a reason to refuse to boot.
func NewFileStore(path string, log logger.Logger) (*FileStore, error) {
	s := &FileStore{
		path:  path,
		items: make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}

	if err := json.Unmarshal(data, &s.items); err != nil {
		log.Warnf("Store file %s is corrupt (%v), starting from an empty record set", path, err)
		s.items = make(map[string]string)
		if renameErr := os.Rename(path, path+".corrupt"); renameErr != nil && !os.IsNotExist(renameErr) {
			log.Warnf("Failed to set corrupt store file aside: %v", renameErr)
		}
	}

	return s, nil
}

func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, found := s.items[key]
	return value, found, nil
}

func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = value
	return s.flush()
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, key)
	return s.flush()
}

// flush writes the current record set to disk. Caller must hold the mutex.
// The write goes through a temp file and rename so a crash mid-write cannot
// leave a half-written store behind.
func (s *FileStore) flush() error {
	data, err := json.MarshalIndent(s.items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}

	return nil
}
