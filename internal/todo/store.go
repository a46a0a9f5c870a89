package todo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultPath is the repository-relative path of the todo store file.
const DefaultPath = ".stride/todos.json"

// Store is a JSON-file-backed todo store.
type Store struct {
	path string
}

// NewStore creates a store at the default path.
func NewStore() *Store {
	return NewStoreWithPath(DefaultPath)
}

// NewStoreWithPath creates a store backed by the given file.
func NewStoreWithPath(path string) *Store {
	return &Store{path: path}
}

// Path returns the store's file path.
func (s *Store) Path() string {
	return s.path
}

// load reads all items. An absent file means an empty store.
func (s *Store) load() ([]Item, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read todo store: %w", err)
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse todo store %s: %w", s.path, err)
	}
	return items, nil
}

// save rewrites the store file wholesale via a temp file and rename.
func (s *Store) save(items []Item) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create todo store directory: %w", err)
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal todo items: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write todo store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace todo store: %w", err)
	}
	return nil
}
