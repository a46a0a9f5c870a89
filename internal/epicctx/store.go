package epicctx

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultDir is the repository-relative directory for stride state.
const DefaultDir = ".stride"

// contextFile is the file name of the persisted epic context.
const contextFile = "context.json"

// Store reads and writes the epic context file.
type Store struct {
	dir string
}

// NewStore creates a store rooted at the default state directory.
func NewStore() *Store {
	return NewStoreWithDir(DefaultDir)
}

// NewStoreWithDir creates a store rooted at the given directory.
func NewStoreWithDir(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store's directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the full path of the context file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, contextFile)
}

// Load returns the persisted context, or an empty one if the file is absent.
func (s *Store) Load() (*EpicContext, error) {
	data, err := os.ReadFile(s.Path())
	if os.IsNotExist(err) {
		return &EpicContext{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read context file: %w", err)
	}

	var ec EpicContext
	if err := json.Unmarshal(data, &ec); err != nil {
		return nil, fmt.Errorf("parse context file %s: %w", s.Path(), err)
	}
	return &ec, nil
}

// Save overwrites the context file wholesale. The write is atomic: content
// goes to a temp file first and is renamed into place, so a crash never
// leaves a truncated context behind.
func (s *Store) Save(ec *EpicContext) error {
	if ec == nil {
		return fmt.Errorf("cannot save nil context")
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := json.MarshalIndent(ec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal context: %w", err)
	}

	tmp := s.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write context file: %w", err)
	}
	if err := os.Rename(tmp, s.Path()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace context file: %w", err)
	}
	return nil
}

// Remove deletes the context file. Removing an absent file is not an error.
func (s *Store) Remove() error {
	err := os.Remove(s.Path())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove context file: %w", err)
	}
	return nil
}

// Exists reports whether a context file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.Path())
	return err == nil
}
