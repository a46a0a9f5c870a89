// Package todo is the task store queried and updated by the orchestrator.
//
// Items live outside the epic context on purpose: the context file maps to
// one epic, items are queried by status, never embedded.
package todo

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an item ID does not exist in the store.
var ErrNotFound = errors.New("todo item not found")

// Status is the lifecycle state of a todo item.
type Status string

const (
	StatusOpen      Status = "open"
	StatusCompleted Status = "completed"
	StatusClosed    Status = "closed"
)

// Item is one unit of work tracked for an epic.
type Item struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// IsOpen returns true if the item status is open.
func (i *Item) IsOpen() bool {
	return i.Status == StatusOpen
}

// Add creates an open item with a fresh ID and persists it.
func (s *Store) Add(title string) (*Item, error) {
	if title == "" {
		return nil, fmt.Errorf("todo title cannot be empty")
	}

	items, err := s.load()
	if err != nil {
		return nil, err
	}

	item := Item{
		ID:        uuid.NewString(),
		Title:     title,
		Status:    StatusOpen,
		CreatedAt: time.Now().UTC(),
	}
	items = append(items, item)

	if err := s.save(items); err != nil {
		return nil, err
	}
	return &item, nil
}

// List returns all items in insertion order.
func (s *Store) List() ([]Item, error) {
	return s.load()
}

// ListByStatus returns the items with the given status, in insertion order.
func (s *Store) ListByStatus(status Status) ([]Item, error) {
	items, err := s.load()
	if err != nil {
		return nil, err
	}

	var filtered []Item
	for _, item := range items {
		if item.Status == status {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

// Complete marks an item completed.
func (s *Store) Complete(id string) error {
	return s.SetStatus(id, StatusCompleted)
}

// SetStatus updates the status of one item.
func (s *Store) SetStatus(id string, status Status) error {
	items, err := s.load()
	if err != nil {
		return err
	}

	for i := range items {
		if items[i].ID == id {
			items[i].Status = status
			return s.save(items)
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}
