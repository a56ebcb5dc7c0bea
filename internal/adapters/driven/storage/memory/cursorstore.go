package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/hub/internal/core/domain"
	"github.com/custodia-labs/hub/internal/core/ports/driven"
)

// Ensure CursorStore implements the interface.
var _ driven.CursorStore = (*CursorStore)(nil)

// CursorStore is an in-memory implementation of driven.CursorStore.
// Cursors are lost when the process exits.
type CursorStore struct {
	mu      sync.RWMutex
	cursors map[domain.CursorKey]domain.EventCursor
}

// NewCursorStore creates a new in-memory cursor store.
func NewCursorStore() *CursorStore {
	return &CursorStore{
		cursors: make(map[domain.CursorKey]domain.EventCursor),
	}
}

// Get returns the cursor for key, or "" if none is stored.
func (s *CursorStore) Get(_ context.Context, key domain.CursorKey) (domain.EventCursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursors[key], nil
}

// Set stores the cursor for key.
func (s *CursorStore) Set(_ context.Context, key domain.CursorKey, cursor domain.EventCursor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors[key] = cursor
	return nil
}

// Delete removes the cursor for key.
func (s *CursorStore) Delete(_ context.Context, key domain.CursorKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cursors, key)
	return nil
}
