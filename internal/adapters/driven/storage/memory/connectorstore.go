package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/hub/internal/core/domain"
	"github.com/custodia-labs/hub/internal/core/ports/driven"
)

// Ensure ConnectorStore implements the interface.
var _ driven.ConnectorStore = (*ConnectorStore)(nil)

// ConnectorStore is an in-memory implementation of driven.ConnectorStore.
type ConnectorStore struct {
	mu         sync.RWMutex
	connectors map[string]domain.Connector
}

// NewConnectorStore creates a new in-memory connector store holding connectors.
func NewConnectorStore(connectors ...domain.Connector) *ConnectorStore {
	s := &ConnectorStore{
		connectors: make(map[string]domain.Connector),
	}
	for _, c := range connectors {
		s.connectors[c.ID] = c
	}
	return s
}

// Save stores or updates a connector.
func (s *ConnectorStore) Save(_ context.Context, connector domain.Connector) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connectors[connector.ID] = connector
	return nil
}

// Get retrieves a connector by ID.
func (s *ConnectorStore) Get(_ context.Context, id string) (*domain.Connector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	connector, ok := s.connectors[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &connector, nil
}

// Delete removes a connector.
func (s *ConnectorStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.connectors, id)
	return nil
}

// List returns all connectors ordered by ID.
func (s *ConnectorStore) List(_ context.Context) ([]domain.Connector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Connector, 0, len(s.connectors))
	for _, connector := range s.connectors {
		result = append(result, connector)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}
