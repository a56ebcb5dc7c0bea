package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/hub/internal/core/domain"
	"github.com/custodia-labs/hub/internal/core/ports/driven"
	"github.com/custodia-labs/hub/internal/core/ports/driving"
)

// Ensure ConnectorService implements the interface.
var _ driving.ConnectorService = (*ConnectorService)(nil)

// ConnectorService provides connector discovery.
type ConnectorService struct {
	connectors driven.ConnectorStore
	factory    driven.ConnectorFactory
}

// NewConnectorService creates a new connector service.
func NewConnectorService(connectors driven.ConnectorStore, factory driven.ConnectorFactory) *ConnectorService {
	return &ConnectorService{connectors: connectors, factory: factory}
}

// List returns the connectors visible to user sorted by name. Secrets and
// settings are stripped.
func (s *ConnectorService) List(ctx context.Context, user domain.User) ([]domain.Connector, error) {
	all, err := s.connectors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list connectors: %w", err)
	}

	visible := make([]domain.Connector, 0, len(all))
	for i := range all {
		c := all[i]
		if !c.VisibleTo(user) {
			continue
		}
		c.SecretToken = ""
		c.Settings = nil
		visible = append(visible, c)
	}
	sort.Slice(visible, func(i, j int) bool {
		if visible[i].Name != visible[j].Name {
			return visible[i].Name < visible[j].Name
		}
		return visible[i].ID < visible[j].ID
	})
	return visible, nil
}

// Kinds returns the supported connector kinds.
func (s *ConnectorService) Kinds() []string {
	if s.factory == nil {
		return nil
	}
	return s.factory.SupportedKinds()
}
