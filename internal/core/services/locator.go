package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/hub/internal/core/domain"
	"github.com/custodia-labs/hub/internal/core/engine"
	"github.com/custodia-labs/hub/internal/core/ports/driven"
)

const unknownKind = "unknown"

// locator resolves (connector id, raw path) pairs to nodes.
type locator struct {
	connectors driven.ConnectorStore
	factory    driven.ConnectorFactory
}

// connector loads a connector record. Connectors the user may not see are
// reported as not found.
func (l *locator) connector(ctx context.Context, connectorID string, user *domain.User) (*domain.Connector, error) {
	if l.connectors == nil {
		return nil, fmt.Errorf("get connector: connector store not configured")
	}
	connector, err := l.connectors.Get(ctx, connectorID)
	if err != nil {
		return nil, fmt.Errorf("get connector %s: %w", connectorID, err)
	}
	if user != nil && !connector.VisibleTo(*user) {
		return nil, fmt.Errorf("get connector %s: %w", connectorID, domain.ErrNotFound)
	}
	return connector, nil
}

// resolve builds the connector's tree and resolves path in it.
func (l *locator) resolve(ctx context.Context, connector *domain.Connector, path domain.Path, user domain.User) (domain.Node, error) {
	if l.factory == nil {
		return nil, fmt.Errorf("build connector: connector factory not configured")
	}
	root, err := l.factory.Root(ctx, *connector)
	if err != nil {
		return nil, fmt.Errorf("build connector %s: %w", connector.ID, err)
	}
	return engine.Resolve(ctx, root, path, user)
}

// locate combines connector and resolve for user-facing operations.
func (l *locator) locate(ctx context.Context, connectorID string, path domain.Path, user domain.User) (*domain.Connector, domain.Node, error) {
	connector, err := l.connector(ctx, connectorID, &user)
	if err != nil {
		return nil, nil, err
	}
	node, err := l.resolve(ctx, connector, path, user)
	if err != nil {
		return connector, nil, err
	}
	return connector, node, nil
}

func kindOf(connector *domain.Connector) string {
	if connector == nil {
		return unknownKind
	}
	return connector.Kind
}
