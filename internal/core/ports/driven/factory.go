package driven

import (
	"context"

	"github.com/custodia-labs/hub/internal/core/domain"
)

// ConnectorBuilder creates the root node of a connector.
// TokenProvider may be nil for deployments without delegated auth.
type ConnectorBuilder func(ctx context.Context, connector domain.Connector, tokenProvider TokenProvider) (domain.Entity, error)

// ConnectorFactory creates connector root nodes from configuration records.
// It maintains a registry of connector kinds and their builders.
type ConnectorFactory interface {
	// Root returns the root node for the given connector. The node is
	// built per call and holds no backend data between requests.
	// Returns ErrUnsupportedType if the connector kind is unknown and
	// ErrConnectorConfig if its settings are invalid.
	Root(ctx context.Context, connector domain.Connector) (domain.Entity, error)

	// Register adds a builder for the given kind.
	Register(kind string, builder ConnectorBuilder)

	// SupportedKinds returns all registered connector kinds.
	SupportedKinds() []string
}
