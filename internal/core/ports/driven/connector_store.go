package driven

import (
	"context"

	"github.com/custodia-labs/hub/internal/core/domain"
)

// ConnectorStore provides read access to connector configuration records.
// Creating and editing records is outside the hub's scope.
type ConnectorStore interface {
	// Get retrieves a connector by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.Connector, error)

	// List returns all connectors.
	List(ctx context.Context) ([]domain.Connector, error)
}
