package driving

import (
	"context"

	"github.com/custodia-labs/hub/internal/core/domain"
)

// ReflectService describes connector nodes for discovery.
type ReflectService interface {
	// Reflect resolves path under the connector and describes the node.
	Reflect(ctx context.Context, connectorID, path string, user domain.User, urls domain.URLBuilder) (domain.Descriptor, error)
}

// QueryService lists entity sets.
type QueryService interface {
	// Query returns one page of the entity set at path.
	// Returns ErrUnsupportedOperation if path is not an entity set.
	Query(
		ctx context.Context,
		connectorID, path string,
		filter domain.Filter,
		opts domain.ListOptions,
		user domain.User,
		pageURL domain.PageURLBuilder,
	) (*domain.Page, error)
}

// InvokeService runs connector actions.
type InvokeService interface {
	// Invoke validates args and runs the action at path.
	Invoke(ctx context.Context, connectorID, path string, args map[string]any, user domain.User) (any, error)
}

// DataService writes records into entity sets through their insert and
// update actions.
type DataService interface {
	// Insert creates a record in the entity set at path.
	Insert(ctx context.Context, connectorID, path string, properties map[string]any, user domain.User) (any, error)

	// Update sets properties on every record matching keys. With
	// createOrUpdate, a record is inserted when nothing matched.
	Update(
		ctx context.Context,
		connectorID, path string,
		keys, properties map[string]any,
		createOrUpdate bool,
		user domain.User,
	) (any, error)
}

// PollService polls pollable events and advances their stored cursors.
type PollService interface {
	// Poll fetches new occurrences of the event at path. Polls of the same
	// event never overlap; the cursor is saved only on success.
	Poll(ctx context.Context, connectorID, path string) ([]domain.Payload, error)

	// Reset forgets the stored cursor of the event at path.
	Reset(ctx context.Context, connectorID, path string) error
}

// NotifyService accepts inbound event notifications.
type NotifyService interface {
	// Notify authenticates token against the connector secret, checks that
	// path is an event and enqueues body. Returns ErrUnauthorized before any
	// other check when the token does not match.
	Notify(ctx context.Context, connectorID, path, token string, body []byte) (*domain.NotifyMessage, error)
}

// ConnectorService exposes connector discovery.
type ConnectorService interface {
	// List returns the connectors visible to user, without secrets.
	List(ctx context.Context, user domain.User) ([]domain.Connector, error)

	// Kinds returns the supported connector kinds.
	Kinds() []string
}

// QueueService inspects and acknowledges queued notifications.
type QueueService interface {
	// Pending returns up to limit unacknowledged messages, oldest first.
	Pending(ctx context.Context, limit int) ([]domain.NotifyMessage, error)

	// Ack marks a message as delivered. Returns ErrNotFound for unknown ids.
	Ack(ctx context.Context, id string) error
}
