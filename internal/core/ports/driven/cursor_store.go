package driven

import (
	"context"

	"github.com/custodia-labs/hub/internal/core/domain"
)

// CursorStore persists event cursors between polls.
type CursorStore interface {
	// Get returns the cursor for key, or "" if the event was never polled.
	Get(ctx context.Context, key domain.CursorKey) (domain.EventCursor, error)

	// Set stores the cursor for key.
	Set(ctx context.Context, key domain.CursorKey, cursor domain.EventCursor) error

	// Delete removes the cursor for key so the next poll starts afresh.
	Delete(ctx context.Context, key domain.CursorKey) error
}

// CursorLocker serialises polls of one key across processes.
// It is optionally implemented by shared CursorStores.
type CursorLocker interface {
	// Lock blocks until the lease for key is held or ctx is done.
	// The returned function releases the lease.
	Lock(ctx context.Context, key domain.CursorKey) (unlock func(), err error)
}
