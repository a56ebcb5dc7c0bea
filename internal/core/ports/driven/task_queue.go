package driven

import (
	"context"

	"github.com/custodia-labs/hub/internal/core/domain"
)

// TaskQueue accepts notifications for asynchronous dispatch to subscribers.
type TaskQueue interface {
	// Enqueue stores msg for delivery. Messages are delivered at least once.
	Enqueue(ctx context.Context, msg domain.NotifyMessage) error

	// Dequeue returns up to limit undelivered messages, oldest first.
	Dequeue(ctx context.Context, limit int) ([]domain.NotifyMessage, error)

	// Ack marks the message as delivered.
	Ack(ctx context.Context, id string) error
}
