package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/hub/internal/core/domain"
	"github.com/custodia-labs/hub/internal/core/ports/driven"
	"github.com/custodia-labs/hub/internal/core/ports/driving"
)

// Ensure QueueService implements the interface.
var _ driving.QueueService = (*QueueService)(nil)

// DefaultQueueLimit applies when Pending is called without a limit.
const DefaultQueueLimit = 100

// QueueService exposes the notification queue to operators and dispatchers.
type QueueService struct {
	queue driven.TaskQueue
}

// NewQueueService creates a new queue service.
func NewQueueService(queue driven.TaskQueue) *QueueService {
	return &QueueService{queue: queue}
}

// Pending returns up to limit unacknowledged messages, oldest first.
func (s *QueueService) Pending(ctx context.Context, limit int) ([]domain.NotifyMessage, error) {
	if s.queue == nil {
		return nil, fmt.Errorf("pending: task queue not configured")
	}
	if limit <= 0 {
		limit = DefaultQueueLimit
	}
	msgs, err := s.queue.Dequeue(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("dequeue: %w", err)
	}
	return msgs, nil
}

// Ack marks a message as delivered.
func (s *QueueService) Ack(ctx context.Context, id string) error {
	if s.queue == nil {
		return fmt.Errorf("ack: task queue not configured")
	}
	if err := s.queue.Ack(ctx, id); err != nil {
		return fmt.Errorf("ack %s: %w", id, err)
	}
	return nil
}
