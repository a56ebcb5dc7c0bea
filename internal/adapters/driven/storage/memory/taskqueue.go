package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/hub/internal/core/domain"
	"github.com/custodia-labs/hub/internal/core/ports/driven"
)

// Ensure TaskQueue implements the interface.
var _ driven.TaskQueue = (*TaskQueue)(nil)

// TaskQueue is an in-memory FIFO implementation of driven.TaskQueue.
// Messages stay queued until acknowledged.
type TaskQueue struct {
	mu       sync.Mutex
	messages []domain.NotifyMessage
}

// NewTaskQueue creates a new in-memory task queue.
func NewTaskQueue() *TaskQueue {
	return &TaskQueue{}
}

// Enqueue appends msg. A message whose ID is already queued is ignored.
func (q *TaskQueue) Enqueue(_ context.Context, msg domain.NotifyMessage) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, m := range q.messages {
		if m.ID == msg.ID {
			return nil
		}
	}
	q.messages = append(q.messages, msg)
	return nil
}

// Dequeue returns up to limit unacknowledged messages, oldest first.
func (q *TaskQueue) Dequeue(_ context.Context, limit int) ([]domain.NotifyMessage, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if limit > len(q.messages) {
		limit = len(q.messages)
	}
	if limit < 0 {
		limit = 0
	}
	result := make([]domain.NotifyMessage, limit)
	copy(result, q.messages[:limit])
	return result, nil
}

// Ack removes the message with the given ID.
func (q *TaskQueue) Ack(_ context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, m := range q.messages {
		if m.ID == id {
			q.messages = append(q.messages[:i], q.messages[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("notification %s: %w", id, domain.ErrNotFound)
}

// Len returns the number of queued messages.
func (q *TaskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.messages)
}
