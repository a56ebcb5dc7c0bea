package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/hub/internal/core/domain"
	"github.com/custodia-labs/hub/internal/core/engine"
	"github.com/custodia-labs/hub/internal/core/ports/driven"
	"github.com/custodia-labs/hub/internal/core/ports/driving"
	"github.com/custodia-labs/hub/internal/logger"
	"github.com/custodia-labs/hub/internal/metrics"
)

// Ensure PollService implements the interfaces.
var (
	_ driving.PollService = (*PollService)(nil)
	_ driving.SinkPoller  = (*PollService)(nil)
)

// PollService polls events on behalf of their connector's owner and keeps
// their cursors. Polls of the same event never run concurrently.
type PollService struct {
	locator
	cursors driven.CursorStore
	locks   *keyedMutex
	metrics *metrics.Recorder
}

// NewPollService creates a new poll service.
func NewPollService(
	connectors driven.ConnectorStore,
	factory driven.ConnectorFactory,
	cursors driven.CursorStore,
	recorder *metrics.Recorder,
) *PollService {
	return &PollService{
		locator: locator{connectors: connectors, factory: factory},
		cursors: cursors,
		locks:   newKeyedMutex(),
		metrics: recorder,
	}
}

// Poll fetches new occurrences of the event at path and advances its cursor.
func (s *PollService) Poll(ctx context.Context, connectorID, path string) ([]domain.Payload, error) {
	var out []domain.Payload
	_, err := s.PollTo(ctx, connectorID, path, func(_ context.Context, payloads []domain.Payload) error {
		out = payloads
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PollTo fetches new occurrences of the event at path, hands them to sink
// and advances the cursor once sink has accepted them.
func (s *PollService) PollTo(ctx context.Context, connectorID, path string, sink driving.PayloadSink) (n int, err error) {
	started := time.Now()
	var connector *domain.Connector
	defer func() { s.metrics.ObserveOperation("poll", kindOf(connector), started, err) }()

	if s.cursors == nil {
		return 0, fmt.Errorf("poll: cursor store not configured")
	}

	// 1. Resolve the event as the connector's owner
	connector, err = s.connector(ctx, connectorID, nil)
	if err != nil {
		return 0, err
	}
	eventPath := domain.ParsePath(path)
	owner := connector.Owner()
	node, err := s.resolve(ctx, connector, eventPath, owner)
	if err != nil {
		return 0, err
	}
	event, ok := node.(domain.Event)
	if !ok {
		return 0, fmt.Errorf("%w: %s %q is not an event", domain.ErrUnsupportedOperation, node.Kind(), node.Path())
	}

	// 2. Serialise polls of this event, in-process and, when the store
	// supports it, across processes
	key := domain.CursorKey{ConnectorID: connectorID, EventPath: eventPath.String()}
	unlock, err := s.locks.Lock(ctx, key)
	if err != nil {
		return 0, err
	}
	defer unlock()

	if locker, ok := s.cursors.(driven.CursorLocker); ok {
		release, err := locker.Lock(ctx, key)
		if err != nil {
			return 0, fmt.Errorf("lock cursor %s: %w", key, err)
		}
		defer release()
	}

	// 3. Read, poll, deliver, and write back only once delivered
	cursor, err := s.cursors.Get(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("get cursor %s: %w", key, err)
	}

	logger.Debug("poll %s from cursor %q", key, cursor)
	next, payloads, err := engine.Poll(ctx, event, cursor, owner)
	if err != nil {
		logger.Warn("poll %s failed: %v", key, err)
		return 0, err
	}

	if err := sink(ctx, payloads); err != nil {
		logger.Warn("poll %s: delivery failed, cursor kept at %q: %v", key, cursor, err)
		return 0, err
	}

	if next != cursor {
		if err := s.cursors.Set(ctx, key, next); err != nil {
			return 0, fmt.Errorf("save cursor %s: %w", key, err)
		}
	}

	s.metrics.AddPayloads(key, len(payloads))
	logger.Info("poll %s produced %d payloads", key, len(payloads))
	return len(payloads), nil
}

// Reset forgets the stored cursor of the event at path.
func (s *PollService) Reset(ctx context.Context, connectorID, path string) error {
	if s.cursors == nil {
		return fmt.Errorf("reset: cursor store not configured")
	}
	key := domain.CursorKey{ConnectorID: connectorID, EventPath: domain.ParsePath(path).String()}

	unlock, err := s.locks.Lock(ctx, key)
	if err != nil {
		return err
	}
	defer unlock()

	return s.cursors.Delete(ctx, key)
}
