package services

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/hub/internal/core/domain"
	"github.com/custodia-labs/hub/internal/core/ports/driven"
	"github.com/custodia-labs/hub/internal/core/ports/driving"
	"github.com/custodia-labs/hub/internal/logger"
	"github.com/custodia-labs/hub/internal/metrics"
)

// Ensure NotifyService implements the interface.
var _ driving.NotifyService = (*NotifyService)(nil)

// NotifyService accepts event notifications pushed by backends.
type NotifyService struct {
	locator
	queue   driven.TaskQueue
	metrics *metrics.Recorder
	now     func() time.Time
	newID   func() string
}

// NewNotifyService creates a new notify service.
func NewNotifyService(
	connectors driven.ConnectorStore,
	factory driven.ConnectorFactory,
	queue driven.TaskQueue,
	recorder *metrics.Recorder,
) *NotifyService {
	return &NotifyService{
		locator: locator{connectors: connectors, factory: factory},
		queue:   queue,
		metrics: recorder,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Notify authenticates and enqueues one notification. The token is checked
// before the path is looked at, so unauthenticated callers learn nothing
// about the connector's tree.
func (s *NotifyService) Notify(
	ctx context.Context,
	connectorID, path, token string,
	body []byte,
) (msg *domain.NotifyMessage, err error) {
	defer func() { s.metrics.Notification(err) }()

	if s.queue == nil {
		return nil, fmt.Errorf("notify: task queue not configured")
	}

	// 1. Authenticate against the connector secret
	connector, err := s.connector(ctx, connectorID, nil)
	if err != nil {
		return nil, err
	}
	if !TokensMatch(connector.SecretToken, token) {
		logger.Warn("notify %s/%s rejected: token mismatch", connectorID, path)
		return nil, fmt.Errorf("%w: invalid notify token for connector %s", domain.ErrUnauthorized, connectorID)
	}

	// 2. The path must address an event
	eventPath := domain.ParsePath(path)
	node, err := s.resolve(ctx, connector, eventPath, connector.Owner())
	if err != nil {
		return nil, err
	}
	if node.Kind() != domain.KindEvent {
		return nil, fmt.Errorf("%w: %s %q does not accept notifications", domain.ErrUnsupportedOperation, node.Kind(), node.Path())
	}

	// 3. Enqueue
	payload := json.RawMessage("{}")
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 {
		payload = append(json.RawMessage(nil), trimmed...)
	}

	msg = &domain.NotifyMessage{
		ID:          s.newID(),
		ConnectorID: connectorID,
		Path:        eventPath.String(),
		Payload:     payload,
		ReceivedAt:  s.now().UTC(),
	}
	if err := s.queue.Enqueue(ctx, *msg); err != nil {
		return nil, fmt.Errorf("enqueue notification: %w", err)
	}

	logger.Info("notify %s/%s enqueued as %s", connectorID, msg.Path, msg.ID)
	return msg, nil
}

// TokensMatch compares a presented token with a stored secret in constant
// time. An empty secret never matches.
func TokensMatch(secret, presented string) bool {
	if secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(presented)) == 1
}
