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

// Ensure InvokeService implements the interface.
var _ driving.InvokeService = (*InvokeService)(nil)

// InvokeService runs connector actions after validating their arguments.
type InvokeService struct {
	locator
	metrics *metrics.Recorder
}

// NewInvokeService creates a new invoke service.
func NewInvokeService(connectors driven.ConnectorStore, factory driven.ConnectorFactory, recorder *metrics.Recorder) *InvokeService {
	return &InvokeService{
		locator: locator{connectors: connectors, factory: factory},
		metrics: recorder,
	}
}

// Invoke validates args and runs the action at path.
func (s *InvokeService) Invoke(
	ctx context.Context,
	connectorID, path string,
	args map[string]any,
	user domain.User,
) (any, error) {
	return s.invoke(ctx, connectorID, domain.ParsePath(path), args, user)
}

func (s *InvokeService) invoke(
	ctx context.Context,
	connectorID string,
	path domain.Path,
	args map[string]any,
	user domain.User,
) (result any, err error) {
	started := time.Now()
	var connector *domain.Connector
	defer func() { s.metrics.ObserveOperation("invoke", kindOf(connector), started, err) }()

	connector, node, err := s.locate(ctx, connectorID, path, user)
	if err != nil {
		return nil, err
	}
	action, ok := node.(domain.Action)
	if !ok {
		return nil, fmt.Errorf("%w: %s %q cannot be invoked", domain.ErrUnsupportedOperation, node.Kind(), node.Path())
	}

	logger.Info("invoke %s/%s as %s", connectorID, path, user.Email)
	result, err = engine.Invoke(ctx, action, args, user)
	if err != nil {
		logger.Warn("invoke %s/%s failed: %v", connectorID, path, err)
		return nil, err
	}
	return result, nil
}
