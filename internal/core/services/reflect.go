package services

import (
	"context"
	"time"

	"github.com/custodia-labs/hub/internal/core/domain"
	"github.com/custodia-labs/hub/internal/core/engine"
	"github.com/custodia-labs/hub/internal/core/ports/driven"
	"github.com/custodia-labs/hub/internal/core/ports/driving"
	"github.com/custodia-labs/hub/internal/logger"
	"github.com/custodia-labs/hub/internal/metrics"
)

// Ensure ReflectService implements the interface.
var _ driving.ReflectService = (*ReflectService)(nil)

// ReflectService describes connector nodes.
type ReflectService struct {
	locator
	metrics *metrics.Recorder
}

// NewReflectService creates a new reflect service.
func NewReflectService(connectors driven.ConnectorStore, factory driven.ConnectorFactory, recorder *metrics.Recorder) *ReflectService {
	return &ReflectService{
		locator: locator{connectors: connectors, factory: factory},
		metrics: recorder,
	}
}

// Reflect resolves path under the connector and describes the node.
func (s *ReflectService) Reflect(
	ctx context.Context,
	connectorID, path string,
	user domain.User,
	urls domain.URLBuilder,
) (desc domain.Descriptor, err error) {
	started := time.Now()
	var connector *domain.Connector
	defer func() { s.metrics.ObserveOperation("reflect", kindOf(connector), started, err) }()

	logger.Debug("reflect %s/%s", connectorID, path)

	connector, node, err := s.locate(ctx, connectorID, domain.ParsePath(path), user)
	if err != nil {
		return nil, err
	}
	return engine.Reflect(ctx, node, user, urls)
}
