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

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// QueryService lists entity sets through the query engine.
type QueryService struct {
	locator
	engine  *engine.QueryEngine
	metrics *metrics.Recorder
}

// NewQueryService creates a new query service. A zero pageSize defers to
// each entity set's default page size.
func NewQueryService(
	connectors driven.ConnectorStore,
	factory driven.ConnectorFactory,
	pageSize int,
	recorder *metrics.Recorder,
) *QueryService {
	return &QueryService{
		locator: locator{connectors: connectors, factory: factory},
		engine:  engine.NewQueryEngine(pageSize),
		metrics: recorder,
	}
}

// Query returns one page of the entity set at path.
func (s *QueryService) Query(
	ctx context.Context,
	connectorID, path string,
	filter domain.Filter,
	opts domain.ListOptions,
	user domain.User,
	pageURL domain.PageURLBuilder,
) (page *domain.Page, err error) {
	started := time.Now()
	var connector *domain.Connector
	defer func() { s.metrics.ObserveOperation("query", kindOf(connector), started, err) }()

	logger.Debug("query %s/%s page=%d filter=%v", connectorID, path, opts.Page, filter)

	connector, node, err := s.locate(ctx, connectorID, domain.ParsePath(path), user)
	if err != nil {
		return nil, err
	}
	set, ok := node.(domain.EntitySet)
	if !ok {
		return nil, fmt.Errorf("%w: %s %q cannot be listed", domain.ErrUnsupportedOperation, node.Kind(), node.Path())
	}
	return s.engine.List(ctx, set, filter, user, opts, pageURL)
}
