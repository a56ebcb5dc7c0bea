package services

import (
	"context"

	"github.com/custodia-labs/hub/internal/core/domain"
	"github.com/custodia-labs/hub/internal/core/ports/driving"
	"github.com/custodia-labs/hub/internal/logger"
)

// Ensure DataService implements the interface.
var _ driving.DataService = (*DataService)(nil)

// Names of the record actions entity sets expose for data writes.
const (
	InsertAction = "insert"
	UpdateAction = "update"
)

// DataService maps record writes on entity sets to their insert and
// update actions, so writes are validated like any other invocation.
type DataService struct {
	invoker *InvokeService
}

// NewDataService creates a new data service on top of an invoke service.
func NewDataService(invoker *InvokeService) *DataService {
	return &DataService{invoker: invoker}
}

// Insert creates a record in the entity set at path.
func (s *DataService) Insert(
	ctx context.Context,
	connectorID, path string,
	properties map[string]any,
	user domain.User,
) (any, error) {
	args := map[string]any{"properties": orEmpty(properties)}
	return s.invoker.invoke(ctx, connectorID, domain.ParsePath(path).Action(InsertAction), args, user)
}

// Update sets properties on every record matching keys. With
// createOrUpdate, properties are inserted as a new record when no record
// matched.
func (s *DataService) Update(
	ctx context.Context,
	connectorID, path string,
	keys, properties map[string]any,
	createOrUpdate bool,
	user domain.User,
) (any, error) {
	args := map[string]any{"keys": orEmpty(keys), "properties": orEmpty(properties)}
	result, err := s.invoker.invoke(ctx, connectorID, domain.ParsePath(path).Action(UpdateAction), args, user)
	if err != nil {
		return nil, err
	}

	if !createOrUpdate {
		return result, nil
	}
	if bulk, ok := result.(*domain.BulkResult); ok && bulk.Matched == 0 {
		logger.Debug("update %s/%s matched nothing, inserting", connectorID, path)
		return s.Insert(ctx, connectorID, path, properties, user)
	}
	return result, nil
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
