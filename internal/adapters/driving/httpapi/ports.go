// Package httpapi exposes the hub over HTTP.
//
// Routes:
//
//	GET    /api/connectors
//	GET    /api/reflect/connectors/{id}[/{path}]
//	GET    /api/data/connectors/{id}/{path}       list an entity set
//	POST   /api/data/connectors/{id}/{path}       insert a record
//	PUT    /api/data/connectors/{id}/{path}       update matching records
//	POST   /api/invoke/connectors/{id}/{path}
//	POST   /api/poll/connectors/{id}/{path}
//	DELETE /api/poll/connectors/{id}/{path}       reset the event cursor
//	POST   /api/notify/connectors/{id}/{path}     authenticated by X-Hub-Token
//	GET    /metrics
//
// The caller's identity is read from the X-Hub-User header, which the
// fronting authentication proxy sets.
package httpapi

import (
	"errors"

	"github.com/custodia-labs/hub/internal/core/ports/driving"
	"github.com/custodia-labs/hub/internal/metrics"
)

// ErrMissingReflectService is returned when the reflect service is not provided.
var ErrMissingReflectService = errors.New("httpapi: reflect service is required")

// Ports aggregates the driving ports served over HTTP.
// Routes whose port is nil respond 501.
type Ports struct {
	Reflect    driving.ReflectService
	Query      driving.QueryService
	Data       driving.DataService
	Invoke     driving.InvokeService
	Poll       driving.PollService
	Notify     driving.NotifyService
	Connectors driving.ConnectorService
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p.Reflect == nil {
		return ErrMissingReflectService
	}
	return nil
}

// Options configures the HTTP adapter.
type Options struct {
	// BaseURL prefixes generated links. Empty derives it from each request.
	BaseURL string

	// Metrics receives request counts and serves /metrics. May be nil.
	Metrics *metrics.Recorder
}
