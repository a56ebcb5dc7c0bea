package mcp

import (
	"github.com/custodia-labs/hub/internal/core/domain"
	"github.com/custodia-labs/hub/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Reflect describes connector nodes.
	Reflect driving.ReflectService

	// Query lists entity sets.
	Query driving.QueryService

	// Invoke runs actions.
	Invoke driving.InvokeService

	// Poll polls events.
	Poll driving.PollService

	// Connectors lists the connectors visible to User.
	Connectors driving.ConnectorService

	// User is the identity every tool call runs as.
	User domain.User
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Reflect == nil {
		return ErrMissingReflectService
	}
	// The remaining ports are optional; their tools are not registered
	return nil
}
