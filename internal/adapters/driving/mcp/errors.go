// Package mcp provides an MCP (Model Context Protocol) server adapter for the hub.
// It lets AI assistants browse connector trees, list entity sets, invoke
// actions and poll events.
package mcp

import "errors"

// ErrMissingReflectService is returned when the reflect service is not provided.
var ErrMissingReflectService = errors.New("mcp: reflect service is required")
