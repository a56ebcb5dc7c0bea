package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for hub resources.
	uriScheme = "hub://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing connectors.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "connectors",
		Name:        "connectors",
		Description: "Connectors visible to the current user",
		MIMEType:    "application/json",
	}, s.handleConnectorsResource)

	// Template for node descriptions.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "connectors/{connectorId}/{+path}",
		Name:        "node",
		Description: "Reflection of a connector node",
		MIMEType:    "application/json",
	}, s.handleNodeResource)
}

// handleConnectorsResource returns the visible connectors.
func (s *Server) handleConnectorsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Connectors == nil {
		return jsonResource(req.Params.URI, []any{})
	}

	connectors, err := s.ports.Connectors.List(ctx, s.ports.User)
	if err != nil {
		return nil, fmt.Errorf("listing connectors: %w", err)
	}

	type connectorInfo struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Kind string `json:"kind"`
		URI  string `json:"uri"`
	}

	infos := make([]connectorInfo, len(connectors))
	for i, c := range connectors {
		infos[i] = connectorInfo{
			ID:   c.ID,
			Name: c.Name,
			Kind: c.Kind,
			URI:  uriScheme + "connectors/" + c.ID,
		}
	}
	return jsonResource(req.Params.URI, infos)
}

// handleNodeResource reflects the node named by the URI.
func (s *Server) handleNodeResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	connectorID, path, ok := splitNodeURI(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	desc, err := s.ports.Reflect.Reflect(ctx, connectorID, path, s.ports.User, nodeURI(connectorID))
	if err != nil {
		return nil, fmt.Errorf("reflecting %s: %w", req.Params.URI, err)
	}
	return jsonResource(req.Params.URI, desc)
}

// splitNodeURI extracts the connector ID and path from
// hub://connectors/{connectorId}/{path}.
func splitNodeURI(uri string) (connectorID, path string, ok bool) {
	rest, found := strings.CutPrefix(uri, uriScheme+"connectors/")
	if !found || rest == "" {
		return "", "", false
	}
	connectorID, path, _ = strings.Cut(rest, "/")
	if connectorID == "" {
		return "", "", false
	}
	return connectorID, path, true
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
