package mcp

import (
	"context"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/hub/internal/core/domain"
)

// NodeInput addresses a node in a connector tree.
type NodeInput struct {
	Connector string `json:"connector" jsonschema:"the connector id"`
	Path      string `json:"path,omitempty" jsonschema:"slash-separated node path; empty for the connector root"`
}

// QueryInput is the input schema for the query tool.
type QueryInput struct {
	Connector string            `json:"connector" jsonschema:"the connector id"`
	Path      string            `json:"path" jsonschema:"path of an entity set"`
	Filter    map[string]string `json:"filter,omitempty" jsonschema:"property equality filter"`
	Page      int               `json:"page,omitempty" jsonschema:"1-based page number (default 1)"`
	PageSize  int               `json:"page_size,omitempty" jsonschema:"items per page (default per backend)"`
}

// QueryOutput is the output schema for the query tool.
type QueryOutput struct {
	Items    []map[string]any `json:"items"`
	Count    int              `json:"count"`
	NextPage int              `json:"next_page,omitempty"`
}

// InvokeInput is the input schema for the invoke tool.
type InvokeInput struct {
	Connector string         `json:"connector" jsonschema:"the connector id"`
	Path      string         `json:"path" jsonschema:"path of an action, ending in $actions/<name>"`
	Args      map[string]any `json:"args,omitempty" jsonschema:"action arguments as described by reflect"`
}

// InvokeOutput is the output schema for the invoke tool.
type InvokeOutput struct {
	Result any `json:"result"`
}

// PollOutput is the output schema for the poll tool.
type PollOutput struct {
	Payloads []domain.Payload `json:"payloads"`
	Count    int              `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reflect",
		Description: "Describe a connector node: its properties, children, actions and events",
	}, s.handleReflect)

	if s.ports.Query != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "query",
			Description: "List one page of an entity set, optionally filtered",
		}, s.handleQuery)
	}
	if s.ports.Invoke != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "invoke",
			Description: "Invoke a connector action with arguments",
		}, s.handleInvoke)
	}
	if s.ports.Poll != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "poll",
			Description: "Fetch new occurrences of a pollable event since the last poll",
		}, s.handlePoll)
	}
}

// nodeURI renders a node reference in the hub URI scheme.
func nodeURI(connectorID string) domain.URLBuilder {
	return func(p domain.Path) string {
		uri := uriScheme + "connectors/" + connectorID
		if !p.IsRoot() {
			uri += "/" + p.String()
		}
		return uri
	}
}

// handleReflect handles the reflect tool invocation.
func (s *Server) handleReflect(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input NodeInput,
) (*mcp.CallToolResult, any, error) {
	desc, err := s.ports.Reflect.Reflect(ctx, input.Connector, input.Path, s.ports.User, nodeURI(input.Connector))
	if err != nil {
		return nil, nil, err
	}
	return nil, desc, nil
}

// handleQuery handles the query tool invocation.
func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	filter := make(domain.Filter, len(input.Filter))
	for k, v := range input.Filter {
		filter[k] = v
	}
	opts := domain.ListOptions{Page: input.Page, PageSize: input.PageSize}

	var next int
	pageURL := func(_ domain.Path, page int) string {
		next = page
		return strconv.Itoa(page)
	}

	page, err := s.ports.Query.Query(ctx, input.Connector, input.Path, filter, opts, s.ports.User, pageURL)
	if err != nil {
		return nil, QueryOutput{}, err
	}

	output := QueryOutput{Items: page.Items, Count: len(page.Items)}
	if output.Items == nil {
		output.Items = []map[string]any{}
	}
	if page.NextPage != "" {
		output.NextPage = next
	}
	return nil, output, nil
}

// handleInvoke handles the invoke tool invocation.
func (s *Server) handleInvoke(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input InvokeInput,
) (*mcp.CallToolResult, InvokeOutput, error) {
	args := input.Args
	if args == nil {
		args = map[string]any{}
	}
	result, err := s.ports.Invoke.Invoke(ctx, input.Connector, input.Path, args, s.ports.User)
	if err != nil {
		return nil, InvokeOutput{}, err
	}
	return nil, InvokeOutput{Result: result}, nil
}

// handlePoll handles the poll tool invocation.
func (s *Server) handlePoll(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input NodeInput,
) (*mcp.CallToolResult, PollOutput, error) {
	payloads, err := s.ports.Poll.Poll(ctx, input.Connector, input.Path)
	if err != nil {
		return nil, PollOutput{}, err
	}
	if payloads == nil {
		payloads = []domain.Payload{}
	}
	return nil, PollOutput{Payloads: payloads, Count: len(payloads)}, nil
}
