package mcp

import (
	"context"

	"github.com/custodia-labs/hub/internal/core/domain"
)

// mockReflectService is a mock implementation of driving.ReflectService.
type mockReflectService struct {
	descriptor  domain.Descriptor
	err         error
	connectorID string
	path        string
	user        domain.User
	urls        domain.URLBuilder
}

func (m *mockReflectService) Reflect(
	_ context.Context,
	connectorID, path string,
	user domain.User,
	urls domain.URLBuilder,
) (domain.Descriptor, error) {
	m.connectorID, m.path, m.user, m.urls = connectorID, path, user, urls
	return m.descriptor, m.err
}

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	items  []map[string]any
	more   bool
	err    error
	filter domain.Filter
	opts   domain.ListOptions
}

func (m *mockQueryService) Query(
	_ context.Context,
	_, path string,
	filter domain.Filter,
	opts domain.ListOptions,
	_ domain.User,
	pageURL domain.PageURLBuilder,
) (*domain.Page, error) {
	m.filter, m.opts = filter, opts
	if m.err != nil {
		return nil, m.err
	}
	page := &domain.Page{Items: m.items}
	if m.more {
		current := opts.Page
		if current < 1 {
			current = 1
		}
		page.NextPage = pageURL(domain.ParsePath(path), current+1)
	}
	return page, nil
}

// mockInvokeService is a mock implementation of driving.InvokeService.
type mockInvokeService struct {
	result any
	err    error
	args   map[string]any
}

func (m *mockInvokeService) Invoke(_ context.Context, _, _ string, args map[string]any, _ domain.User) (any, error) {
	m.args = args
	return m.result, m.err
}

// mockPollService is a mock implementation of driving.PollService.
type mockPollService struct {
	payloads []domain.Payload
	err      error
}

func (m *mockPollService) Poll(_ context.Context, _, _ string) ([]domain.Payload, error) {
	return m.payloads, m.err
}

func (m *mockPollService) Reset(_ context.Context, _, _ string) error {
	return m.err
}

// mockConnectorService is a mock implementation of driving.ConnectorService.
type mockConnectorService struct {
	connectors []domain.Connector
	err        error
}

func (m *mockConnectorService) List(_ context.Context, _ domain.User) ([]domain.Connector, error) {
	return m.connectors, m.err
}

func (m *mockConnectorService) Kinds() []string {
	return nil
}
