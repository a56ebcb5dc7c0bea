package httpapi

import (
	"context"

	"github.com/custodia-labs/hub/internal/core/domain"
)

// recordedCall captures the arguments of the last port call.
type recordedCall struct {
	connectorID string
	path        string
	user        domain.User
	filter      domain.Filter
	opts        domain.ListOptions
	args        map[string]any
	keys        map[string]any
	upsert      bool
	token       string
	body        []byte
}

type mockHub struct {
	last recordedCall
	err  error

	descriptor domain.Descriptor
	page       *domain.Page
	result     any
	payloads   []domain.Payload
	connectors []domain.Connector

	urls    domain.URLBuilder
	pageURL domain.PageURLBuilder
}

func (m *mockHub) Reflect(_ context.Context, connectorID, path string, user domain.User, urls domain.URLBuilder) (domain.Descriptor, error) {
	m.last = recordedCall{connectorID: connectorID, path: path, user: user}
	m.urls = urls
	return m.descriptor, m.err
}

func (m *mockHub) Query(
	_ context.Context,
	connectorID, path string,
	filter domain.Filter,
	opts domain.ListOptions,
	user domain.User,
	pageURL domain.PageURLBuilder,
) (*domain.Page, error) {
	m.last = recordedCall{connectorID: connectorID, path: path, user: user, filter: filter, opts: opts}
	m.pageURL = pageURL
	return m.page, m.err
}

func (m *mockHub) Invoke(_ context.Context, connectorID, path string, args map[string]any, user domain.User) (any, error) {
	m.last = recordedCall{connectorID: connectorID, path: path, user: user, args: args}
	return m.result, m.err
}

func (m *mockHub) Insert(_ context.Context, connectorID, path string, properties map[string]any, user domain.User) (any, error) {
	m.last = recordedCall{connectorID: connectorID, path: path, user: user, args: properties}
	return m.result, m.err
}

func (m *mockHub) Update(
	_ context.Context,
	connectorID, path string,
	keys, properties map[string]any,
	createOrUpdate bool,
	user domain.User,
) (any, error) {
	m.last = recordedCall{connectorID: connectorID, path: path, user: user, keys: keys, args: properties, upsert: createOrUpdate}
	return m.result, m.err
}

func (m *mockHub) Poll(_ context.Context, connectorID, path string) ([]domain.Payload, error) {
	m.last = recordedCall{connectorID: connectorID, path: path}
	return m.payloads, m.err
}

func (m *mockHub) Reset(_ context.Context, connectorID, path string) error {
	m.last = recordedCall{connectorID: connectorID, path: path}
	return m.err
}

func (m *mockHub) Notify(_ context.Context, connectorID, path, token string, body []byte) (*domain.NotifyMessage, error) {
	m.last = recordedCall{connectorID: connectorID, path: path, token: token, body: body}
	if m.err != nil {
		return nil, m.err
	}
	return &domain.NotifyMessage{ID: "msg-1", ConnectorID: connectorID, Path: path}, nil
}

func (m *mockHub) List(_ context.Context, user domain.User) ([]domain.Connector, error) {
	m.last = recordedCall{user: user}
	return m.connectors, m.err
}

func (m *mockHub) Kinds() []string {
	return []string{"act"}
}

func (m *mockHub) ports() *Ports {
	return &Ports{
		Reflect:    m,
		Query:      m,
		Data:       m,
		Invoke:     m,
		Poll:       m,
		Notify:     m,
		Connectors: m,
	}
}
