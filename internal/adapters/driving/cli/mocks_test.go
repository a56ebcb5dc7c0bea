package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/custodia-labs/hub/internal/core/domain"
)

// mockHub implements every driving port with recorded arguments.
type mockHub struct {
	lastConnector string
	lastPath      string
	lastUser      domain.User
	lastFilter    domain.Filter
	lastOpts      domain.ListOptions
	lastArgs      map[string]any
	lastKeys      map[string]any
	lastProps     map[string]any
	lastCreate    bool
	lastToken     string
	lastBody      []byte
	resetCalled   bool
	acked         []string

	err      error
	payloads []domain.Payload
	messages []domain.NotifyMessage
}

func (m *mockHub) record(connectorID, path string, user domain.User) {
	m.lastConnector = connectorID
	m.lastPath = path
	m.lastUser = user
}

func (m *mockHub) Reflect(
	_ context.Context, connectorID, path string, user domain.User, urls domain.URLBuilder,
) (domain.Descriptor, error) {
	m.record(connectorID, path, user)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.EntitySetDescriptor{
		Label: "Contacts",
		Path:  path,
		Entities: []domain.NodeSummary{
			{Label: "Jane", Path: "contacts/1", ReflectURL: urls(domain.ParsePath("contacts/1"))},
		},
		Actions: map[string]domain.NodeSummary{},
		Events:  map[string]domain.NodeSummary{},
	}, nil
}

func (m *mockHub) Query(
	_ context.Context,
	connectorID, path string,
	filter domain.Filter,
	opts domain.ListOptions,
	user domain.User,
	pageURL domain.PageURLBuilder,
) (*domain.Page, error) {
	m.record(connectorID, path, user)
	m.lastFilter = filter
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Page{
		Items:    []map[string]any{{"id": "1", "email": "jane@example.com"}},
		NextPage: pageURL(domain.ParsePath(path), opts.Page+1),
	}, nil
}

func (m *mockHub) Invoke(
	_ context.Context, connectorID, path string, args map[string]any, user domain.User,
) (any, error) {
	m.record(connectorID, path, user)
	m.lastArgs = args
	if m.err != nil {
		return nil, m.err
	}
	return map[string]any{"sent": true}, nil
}

func (m *mockHub) Insert(
	_ context.Context, connectorID, path string, properties map[string]any, user domain.User,
) (any, error) {
	m.record(connectorID, path, user)
	m.lastProps = properties
	if m.err != nil {
		return nil, m.err
	}
	return map[string]any{"id": "2"}, nil
}

func (m *mockHub) Update(
	_ context.Context,
	connectorID, path string,
	keys, properties map[string]any,
	createOrUpdate bool,
	user domain.User,
) (any, error) {
	m.record(connectorID, path, user)
	m.lastKeys = keys
	m.lastProps = properties
	m.lastCreate = createOrUpdate
	if m.err != nil {
		return nil, m.err
	}
	return domain.BulkResult{Matched: 1, Succeeded: 1}, nil
}

func (m *mockHub) Poll(_ context.Context, connectorID, path string) ([]domain.Payload, error) {
	m.record(connectorID, path, domain.User{})
	if m.err != nil {
		return nil, m.err
	}
	return m.payloads, nil
}

func (m *mockHub) Reset(_ context.Context, connectorID, path string) error {
	m.record(connectorID, path, domain.User{})
	m.resetCalled = true
	return m.err
}

func (m *mockHub) Notify(
	_ context.Context, connectorID, path, token string, body []byte,
) (*domain.NotifyMessage, error) {
	m.record(connectorID, path, domain.User{})
	m.lastToken = token
	m.lastBody = body
	if m.err != nil {
		return nil, m.err
	}
	return &domain.NotifyMessage{
		ID:          "msg-1",
		ConnectorID: connectorID,
		Path:        path,
		Payload:     json.RawMessage(body),
		ReceivedAt:  time.Now(),
	}, nil
}

func (m *mockHub) List(_ context.Context, user domain.User) ([]domain.Connector, error) {
	m.lastUser = user
	if m.err != nil {
		return nil, m.err
	}
	return []domain.Connector{
		{ID: "crm", Kind: "elasticsearch", Name: "CRM", Shared: true, SecretToken: "s3cret"},
		{ID: "calls", Kind: "verboice", Name: "Calls", OwnerEmail: "jane@example.com"},
	}, nil
}

func (m *mockHub) Kinds() []string {
	return []string{"elasticsearch", "verboice"}
}

func (m *mockHub) Pending(_ context.Context, limit int) ([]domain.NotifyMessage, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit < len(m.messages) {
		return m.messages[:limit], nil
	}
	return m.messages, nil
}

func (m *mockHub) Ack(_ context.Context, id string) error {
	if id == "missing" {
		return domain.ErrNotFound
	}
	m.acked = append(m.acked, id)
	return nil
}

// setupTestServices installs a mock hub and returns a cleanup function
// that restores the previous services and flag values.
func setupTestServices() (*mockHub, func()) {
	hub := &mockHub{}
	old := services
	services = &Services{
		Reflect:    hub,
		Query:      hub,
		Invoke:     hub,
		Data:       hub,
		Poll:       hub,
		Notify:     hub,
		Connectors: hub,
		Queue:      hub,
	}
	return hub, func() {
		services = old
		resetFlags()
	}
}

func resetFlags() {
	userEmail = ""
	queryPage = 1
	queryPageSize = 0
	invokeArgs = ""
	dataProperties = ""
	dataKeys = ""
	dataCreateOrUpdate = false
	pollReset = false
	notifyToken = ""
	notifyData = ""
	connectorsJSON = false
	queueLimit = 20
	queueJSON = false
}

// execute runs the root command with args and returns its output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
