package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/hub/internal/core/domain"
	"github.com/custodia-labs/hub/internal/core/ports/driven"
)

// --- Mock implementations for service testing ---

// mockConnectorStore implements driven.ConnectorStore for testing.
type mockConnectorStore struct {
	connectors map[string]domain.Connector
	listErr    error
}

func newMockConnectorStore(connectors ...domain.Connector) *mockConnectorStore {
	m := &mockConnectorStore{connectors: make(map[string]domain.Connector)}
	for _, c := range connectors {
		m.connectors[c.ID] = c
	}
	return m
}

func (m *mockConnectorStore) Get(_ context.Context, id string) (*domain.Connector, error) {
	c, ok := m.connectors[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (m *mockConnectorStore) List(_ context.Context) ([]domain.Connector, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.Connector, 0, len(m.connectors))
	for _, c := range m.connectors {
		out = append(out, c)
	}
	return out, nil
}

// mockFactory implements driven.ConnectorFactory returning a fixed tree.
type mockFactory struct {
	root     func(domain.Connector) domain.Entity
	rootErr  error
	built    int
	builtFor []string
	mu       sync.Mutex
}

func (f *mockFactory) Root(_ context.Context, c domain.Connector) (domain.Entity, error) {
	f.mu.Lock()
	f.built++
	f.builtFor = append(f.builtFor, c.ID)
	f.mu.Unlock()
	if f.rootErr != nil {
		return nil, f.rootErr
	}
	return f.root(c), nil
}

func (f *mockFactory) Register(string, driven.ConnectorBuilder) {}

func (f *mockFactory) SupportedKinds() []string { return []string{"act", "elasticsearch"} }

// mockCursorStore implements driven.CursorStore for testing.
type mockCursorStore struct {
	mu      sync.Mutex
	cursors map[domain.CursorKey]domain.EventCursor
	sets    int
	getErr  error
}

func newMockCursorStore() *mockCursorStore {
	return &mockCursorStore{cursors: make(map[domain.CursorKey]domain.EventCursor)}
}

func (m *mockCursorStore) Get(_ context.Context, key domain.CursorKey) (domain.EventCursor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.cursors[key], nil
}

func (m *mockCursorStore) Set(_ context.Context, key domain.CursorKey, cursor domain.EventCursor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.cursors[key] = cursor
	return nil
}

func (m *mockCursorStore) Delete(_ context.Context, key domain.CursorKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cursors, key)
	return nil
}

// mockQueue implements driven.TaskQueue for testing. A non-zero failOn
// fails that enqueue attempt (1-based).
type mockQueue struct {
	mu       sync.Mutex
	messages []domain.NotifyMessage
	err      error
	failOn   int
	attempts int
}

func (q *mockQueue) Enqueue(_ context.Context, msg domain.NotifyMessage) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.attempts++
	if q.err != nil {
		return q.err
	}
	if q.failOn > 0 && q.attempts == q.failOn {
		return errors.New("queue full")
	}
	q.messages = append(q.messages, msg)
	return nil
}

func (q *mockQueue) Dequeue(_ context.Context, limit int) ([]domain.NotifyMessage, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if limit > len(q.messages) {
		limit = len(q.messages)
	}
	return append([]domain.NotifyMessage(nil), q.messages[:limit]...), nil
}

func (q *mockQueue) Ack(context.Context, string) error { return nil }

func (q *mockQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.messages)
}

// --- Fake connector tree ---

// caseTree is a small case-management style tree:
//
//	cases                      entity set, listing of n cases
//	cases/$actions/insert      action (args: properties struct)
//	cases/$actions/update      action returning *domain.BulkResult
//	cases/$events/new_case     pollable event (feed)
//	cases/$events/pushed       notification-driven event
type caseTree struct {
	domain.EntityBase
	cases *caseSet
}

func newCaseTree(n int) *caseTree {
	return &caseTree{
		EntityBase: domain.EntityBase{NodeInfo: domain.NewNodeInfo("ACT", domain.Path{})},
		cases: &caseSet{
			EntitySetBase: domain.EntitySetBase{NodeInfo: domain.NewNodeInfo("Cases", domain.ParsePath("cases"))},
			count:         n,
			feed:          &feedEvent{EventBase: domain.EventBase{NodeInfo: domain.NewNodeInfo("New case", domain.ParsePath("cases").Event("new_case"))}},
			insert:        &recordAction{ActionBase: domain.ActionBase{NodeInfo: domain.NewNodeInfo("Insert", domain.ParsePath("cases").Action("insert"))}},
			update:        &recordAction{ActionBase: domain.ActionBase{NodeInfo: domain.NewNodeInfo("Update", domain.ParsePath("cases").Action("update"))}},
		},
	}
}

func (t *caseTree) Properties(context.Context, domain.User) (map[string]domain.Property, error) {
	return map[string]domain.Property{"cases": t.cases}, nil
}

type caseSet struct {
	domain.EntitySetBase
	count  int
	feed   *feedEvent
	insert *recordAction
	update *recordAction
}

func (s *caseSet) Query(_ context.Context, req domain.QueryRequest, _ domain.User) (*domain.QueryResult, error) {
	items := make([]domain.Node, s.count)
	for i := range items {
		items[i] = &caseRecord{
			EntityBase: domain.EntityBase{NodeInfo: domain.NewNodeInfo("Case", s.Path().Name("x"))},
			n:          i + 1,
		}
	}
	return domain.PaginateSlice(items, req), nil
}

func (s *caseSet) Actions(context.Context, domain.User) (map[string]domain.Action, error) {
	return map[string]domain.Action{"insert": s.insert, "update": s.update}, nil
}

func (s *caseSet) Events(context.Context, domain.User) (map[string]domain.Event, error) {
	return map[string]domain.Event{
		"new_case": s.feed,
		"pushed":   &domain.EventBase{NodeInfo: domain.NewNodeInfo("Pushed", s.Path().Event("pushed"))},
	}, nil
}

type caseRecord struct {
	domain.EntityBase
	n int
}

func (r *caseRecord) Properties(context.Context, domain.User) (map[string]domain.Property, error) {
	return map[string]domain.Property{"n": domain.NewSimpleProperty("N", domain.IntegerType(), r.n)}, nil
}

type recordAction struct {
	domain.ActionBase
	mu      sync.Mutex
	calls   []map[string]any
	matched int
}

func (a *recordAction) Args(context.Context, domain.User) (domain.Schema, error) {
	return domain.Schema{
		"keys":       {Type: domain.StructOf(nil, true)},
		"properties": {Type: domain.StructOf(domain.Schema{"age": {Type: domain.IntegerType()}}, true), Required: true},
	}, nil
}

func (a *recordAction) Invoke(_ context.Context, args map[string]any, _ domain.User) (any, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, args)
	return &domain.BulkResult{Matched: a.matched, Succeeded: a.matched}, nil
}

// feedEvent serves ids after the cursor from a fixed feed, recording
// concurrent entries to detect overlapping polls.
type feedEvent struct {
	domain.EventBase
	mu      sync.Mutex
	ids     []string
	err     error
	active  int
	overlap bool
	hold    chan struct{}
	users   []domain.User
}

func (e *feedEvent) Poll(ctx context.Context, cursor domain.EventCursor, user domain.User) (domain.EventCursor, []domain.Payload, error) {
	e.mu.Lock()
	e.active++
	if e.active > 1 {
		e.overlap = true
	}
	e.users = append(e.users, user)
	hold, err, ids := e.hold, e.err, e.ids
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.active--
		e.mu.Unlock()
	}()

	if hold != nil {
		<-hold
	}
	if err != nil {
		return "garbage", nil, err
	}

	var payloads []domain.Payload
	next := cursor
	for _, id := range ids {
		if string(cursor) < id {
			payloads = append(payloads, domain.Payload{"id": id})
			next = domain.EventCursor(id)
		}
	}
	return next, payloads, nil
}
