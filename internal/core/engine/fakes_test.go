package engine

import (
	"context"
	"fmt"
	"strconv"

	"github.com/custodia-labs/hub/internal/core/domain"
)

// --- Fake capability tree used by the engine tests ---

type fakeRoot struct {
	domain.EntityBase
	projects   *fakeProjects
	archive    *fakeProjects
	propsCalls int
}

func newFakeRoot(n int) *fakeRoot {
	return &fakeRoot{
		EntityBase: domain.EntityBase{NodeInfo: domain.NewNodeInfo("Hub", domain.Path{})},
		projects:   newFakeProjects("Projects", domain.ParsePath("projects"), n, false),
		archive:    newFakeProjects("Archive", domain.ParsePath("archive"), n, true),
	}
}

func (r *fakeRoot) Properties(context.Context, domain.User) (map[string]domain.Property, error) {
	r.propsCalls++
	return map[string]domain.Property{
		"title":    domain.NewSimpleProperty("Title", domain.StringType(), "Hub"),
		"projects": r.projects,
		"archive":  r.archive,
	}, nil
}

type fakeProjects struct {
	domain.EntitySetBase
	count      int
	suppress   bool
	queryCalls int
	lastReq    domain.QueryRequest
	pageSize   int
	queryErr   error
}

func newFakeProjects(label string, path domain.Path, count int, suppress bool) *fakeProjects {
	return &fakeProjects{
		EntitySetBase: domain.EntitySetBase{NodeInfo: domain.NewNodeInfo(label, path)},
		count:         count,
		suppress:      suppress,
	}
}

func (s *fakeProjects) FindEntity(_ context.Context, id string, _ domain.User) (domain.Node, error) {
	return newFakeProject(s.Path(), id), nil
}

func (s *fakeProjects) Query(_ context.Context, req domain.QueryRequest, _ domain.User) (*domain.QueryResult, error) {
	s.queryCalls++
	s.lastReq = req
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	items := make([]domain.Node, 0, s.count)
	for i := 1; i <= s.count; i++ {
		items = append(items, newFakeProject(s.Path(), strconv.Itoa(i)))
	}
	return domain.PaginateSlice(items, req), nil
}

func (s *fakeProjects) SuppressReflectListing() bool { return s.suppress }

func (s *fakeProjects) DefaultPageSize() int { return s.pageSize }

func (s *fakeProjects) Actions(context.Context, domain.User) (map[string]domain.Action, error) {
	return map[string]domain.Action{"insert": newSpyAction(s.Path().Action("insert"), nil)}, nil
}

type fakeProject struct {
	domain.EntityBase
	id   string
	call *spyAction
}

func newFakeProject(parent domain.Path, id string) *fakeProject {
	path := parent.Name(id)
	return &fakeProject{
		EntityBase: domain.EntityBase{NodeInfo: domain.NewNodeInfo("Project "+id, path)},
		id:         id,
		call: newSpyAction(path.Action("call"), domain.Schema{
			"channel": {Label: "Channel", Type: domain.StringType(), Required: true},
			"number":  {Label: "Number", Type: domain.StringType(), Required: true},
		}),
	}
}

func (p *fakeProject) Properties(context.Context, domain.User) (map[string]domain.Property, error) {
	return map[string]domain.Property{
		"id":         domain.NewSimpleProperty("ID", domain.IntegerType(), p.id),
		"name":       domain.NewSimpleProperty("Name", domain.StringType(), "Project "+p.id),
		"call_flows": newFakeProjects("Call flows", p.Path().Name("call_flows"), 2, false),
	}, nil
}

func (p *fakeProject) Actions(context.Context, domain.User) (map[string]domain.Action, error) {
	return map[string]domain.Action{"call": p.call}, nil
}

func (p *fakeProject) Events(context.Context, domain.User) (map[string]domain.Event, error) {
	return map[string]domain.Event{"call_finished": &fakeEvent{
		EventBase: domain.EventBase{NodeInfo: domain.NewNodeInfo("Call finished", p.Path().Event("call_finished"))},
	}}, nil
}

type spyAction struct {
	domain.ActionBase
	schema  domain.Schema
	calls   int
	gotArgs map[string]any
}

func newSpyAction(path domain.Path, schema domain.Schema) *spyAction {
	return &spyAction{
		ActionBase: domain.ActionBase{NodeInfo: domain.NewNodeInfo("Spy", path)},
		schema:     schema,
	}
}

func (a *spyAction) Args(context.Context, domain.User) (domain.Schema, error) {
	return a.schema, nil
}

func (a *spyAction) Invoke(_ context.Context, args map[string]any, _ domain.User) (any, error) {
	a.calls++
	a.gotArgs = args
	return map[string]any{"ok": true}, nil
}

type fakeEvent struct {
	domain.EventBase
	next     domain.EventCursor
	payloads []domain.Payload
	err      error
}

func (e *fakeEvent) Poll(_ context.Context, cursor domain.EventCursor, _ domain.User) (domain.EventCursor, []domain.Payload, error) {
	if e.err != nil {
		return "garbage", nil, e.err
	}
	return e.next, e.payloads, nil
}

func testURLs(p domain.Path) string {
	return fmt.Sprintf("http://hub.test/api/reflect/connectors/c1/%s", p)
}

func testPageURLs(p domain.Path, page int) string {
	return fmt.Sprintf("http://hub.test/api/data/connectors/c1/%s?page=%d", p, page)
}
