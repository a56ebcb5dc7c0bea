package verboice

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/custodia-labs/hub/internal/connectors/httpclient"
	"github.com/custodia-labs/hub/internal/core/domain"
	"github.com/custodia-labs/hub/internal/core/ports/driven"
)

// Builder returns the connector builder for Verboice connectors.
func Builder(pool *httpclient.Pool) driven.ConnectorBuilder {
	return func(_ context.Context, c domain.Connector, tokens driven.TokenProvider) (domain.Entity, error) {
		cfg, err := ParseConfig(c)
		if err != nil {
			return nil, err
		}

		var auth httpclient.Authenticator = httpclient.BasicAuth{Username: cfg.Username, Password: cfg.Password}
		if cfg.Shared {
			auth = httpclient.DelegatedAuth{Provider: tokens, Audience: cfg.Audience()}
		}
		client := pool.Client(c.ID, httpclient.Options{
			BaseURL: cfg.URL,
			Timeout: cfg.Timeout,
			Auth:    auth,
		}, cfg.RateLimit, cfg.Burst)
		return NewRoot(c.Name, client), nil
	}
}

// Root is the connector root entity.
type Root struct {
	domain.EntityBase
	projects *Projects
}

// NewRoot creates the root of a Verboice tree.
func NewRoot(label string, client *httpclient.Client) *Root {
	return &Root{
		EntityBase: domain.EntityBase{NodeInfo: domain.NewNodeInfo(label, domain.Path{})},
		projects: &Projects{
			EntitySetBase: domain.EntitySetBase{NodeInfo: domain.NewNodeInfo("Projects", domain.ParsePath("projects"))},
			client:        client,
		},
	}
}

// Properties returns the projects set.
func (r *Root) Properties(context.Context, domain.User) (map[string]domain.Property, error) {
	return map[string]domain.Property{"projects": r.projects}, nil
}

type projectJSON struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	CallFlows   []flow   `json:"call_flows"`
	ContactVars []string `json:"contact_vars"`
}

type flow struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Projects lists the projects visible to the user.
type Projects struct {
	domain.EntitySetBase
	client *httpclient.Client
}

// Query lists the projects.
func (s *Projects) Query(ctx context.Context, req domain.QueryRequest, user domain.User) (*domain.QueryResult, error) {
	var projects []projectJSON
	if err := s.client.Get(ctx, user, "/api/projects.json", nil, &projects); err != nil {
		return nil, err
	}
	items := make([]domain.Node, len(projects))
	for i, p := range projects {
		items[i] = s.project(strconv.Itoa(p.ID), p.Name)
	}
	return domain.PaginateSlice(items, req), nil
}

// FindEntity addresses a project by id without fetching it.
func (s *Projects) FindEntity(_ context.Context, id string, _ domain.User) (domain.Node, error) {
	return s.project(id, ""), nil
}

func (s *Projects) project(id, name string) *Project {
	path := s.Path().Name(id)
	label := name
	if label == "" {
		label = id
	}
	p := &Project{
		EntityBase: domain.EntityBase{NodeInfo: domain.NewNodeInfo(label, path)},
		client:     s.client,
		id:         id,
		name:       name,
	}
	p.callFlows = &CallFlows{
		EntitySetBase: domain.EntitySetBase{NodeInfo: domain.NewNodeInfo("Call flows", path.Name("call_flows"))},
		project:       p,
	}
	p.call = &CallAction{
		ActionBase: domain.ActionBase{NodeInfo: domain.NewNodeInfo("Call", path.Action("call"))},
		client:     s.client,
	}
	return p
}

// Project is one Verboice project.
type Project struct {
	domain.EntityBase
	client    *httpclient.Client
	id        string
	name      string
	callFlows *CallFlows
	call      *CallAction
}

// Properties returns the id, the name when known, and the call flows.
func (p *Project) Properties(context.Context, domain.User) (map[string]domain.Property, error) {
	var id any = p.id
	if n, err := strconv.Atoi(p.id); err == nil {
		id = n
	}
	var name any
	if p.name != "" {
		name = p.name
	}
	return map[string]domain.Property{
		"id":         domain.NewSimpleProperty("Id", domain.IntegerType(), id),
		"name":       domain.NewSimpleProperty("Name", domain.StringType(), name),
		"call_flows": p.callFlows,
	}, nil
}

// Actions returns the call action.
func (p *Project) Actions(context.Context, domain.User) (map[string]domain.Action, error) {
	return map[string]domain.Action{"call": p.call}, nil
}

func (p *Project) fetch(ctx context.Context, user domain.User) (*projectJSON, error) {
	var project projectJSON
	if err := p.client.Get(ctx, user, "/api/projects/"+url.PathEscape(p.id)+".json", nil, &project); err != nil {
		return nil, fmt.Errorf("get project %s: %w", p.id, err)
	}
	return &project, nil
}

// CallFlows lists the call flows of a project.
type CallFlows struct {
	domain.EntitySetBase
	project *Project
}

// Query lists the call flows of the project.
func (s *CallFlows) Query(ctx context.Context, req domain.QueryRequest, user domain.User) (*domain.QueryResult, error) {
	project, err := s.project.fetch(ctx, user)
	if err != nil {
		return nil, err
	}
	items := make([]domain.Node, len(project.CallFlows))
	for i, f := range project.CallFlows {
		items[i] = s.callFlow(strconv.Itoa(f.ID), f.Name)
	}
	return domain.PaginateSlice(items, req), nil
}

// FindEntity addresses a call flow by id without fetching it.
func (s *CallFlows) FindEntity(_ context.Context, id string, _ domain.User) (domain.Node, error) {
	return s.callFlow(id, ""), nil
}

func (s *CallFlows) callFlow(id, name string) *CallFlow {
	label := name
	if label == "" {
		label = id
	}
	path := s.Path().Name(id)
	return &CallFlow{
		EntityBase: domain.EntityBase{NodeInfo: domain.NewNodeInfo(label, path)},
		finished: &CallFinishedEvent{
			EventBase: domain.EventBase{NodeInfo: domain.NewNodeInfo("Call finished", path.Event("call_finished"))},
			project:   s.project,
		},
	}
}

// CallFlow is one call flow of a project.
type CallFlow struct {
	domain.EntityBase
	finished *CallFinishedEvent
}

// Events returns the call_finished event.
func (f *CallFlow) Events(context.Context, domain.User) (map[string]domain.Event, error) {
	return map[string]domain.Event{"call_finished": f.finished}, nil
}

// CallAction starts an outbound call.
type CallAction struct {
	domain.ActionBase
	client *httpclient.Client
}

// Args declares the channel and the number to call.
func (a *CallAction) Args(context.Context, domain.User) (domain.Schema, error) {
	return domain.Schema{
		"channel": {Label: "Channel", Type: domain.StringType(), Required: true},
		"number":  {Label: "Number", Type: domain.StringType(), Required: true},
	}, nil
}

// Invoke enqueues the call and returns the backend's response.
func (a *CallAction) Invoke(ctx context.Context, args map[string]any, user domain.User) (any, error) {
	query := map[string]string{
		"channel": fmt.Sprint(args["channel"]),
		"address": fmt.Sprint(args["number"]),
	}
	var resp map[string]any
	if err := a.client.Get(ctx, user, "/api/call", query, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CallFinishedEvent is pushed by Verboice when a call of the flow ends. Its
// payload carries the project's contact variables.
type CallFinishedEvent struct {
	domain.EventBase
	project *Project
}

// Args declares one string per project contact variable.
func (e *CallFinishedEvent) Args(ctx context.Context, user domain.User) (domain.Schema, error) {
	project, err := e.project.fetch(ctx, user)
	if err != nil {
		return nil, err
	}
	schema := make(domain.Schema, len(project.ContactVars))
	for _, v := range project.ContactVars {
		schema[v] = domain.Field{Label: v, Type: domain.StringType()}
	}
	return schema, nil
}
