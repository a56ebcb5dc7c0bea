package rapidpro

import (
	"context"
	"fmt"
	"strconv"

	"github.com/custodia-labs/hub/internal/connectors/httpclient"
	"github.com/custodia-labs/hub/internal/core/domain"
	"github.com/custodia-labs/hub/internal/core/engine"
	"github.com/custodia-labs/hub/internal/core/ports/driven"
)

// maxPages bounds how many result pages a single listing follows.
const maxPages = 1000

// Builder returns the connector builder for RapidPro connectors.
func Builder(pool *httpclient.Pool) driven.ConnectorBuilder {
	return func(_ context.Context, c domain.Connector, _ driven.TokenProvider) (domain.Entity, error) {
		cfg, err := ParseConfig(c)
		if err != nil {
			return nil, err
		}
		client := pool.Client(c.ID, httpclient.Options{
			BaseURL: cfg.URL,
			Timeout: cfg.Timeout,
			Auth:    httpclient.TokenAuth{Scheme: "Token", Token: cfg.Token},
		}, cfg.RateLimit, cfg.Burst)
		return NewRoot(c.Name, client), nil
	}
}

// Root is the connector root entity.
type Root struct {
	domain.EntityBase
	flows *Flows
}

// NewRoot creates the root of a RapidPro tree.
func NewRoot(label string, client *httpclient.Client) *Root {
	return &Root{
		EntityBase: domain.EntityBase{NodeInfo: domain.NewNodeInfo(label, domain.Path{})},
		flows: &Flows{
			EntitySetBase: domain.EntitySetBase{NodeInfo: domain.NewNodeInfo("Flows", domain.ParsePath("flows"))},
			client:        client,
		},
	}
}

// Properties returns the flows set.
func (r *Root) Properties(context.Context, domain.User) (map[string]domain.Property, error) {
	return map[string]domain.Property{"flows": r.flows}, nil
}

// page is one page of a v1 list endpoint.
type page[T any] struct {
	Next    *string `json:"next"`
	Results []T     `json:"results"`
}

// fetchAll follows next links from path until the listing is exhausted.
func fetchAll[T any](ctx context.Context, client *httpclient.Client, user domain.User, path string, query map[string]string) ([]T, error) {
	var out []T
	for i := 0; i < maxPages; i++ {
		var p page[T]
		if err := client.Get(ctx, user, path, query, &p); err != nil {
			return nil, err
		}
		out = append(out, p.Results...)
		if p.Next == nil || *p.Next == "" {
			return out, nil
		}
		// next links are absolute and carry the query
		path, query = *p.Next, nil
	}
	return nil, fmt.Errorf("%w: listing %s exceeded %d pages", domain.ErrBackendUnavailable, path, maxPages)
}

type flowJSON struct {
	ID   int    `json:"flow"`
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// Flows lists the flows of the organisation.
type Flows struct {
	domain.EntitySetBase
	client *httpclient.Client
}

// Query lists every flow.
func (s *Flows) Query(ctx context.Context, req domain.QueryRequest, user domain.User) (*domain.QueryResult, error) {
	flows, err := fetchAll[flowJSON](ctx, s.client, user, "/api/v1/flows.json", nil)
	if err != nil {
		return nil, err
	}
	items := make([]domain.Node, len(flows))
	for i, f := range flows {
		items[i] = s.flow(strconv.Itoa(f.ID), f.Name)
	}
	return domain.PaginateSlice(items, req), nil
}

// FindEntity addresses a flow by id without fetching it.
func (s *Flows) FindEntity(_ context.Context, id string, _ domain.User) (domain.Node, error) {
	return s.flow(id, ""), nil
}

func (s *Flows) flow(id, name string) *Flow {
	label := name
	if label == "" {
		label = id
	}
	path := s.Path().Name(id)
	return &Flow{
		EntityBase: domain.EntityBase{NodeInfo: domain.NewNodeInfo(label, path)},
		id:         id,
		name:       name,
		runUpdate: &RunUpdateEvent{
			EventBase: domain.EventBase{NodeInfo: domain.NewNodeInfo("Run update", path.Event("run_update"))},
			client:    s.client,
			flowID:    id,
		},
	}
}

// Flow is one survey flow.
type Flow struct {
	domain.EntityBase
	id        string
	name      string
	runUpdate *RunUpdateEvent
}

// Properties returns the flow id and name.
func (f *Flow) Properties(context.Context, domain.User) (map[string]domain.Property, error) {
	var id any = f.id
	if n, err := strconv.Atoi(f.id); err == nil {
		id = n
	}
	var name any
	if f.name != "" {
		name = f.name
	}
	return map[string]domain.Property{
		"id":   domain.NewSimpleProperty("Id", domain.IntegerType(), id),
		"name": domain.NewSimpleProperty("Name", domain.StringType(), name),
	}, nil
}

// Events returns the run_update event.
func (f *Flow) Events(context.Context, domain.User) (map[string]domain.Event, error) {
	return map[string]domain.Event{"run_update": f.runUpdate}, nil
}

type runValue struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

type runJSON struct {
	Run     int        `json:"run"`
	Contact string     `json:"contact"`
	Phone   string     `json:"phone"`
	Values  []runValue `json:"values"`
}

// RunUpdateEvent reports runs of the flow that are new or carry new or
// changed values since the previous poll.
type RunUpdateEvent struct {
	domain.EventBase
	client *httpclient.Client
	flowID string
}

// Args declares the payload: the contact, the phone and the changed values.
func (e *RunUpdateEvent) Args(context.Context, domain.User) (domain.Schema, error) {
	return domain.Schema{
		"contact": {Label: "Contact", Type: domain.StringType()},
		"phone":   {Label: "Phone", Type: domain.StringType()},
		"values":  {Label: "Values", Type: domain.StructOf(nil, true)},
	}, nil
}

// Poll diffs the current runs of the flow against the cursor.
func (e *RunUpdateEvent) Poll(ctx context.Context, cursor domain.EventCursor, user domain.User) (domain.EventCursor, []domain.Payload, error) {
	return engine.PollSnapshotDiff(ctx, cursor, func(ctx context.Context) ([]engine.RunSnapshot, error) {
		runs, err := fetchAll[runJSON](ctx, e.client, user, "/api/v1/runs.json", map[string]string{"flow": e.flowID})
		if err != nil {
			return nil, err
		}
		return snapshots(runs), nil
	})
}

func snapshots(runs []runJSON) []engine.RunSnapshot {
	out := make([]engine.RunSnapshot, len(runs))
	for i, r := range runs {
		values := make(map[string]string, len(r.Values))
		for _, v := range r.Values {
			if v.Value == nil {
				values[v.Label] = ""
				continue
			}
			values[v.Label] = fmt.Sprint(v.Value)
		}
		out[i] = engine.RunSnapshot{
			Key:     strconv.Itoa(r.Run),
			Contact: r.Contact,
			Phone:   r.Phone,
			Values:  values,
		}
	}
	return out
}
