package ona

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/custodia-labs/hub/internal/connectors/httpclient"
	"github.com/custodia-labs/hub/internal/core/domain"
	"github.com/custodia-labs/hub/internal/core/engine"
	"github.com/custodia-labs/hub/internal/core/ports/driven"
)

// Builder returns the connector builder for Ona connectors.
func Builder(pool *httpclient.Pool) driven.ConnectorBuilder {
	return func(_ context.Context, c domain.Connector, _ driven.TokenProvider) (domain.Entity, error) {
		cfg, err := ParseConfig(c)
		if err != nil {
			return nil, err
		}
		client := pool.Client(c.ID, httpclient.Options{
			BaseURL: cfg.URL,
			Timeout: cfg.Timeout,
			Auth:    cfg.Authenticator(),
		}, cfg.RateLimit, cfg.Burst)
		return NewRoot(c.Name, client), nil
	}
}

// Root is the connector root entity.
type Root struct {
	domain.EntityBase
	forms *Forms
}

// NewRoot creates the root of an Ona tree.
func NewRoot(label string, client *httpclient.Client) *Root {
	return &Root{
		EntityBase: domain.EntityBase{NodeInfo: domain.NewNodeInfo(label, domain.Path{})},
		forms: &Forms{
			EntitySetBase: domain.EntitySetBase{NodeInfo: domain.NewNodeInfo("Forms", domain.ParsePath("forms"))},
			client:        client,
		},
	}
}

// Properties returns the forms set.
func (r *Root) Properties(context.Context, domain.User) (map[string]domain.Property, error) {
	return map[string]domain.Property{"forms": r.forms}, nil
}

type formJSON struct {
	FormID int    `json:"formid"`
	Title  string `json:"title"`
}

// Forms lists the forms visible to the connector's account.
type Forms struct {
	domain.EntitySetBase
	client *httpclient.Client
}

// Query lists every form.
func (s *Forms) Query(ctx context.Context, req domain.QueryRequest, user domain.User) (*domain.QueryResult, error) {
	var forms []formJSON
	if err := s.client.Get(ctx, user, "/api/v1/forms", nil, &forms); err != nil {
		return nil, err
	}
	items := make([]domain.Node, len(forms))
	for i, f := range forms {
		items[i] = s.form(strconv.Itoa(f.FormID), f.Title)
	}
	return domain.PaginateSlice(items, req), nil
}

// FindEntity addresses a form by id without fetching it.
func (s *Forms) FindEntity(_ context.Context, id string, _ domain.User) (domain.Node, error) {
	return s.form(id, ""), nil
}

func (s *Forms) form(id, title string) *Form {
	label := title
	if label == "" {
		label = id
	}
	path := s.Path().Name(id)
	return &Form{
		EntityBase: domain.EntityBase{NodeInfo: domain.NewNodeInfo(label, path)},
		id:         id,
		title:      title,
		newData: &NewDataEvent{
			EventBase: domain.EventBase{NodeInfo: domain.NewNodeInfo("New data", path.Event("new_data"))},
			client:    s.client,
			formID:    id,
		},
	}
}

// Form is one data collection form.
type Form struct {
	domain.EntityBase
	id      string
	title   string
	newData *NewDataEvent
}

// Properties returns the form id and title.
func (f *Form) Properties(context.Context, domain.User) (map[string]domain.Property, error) {
	var id any = f.id
	if n, err := strconv.Atoi(f.id); err == nil {
		id = n
	}
	var title any
	if f.title != "" {
		title = f.title
	}
	return map[string]domain.Property{
		"id":    domain.NewSimpleProperty("Id", domain.IntegerType(), id),
		"title": domain.NewSimpleProperty("Title", domain.StringType(), title),
	}, nil
}

// Events returns the new_data event.
func (f *Form) Events(context.Context, domain.User) (map[string]domain.Event, error) {
	return map[string]domain.Event{"new_data": f.newData}, nil
}

// NewDataEvent reports submissions received since the previous poll.
type NewDataEvent struct {
	domain.EventBase
	client *httpclient.Client
	formID string
}

// Poll fetches submissions with an _id greater than the cursor, oldest first.
func (e *NewDataEvent) Poll(ctx context.Context, cursor domain.EventCursor, user domain.User) (domain.EventCursor, []domain.Payload, error) {
	return engine.PollCursorAdvance(ctx, cursor, func(ctx context.Context, since string) ([]engine.FeedItem, error) {
		query := map[string]string{"sort": `{"_id": 1}`}
		if since != "" {
			n, err := strconv.ParseInt(since, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", domain.ErrInvalidCursor, since)
			}
			filter, _ := json.Marshal(map[string]any{"_id": map[string]any{"$gt": n}})
			query["query"] = string(filter)
		}

		var submissions []map[string]any
		if err := e.client.Get(ctx, user, "/api/v1/data/"+url.PathEscape(e.formID), query, &submissions); err != nil {
			return nil, err
		}

		items := make([]engine.FeedItem, 0, len(submissions))
		for _, s := range submissions {
			id, ok := s["_id"].(float64)
			if !ok {
				return nil, fmt.Errorf("%w: submission without _id", domain.ErrBackendUnavailable)
			}
			items = append(items, engine.FeedItem{ID: strconv.FormatInt(int64(id), 10), Payload: domain.Payload(s)})
		}
		return items, nil
	})
}
