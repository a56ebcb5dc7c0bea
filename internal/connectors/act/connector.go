// Package act exposes a case-management service. Cases cannot be listed or
// addressed individually; the connector only reports new cases through the
// polled new_case event.
package act

import (
	"context"
	"fmt"

	"github.com/custodia-labs/hub/internal/connectors/httpclient"
	"github.com/custodia-labs/hub/internal/core/domain"
	"github.com/custodia-labs/hub/internal/core/engine"
	"github.com/custodia-labs/hub/internal/core/ports/driven"
)

// Kind is the connector kind served by this package.
const Kind = "act"

// Config holds the parsed settings of an ACT connector.
type Config struct {
	URL string `validate:"required,url"`

	httpclient.Common
}

// ParseConfig parses a connector's settings into a Config.
func ParseConfig(c domain.Connector) (*Config, error) {
	common, err := httpclient.ParseCommon(c)
	if err != nil {
		return nil, err
	}
	cfg := &Config{URL: c.Setting("url", ""), Common: common}
	if err := httpclient.ValidateConfig(Kind, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Builder returns the connector builder for ACT connectors.
func Builder(pool *httpclient.Pool) driven.ConnectorBuilder {
	return func(_ context.Context, c domain.Connector, _ driven.TokenProvider) (domain.Entity, error) {
		cfg, err := ParseConfig(c)
		if err != nil {
			return nil, err
		}
		client := pool.Client(c.ID, httpclient.Options{
			BaseURL: cfg.URL,
			Timeout: cfg.Timeout,
		}, cfg.RateLimit, cfg.Burst)
		return NewRoot(c.Name, client), nil
	}
}

// Root is the connector root entity.
type Root struct {
	domain.EntityBase
	cases *Cases
}

// NewRoot creates the root of an ACT tree.
func NewRoot(label string, client *httpclient.Client) *Root {
	path := domain.ParsePath("cases")
	return &Root{
		EntityBase: domain.EntityBase{NodeInfo: domain.NewNodeInfo(label, domain.Path{})},
		cases: &Cases{
			EntitySetBase: domain.EntitySetBase{NodeInfo: domain.NewNodeInfo("Cases", path)},
			newCase: &NewCaseEvent{
				EventBase: domain.EventBase{NodeInfo: domain.NewNodeInfo("New case", path.Event("new_case"))},
				client:    client,
			},
		},
	}
}

// Properties returns the cases set.
func (r *Root) Properties(context.Context, domain.User) (map[string]domain.Property, error) {
	return map[string]domain.Property{"cases": r.cases}, nil
}

// Cases is the set of cases. Its listing is always empty.
type Cases struct {
	domain.EntitySetBase
	newCase *NewCaseEvent
}

// Query returns no cases.
func (s *Cases) Query(context.Context, domain.QueryRequest, domain.User) (*domain.QueryResult, error) {
	return &domain.QueryResult{Items: []domain.Node{}}, nil
}

// Events returns the new_case event.
func (s *Cases) Events(context.Context, domain.User) (map[string]domain.Event, error) {
	return map[string]domain.Event{"new_case": s.newCase}, nil
}

// NewCaseEvent reports cases created since the previous poll.
type NewCaseEvent struct {
	domain.EventBase
	client *httpclient.Client
}

// Args declares the fields of a reported case.
func (e *NewCaseEvent) Args(context.Context, domain.User) (domain.Schema, error) {
	return domain.Schema{
		"patient_name":         {Type: domain.StringType()},
		"patient_phone_number": {Type: domain.StringType()},
		"patient_age":          {Type: domain.StringType()},
		"patient_gender": {Type: domain.EnumOf(domain.TypeString,
			domain.EnumMember{Value: "M", Label: "Male"},
			domain.EnumMember{Value: "F", Label: "Female"},
		)},
		"dialect_code": {Type: domain.StringType()},
		"symptoms":     {Type: domain.ArrayOf(domain.StringType())},
	}, nil
}

// Poll fetches the cases after the cursor id. The backend returns cases in
// creation order.
func (e *NewCaseEvent) Poll(ctx context.Context, cursor domain.EventCursor, user domain.User) (domain.EventCursor, []domain.Payload, error) {
	return engine.PollCursorAdvance(ctx, cursor, func(ctx context.Context, since string) ([]engine.FeedItem, error) {
		var query map[string]string
		if since != "" {
			query = map[string]string{"since_id": since}
		}
		var cases []map[string]any
		if err := e.client.Get(ctx, user, "/api/v1/cases/", query, &cases); err != nil {
			return nil, err
		}

		items := make([]engine.FeedItem, 0, len(cases))
		for _, c := range cases {
			id, ok := c["id"]
			if !ok || id == nil {
				return nil, fmt.Errorf("%w: case without id", domain.ErrBackendUnavailable)
			}
			items = append(items, engine.FeedItem{ID: formatID(id), Payload: domain.Payload(c)})
		}
		return items, nil
	})
}

// formatID renders a JSON id without exponent notation.
func formatID(id any) string {
	if f, ok := id.(float64); ok && f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprint(id)
}
