package elasticsearch

import (
	"context"
	"net/url"
	"sort"

	"github.com/custodia-labs/hub/internal/connectors/httpclient"
	"github.com/custodia-labs/hub/internal/core/domain"
	"github.com/custodia-labs/hub/internal/core/ports/driven"
)

// Builder returns the connector builder for Elasticsearch connectors,
// sharing pooled clients across requests.
func Builder(pool *httpclient.Pool) driven.ConnectorBuilder {
	return func(_ context.Context, c domain.Connector, _ driven.TokenProvider) (domain.Entity, error) {
		cfg, err := ParseConfig(c)
		if err != nil {
			return nil, err
		}

		var auth httpclient.Authenticator = httpclient.NoAuth{}
		if cfg.Username != "" {
			auth = httpclient.BasicAuth{Username: cfg.Username, Password: cfg.Password}
		}
		client := pool.Client(c.ID, httpclient.Options{
			BaseURL: cfg.URL,
			Timeout: cfg.Timeout,
			Auth:    auth,
		}, cfg.RateLimit, cfg.Burst)
		return NewRoot(c.Name, client, cfg.PageSize), nil
	}
}

// Root is the connector root entity.
type Root struct {
	domain.EntityBase
	indices *Indices
}

// NewRoot creates the root of an Elasticsearch tree.
func NewRoot(label string, client *httpclient.Client, pageSize int) *Root {
	return &Root{
		EntityBase: domain.EntityBase{NodeInfo: domain.NewNodeInfo(label, domain.Path{})},
		indices: &Indices{
			EntitySetBase: domain.EntitySetBase{NodeInfo: domain.NewNodeInfo("Indices", domain.ParsePath("indices"))},
			client:        client,
			pageSize:      pageSize,
		},
	}
}

// Properties returns the indices set.
func (r *Root) Properties(context.Context, domain.User) (map[string]domain.Property, error) {
	return map[string]domain.Property{"indices": r.indices}, nil
}

// Indices lists the indices of the cluster.
type Indices struct {
	domain.EntitySetBase
	client   *httpclient.Client
	pageSize int
}

type statsResponse struct {
	Indices map[string]any `json:"indices"`
}

// Query lists the index names in alphabetical order.
func (s *Indices) Query(ctx context.Context, req domain.QueryRequest, user domain.User) (*domain.QueryResult, error) {
	var stats statsResponse
	if err := s.client.Get(ctx, user, "/_stats/indices", nil, &stats); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(stats.Indices))
	for name := range stats.Indices {
		names = append(names, name)
	}
	sort.Strings(names)

	items := make([]domain.Node, len(names))
	for i, name := range names {
		items[i] = s.index(name)
	}
	return domain.PaginateSlice(items, req), nil
}

// FindEntity addresses an index by name without checking it exists.
func (s *Indices) FindEntity(_ context.Context, id string, _ domain.User) (domain.Node, error) {
	return s.index(id), nil
}

func (s *Indices) index(name string) *Index {
	path := s.Path().Name(name)
	return &Index{
		EntityBase: domain.EntityBase{NodeInfo: domain.NewNodeInfo(name, path)},
		name:       name,
		types: &Types{
			EntitySetBase: domain.EntitySetBase{NodeInfo: domain.NewNodeInfo("Types", path.Name("types"))},
			client:        s.client,
			index:         name,
			pageSize:      s.pageSize,
		},
	}
}

// Index is one index of the cluster.
type Index struct {
	domain.EntityBase
	name  string
	types *Types
}

// Properties returns the index name and its types set.
func (i *Index) Properties(context.Context, domain.User) (map[string]domain.Property, error) {
	return map[string]domain.Property{
		"name":  domain.NewSimpleProperty("Name", domain.StringType(), i.name),
		"types": i.types,
	}, nil
}

// Types lists the mapping types of an index.
type Types struct {
	domain.EntitySetBase
	client   *httpclient.Client
	index    string
	pageSize int
}

// Query lists the mapping types in alphabetical order.
func (s *Types) Query(ctx context.Context, req domain.QueryRequest, user domain.User) (*domain.QueryResult, error) {
	mappings, err := fetchMappings(ctx, s.client, user, s.index)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(mappings))
	for name := range mappings {
		names = append(names, name)
	}
	sort.Strings(names)

	items := make([]domain.Node, len(names))
	for i, name := range names {
		items[i] = s.docType(name)
	}
	return domain.PaginateSlice(items, req), nil
}

// FindEntity addresses a type by name without checking it exists.
func (s *Types) FindEntity(_ context.Context, id string, _ domain.User) (domain.Node, error) {
	return s.docType(id), nil
}

func (s *Types) docType(name string) *Type {
	t := &Type{
		EntitySetBase: domain.EntitySetBase{NodeInfo: domain.NewNodeInfo(name, s.Path().Name(name))},
		client:        s.client,
		index:         s.index,
		name:          name,
		pageSize:      s.pageSize,
	}
	t.insert = &InsertAction{
		ActionBase: domain.ActionBase{NodeInfo: domain.NewNodeInfo("Insert", t.Path().Action("insert"))},
		docs:       t,
	}
	t.update = &UpdateAction{
		ActionBase: domain.ActionBase{NodeInfo: domain.NewNodeInfo("Update", t.Path().Action("update"))},
		docs:       t,
	}
	t.delete = &DeleteAction{
		ActionBase: domain.ActionBase{NodeInfo: domain.NewNodeInfo("Delete", t.Path().Action("delete"))},
		docs:       t,
	}
	return t
}

// typelessName is the mapping type reported for indices without types.
const typelessName = "_doc"

// docsPath returns the document endpoint of index/type.
func docsPath(index, typ string, rest ...string) string {
	p := "/" + url.PathEscape(index) + "/" + url.PathEscape(typ)
	for _, r := range rest {
		p += "/" + url.PathEscape(r)
	}
	return p
}

// searchPath returns the search endpoint of index/type.
func searchPath(index, typ string) string {
	if typ == typelessName {
		return "/" + url.PathEscape(index) + "/_search"
	}
	return docsPath(index, typ) + "/_search"
}
