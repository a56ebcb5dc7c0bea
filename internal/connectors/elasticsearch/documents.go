package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/hub/internal/connectors/httpclient"
	"github.com/custodia-labs/hub/internal/core/domain"
	"github.com/custodia-labs/hub/internal/core/engine"
)

// Type is the set of documents of one mapping type.
type Type struct {
	domain.EntitySetBase
	client   *httpclient.Client
	index    string
	name     string
	pageSize int

	// matchBatch and matchWindow bound the search pages read by update
	// and delete.
	matchBatch  int
	matchWindow int

	insert *InsertAction
	update *UpdateAction
	delete *DeleteAction
}

// SuppressReflectListing hides documents from reflection.
func (t *Type) SuppressReflectListing() bool { return true }

// DefaultPageSize returns the configured document page size.
func (t *Type) DefaultPageSize() int { return t.pageSize }

// Actions returns insert, update and delete.
func (t *Type) Actions(context.Context, domain.User) (map[string]domain.Action, error) {
	return map[string]domain.Action{
		"insert": t.insert,
		"update": t.update,
		"delete": t.delete,
	}, nil
}

type hit struct {
	ID     string         `json:"_id"`
	Source map[string]any `json:"_source"`
}

type searchResponse struct {
	Hits struct {
		Total json.RawMessage `json:"total"`
		Hits  []hit           `json:"hits"`
	} `json:"hits"`
}

// total reads hits.total, which is a number before 7.0 and an object after.
func (r *searchResponse) total() int {
	var n int
	if err := json.Unmarshal(r.Hits.Total, &n); err == nil {
		return n
	}
	var obj struct {
		Value int `json:"value"`
	}
	if err := json.Unmarshal(r.Hits.Total, &obj); err == nil {
		return obj.Value
	}
	return len(r.Hits.Hits)
}

// Query searches documents whose fields match every filter value.
func (t *Type) Query(ctx context.Context, req domain.QueryRequest, user domain.User) (*domain.QueryResult, error) {
	mapping, err := fetchTypeMapping(ctx, t.client, user, t.index, t.name)
	if err != nil {
		return nil, err
	}

	must := make([]map[string]any, 0, len(req.Filter))
	for _, k := range req.Filter.Keys() {
		must = append(must, map[string]any{"match": map[string]any{k: req.Filter[k]}})
	}
	body := map[string]any{
		"query": map[string]any{"bool": map[string]any{"must": must}},
		"from":  req.Offset,
	}
	if !req.Unbounded() {
		body["size"] = req.Limit
	}

	var resp searchResponse
	if err := t.client.Post(ctx, user, searchPath(t.index, t.name), body, &resp); err != nil {
		return nil, err
	}

	items := make([]domain.Node, len(resp.Hits.Hits))
	for i, h := range resp.Hits.Hits {
		items[i] = t.record(h, mapping)
	}
	return &domain.QueryResult{
		Items: items,
		More:  req.Offset+len(items) < resp.total(),
	}, nil
}

// FindEntity addresses a document by id without fetching it. The document
// and its mapping are loaded when its properties are read.
func (t *Type) FindEntity(_ context.Context, id string, _ domain.User) (domain.Node, error) {
	return &Record{
		EntityBase: domain.EntityBase{NodeInfo: domain.NewNodeInfo(id, t.Path().Name(id))},
		docs:       t,
		id:         id,
	}, nil
}

func (t *Type) record(h hit, mapping typeMapping) *Record {
	if h.Source == nil {
		h.Source = map[string]any{}
	}
	return &Record{
		EntityBase: domain.EntityBase{NodeInfo: domain.NewNodeInfo(h.ID, t.Path().Name(h.ID))},
		docs:       t,
		id:         h.ID,
		source:     h.Source,
		mapping:    &mapping,
	}
}

// Record is one document. Its properties are the mapped fields.
type Record struct {
	domain.EntityBase
	docs    *Type
	id      string
	source  map[string]any
	mapping *typeMapping
}

// load fetches whatever the record was not built with.
func (r *Record) load(ctx context.Context, user domain.User) error {
	if r.mapping == nil {
		mapping, err := fetchTypeMapping(ctx, r.docs.client, user, r.docs.index, r.docs.name)
		if err != nil {
			return err
		}
		r.mapping = &mapping
	}
	if r.source == nil {
		var h hit
		if err := r.docs.client.Get(ctx, user, docsPath(r.docs.index, r.docs.name, r.id), nil, &h); err != nil {
			return err
		}
		r.source = h.Source
		if r.source == nil {
			r.source = map[string]any{}
		}
	}
	return nil
}

// Properties returns every mapped field with the document's value.
func (r *Record) Properties(ctx context.Context, user domain.User) (map[string]domain.Property, error) {
	if err := r.load(ctx, user); err != nil {
		return nil, err
	}
	props := make(map[string]domain.Property, len(r.mapping.Properties))
	for name, f := range r.mapping.Properties {
		props[name] = domain.NewSimpleProperty(name, propertyType(f), r.source[name])
	}
	return props, nil
}

// InsertAction indexes a new document.
type InsertAction struct {
	domain.ActionBase
	docs *Type
}

// Args declares the document properties as an open struct.
func (a *InsertAction) Args(ctx context.Context, user domain.User) (domain.Schema, error) {
	mapping, err := fetchTypeMapping(ctx, a.docs.client, user, a.docs.index, a.docs.name)
	if err != nil {
		return nil, err
	}
	fields, _ := schemaOf(mapping.Properties)
	return domain.Schema{
		"properties": {Label: "Properties", Type: domain.StructOf(fields, true)},
	}, nil
}

// Invoke indexes the properties as a new document. The reserved _id field is
// dropped.
func (a *InsertAction) Invoke(ctx context.Context, args map[string]any, user domain.User) (any, error) {
	doc := map[string]any{}
	if props, ok := args["properties"].(map[string]any); ok {
		for k, v := range props {
			doc[k] = v
		}
	}
	delete(doc, "_id")

	var resp map[string]any
	if err := a.docs.client.Post(ctx, user, docsPath(a.docs.index, a.docs.name), doc, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// UpdateAction merges properties into every document matching keys.
type UpdateAction struct {
	domain.ActionBase
	docs *Type
}

// Args declares open keys and the document properties.
func (a *UpdateAction) Args(ctx context.Context, user domain.User) (domain.Schema, error) {
	mapping, err := fetchTypeMapping(ctx, a.docs.client, user, a.docs.index, a.docs.name)
	if err != nil {
		return nil, err
	}
	fields, _ := schemaOf(mapping.Properties)
	return domain.Schema{
		"keys":       {Label: "Keys", Type: domain.StructOf(nil, true)},
		"properties": {Label: "Properties", Type: domain.StructOf(fields, true)},
	}, nil
}

// Invoke rewrites each matching document independently and reports the
// outcome per document.
func (a *UpdateAction) Invoke(ctx context.Context, args map[string]any, user domain.User) (any, error) {
	keys, properties := engine.UpdateArgs(args)
	if len(keys) == 0 {
		return nil, &domain.ValidationError{Field: "keys", Reason: "at least one non-empty key is required"}
	}

	m, err := a.docs.match(ctx, keys, user)
	if err != nil {
		return nil, err
	}

	sources := make(map[string]map[string]any, len(m.hits))
	ids := make([]string, len(m.hits))
	for i, h := range m.hits {
		ids[i] = h.ID
		sources[h.ID] = h.Source
	}
	return m.result(engine.WriteEach(ctx, ids, func(ctx context.Context, id string) error {
		doc := map[string]any{}
		for k, v := range sources[id] {
			doc[k] = v
		}
		for k, v := range properties {
			doc[k] = v
		}
		delete(doc, "_id")
		return a.docs.client.Post(ctx, user, docsPath(a.docs.index, a.docs.name, id), doc, nil)
	})), nil
}

// DeleteAction removes every document matching keys.
type DeleteAction struct {
	domain.ActionBase
	docs *Type
}

// Args declares open keys.
func (a *DeleteAction) Args(context.Context, domain.User) (domain.Schema, error) {
	return domain.Schema{
		"keys": {Label: "Keys", Type: domain.StructOf(nil, true), Required: true},
	}, nil
}

// Invoke deletes each matching document independently.
func (a *DeleteAction) Invoke(ctx context.Context, args map[string]any, user domain.User) (any, error) {
	keys, _ := engine.UpdateArgs(args)
	if len(keys) == 0 {
		return nil, &domain.ValidationError{Field: "keys", Reason: "at least one non-empty key is required"}
	}

	m, err := a.docs.match(ctx, keys, user)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(m.hits))
	for i, h := range m.hits {
		ids[i] = h.ID
	}
	return m.result(engine.WriteEach(ctx, ids, func(ctx context.Context, id string) error {
		return a.docs.client.Delete(ctx, user, docsPath(a.docs.index, a.docs.name, id), nil)
	})), nil
}

// matches is the outcome of a match: the documents read and the total the
// cluster reported.
type matches struct {
	hits   []hit
	total  int
	window int
}

// result completes a bulk result with the matches that were never read.
func (m *matches) result(r *domain.BulkResult) *domain.BulkResult {
	if skipped := m.total - len(m.hits); skipped > 0 {
		r.Matched = m.total
		r.Failures = append(r.Failures, domain.RecordFailure{
			Reason: fmt.Sprintf("%d matching documents beyond the first %d were not written", skipped, m.window),
		})
	}
	return r
}

// match returns the documents whose fields equal every key exactly. It
// reads the matches page by page in index order, up to the search window of
// the cluster.
func (t *Type) match(ctx context.Context, keys domain.Filter, user domain.User) (*matches, error) {
	terms := make([]map[string]any, 0, len(keys))
	for _, k := range keys.Keys() {
		terms = append(terms, map[string]any{"term": map[string]any{k: keys[k]}})
	}

	batch := t.matchBatch
	if batch <= 0 {
		batch = matchBatchSize
	}
	window := t.matchWindow
	if window <= 0 {
		window = maxResultWindow
	}

	m := &matches{window: window}
	for len(m.hits) < window {
		size := min(batch, window-len(m.hits))
		body := map[string]any{
			"query": map[string]any{"bool": map[string]any{"filter": terms}},
			"sort":  []string{"_doc"},
			"from":  len(m.hits),
			"size":  size,
		}

		var resp searchResponse
		if err := t.client.Post(ctx, user, searchPath(t.index, t.name), body, &resp); err != nil {
			return nil, fmt.Errorf("match documents: %w", err)
		}
		m.hits = append(m.hits, resp.Hits.Hits...)
		m.total = resp.total()
		if len(resp.Hits.Hits) < size || len(m.hits) >= m.total {
			break
		}
	}
	if m.total < len(m.hits) {
		m.total = len(m.hits)
	}
	return m, nil
}
