package engine

import (
	"context"

	"github.com/custodia-labs/hub/internal/core/domain"
)

// DefaultPageSize applies when neither the caller, the configuration nor the
// entity set choose a page size.
const DefaultPageSize = 50

// QueryEngine lists entity sets one page at a time.
type QueryEngine struct {
	// PageSize is the configured page size. Zero defers to the entity set's
	// own default, then to DefaultPageSize.
	PageSize int
}

// NewQueryEngine creates a query engine with the given configured page size.
func NewQueryEngine(pageSize int) *QueryEngine {
	return &QueryEngine{PageSize: pageSize}
}

// List returns one page of set's members matching filter. NextPage is set,
// using pageURL, only when the backend reports more members.
func (e *QueryEngine) List(
	ctx context.Context,
	set domain.EntitySet,
	filter domain.Filter,
	user domain.User,
	opts domain.ListOptions,
	pageURL domain.PageURLBuilder,
) (*domain.Page, error) {
	page := opts.Page
	if page < 1 {
		page = 1
	}
	size := e.pageSize(set, opts)

	res, err := set.Query(ctx, domain.QueryRequest{
		Filter: filter.Compact(),
		Offset: (page - 1) * size,
		Limit:  size,
	}, user)
	if err != nil {
		return nil, err
	}

	items, more := res.Items, res.More
	if len(items) > size {
		items, more = items[:size], true
	}

	out := &domain.Page{Items: make([]map[string]any, 0, len(items))}
	for _, item := range items {
		rendered, err := RenderItem(ctx, item, user)
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, rendered)
	}

	if more && pageURL != nil {
		out.NextPage = pageURL(set.Path(), page+1)
	}
	return out, nil
}

func (e *QueryEngine) pageSize(set domain.EntitySet, opts domain.ListOptions) int {
	if opts.PageSize > 0 {
		return opts.PageSize
	}
	if e != nil && e.PageSize > 0 {
		return e.PageSize
	}
	if sizer, ok := set.(domain.PageSizer); ok && sizer.DefaultPageSize() > 0 {
		return sizer.DefaultPageSize()
	}
	return DefaultPageSize
}

// RenderItem flattens a listing item. Entities render as a map of their
// scalar property values; anything else renders as its label and path.
func RenderItem(ctx context.Context, item domain.Node, user domain.User) (map[string]any, error) {
	entity, ok := item.(domain.Entity)
	if !ok {
		return map[string]any{
			"label": item.Label(),
			"path":  item.Path().String(),
		}, nil
	}

	props, err := entity.Properties(ctx, user)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(props))
	for name, prop := range props {
		if simple, ok := prop.(*domain.SimpleProperty); ok {
			out[name] = simple.Value
		}
	}
	return out, nil
}
