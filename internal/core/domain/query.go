package domain

import "sort"

// Filter maps property names to the values members must equal.
type Filter map[string]any

// Keys returns the filter's keys in sorted order so that backend
// translations are deterministic.
func (f Filter) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Compact returns a copy without null or empty-string values. Such values
// mean "no constraint" in filters and "leave unchanged" in updates.
func (f Filter) Compact() Filter {
	out := make(Filter, len(f))
	for k, v := range f {
		if IsBlank(v) {
			continue
		}
		out[k] = v
	}
	return out
}

// IsBlank reports whether v is nil or the empty string.
func IsBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// QueryRequest is a listing request issued to an EntitySet.
type QueryRequest struct {
	// Filter restricts members by property equality.
	Filter Filter

	// Offset is the number of matching members to skip.
	Offset int

	// Limit caps the number of members returned. Non-positive means no cap.
	Limit int
}

// Unbounded reports whether the request asks for every member.
func (r QueryRequest) Unbounded() bool {
	return r.Limit <= 0
}

// QueryResult is one window of an EntitySet listing.
type QueryResult struct {
	// Items are Entities or nested EntitySets.
	Items []Node

	// More reports whether members exist beyond this window.
	More bool
}

// PaginateSlice applies a request's offset and limit to an already
// materialised member list, for backends without server-side paging.
func PaginateSlice(items []Node, req QueryRequest) *QueryResult {
	if req.Offset >= len(items) {
		return &QueryResult{Items: []Node{}}
	}
	if req.Offset > 0 {
		items = items[req.Offset:]
	}
	if req.Unbounded() || len(items) <= req.Limit {
		return &QueryResult{Items: items}
	}
	return &QueryResult{Items: items[:req.Limit], More: true}
}

// PageSizer is optionally implemented by an EntitySet that prefers its
// own default page size.
type PageSizer interface {
	DefaultPageSize() int
}

// ListOptions selects a page of a listing.
type ListOptions struct {
	// Page is 1-based. Values below 1 select the first page.
	Page int

	// PageSize overrides the configured page size when positive.
	PageSize int
}

// Page is one page of rendered listing items.
type Page struct {
	Items    []map[string]any `json:"items"`
	NextPage string           `json:"next_page,omitempty"`
}

// RecordFailure describes one record that could not be written.
type RecordFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// BulkResult summarises a best-effort multi-record write.
type BulkResult struct {
	Matched   int             `json:"matched"`
	Succeeded int             `json:"succeeded"`
	Failures  []RecordFailure `json:"failures,omitempty"`
}

// OK reports whether every matched record was written.
func (r *BulkResult) OK() bool {
	return len(r.Failures) == 0
}
