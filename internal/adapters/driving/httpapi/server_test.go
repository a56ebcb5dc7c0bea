package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/hub/internal/core/domain"
	"github.com/custodia-labs/hub/internal/metrics"
)

func newTestServer(t *testing.T, hub *mockHub, opts Options) http.Handler {
	t.Helper()
	s, err := NewServer(hub.ports(), opts)
	require.NoError(t, err)
	return s.Handler()
}

func do(h http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestNewServer_RequiresReflect(t *testing.T) {
	_, err := NewServer(&Ports{}, Options{})
	assert.ErrorIs(t, err, ErrMissingReflectService)
}

func TestReflect(t *testing.T) {
	hub := &mockHub{descriptor: &domain.EntityDescriptor{Label: "Search", Path: ""}}
	h := newTestServer(t, hub, Options{})

	rec := do(h, http.MethodGet, "http://hub.test/api/reflect/connectors/es", "", UserHeader, "alice@example.org")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Search", decode(t, rec)["label"])
	assert.Equal(t, "es", hub.last.connectorID)
	assert.Equal(t, "", hub.last.path)
	assert.Equal(t, "alice@example.org", hub.last.user.Email)

	// Links are derived from the request host.
	require.NotNil(t, hub.urls)
	assert.Equal(t, "http://hub.test/api/reflect/connectors/es/indices/logs",
		hub.urls(domain.ParsePath("indices/logs")))
	assert.Equal(t, "http://hub.test/api/reflect/connectors/es", hub.urls(domain.ParsePath("")))

	rec = do(h, http.MethodGet, "http://hub.test/api/reflect/connectors/es/indices/logs/types/$actions/insert", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "indices/logs/types/$actions/insert", hub.last.path)
}

func TestReflect_BaseURLOption(t *testing.T) {
	hub := &mockHub{descriptor: &domain.EntityDescriptor{}}
	h := newTestServer(t, hub, Options{BaseURL: "https://hub.example.org/"})

	rec := do(h, http.MethodGet, "/api/reflect/connectors/es/indices", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://hub.example.org/api/reflect/connectors/es/indices", hub.urls(domain.ParsePath("indices")))
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"not found", fmt.Errorf("segment x: %w", domain.ErrNotFound), http.StatusNotFound, "not_found"},
		{"unsupported", domain.ErrUnsupportedOperation, http.StatusBadRequest, "unsupported_operation"},
		{"validation", &domain.ValidationError{Field: "properties.age", Reason: "expected integer"}, http.StatusUnprocessableEntity, "validation"},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"backend", fmt.Errorf("es: %w", domain.ErrBackendUnavailable), http.StatusBadGateway, "backend_unavailable"},
		{"invalid input", domain.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
		{"connector config", domain.ErrConnectorConfig, http.StatusInternalServerError, "connector_config"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := &mockHub{err: tt.err}
			h := newTestServer(t, hub, Options{})

			rec := do(h, http.MethodGet, "/api/reflect/connectors/es/x", "")
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.kind, decode(t, rec)["kind"])
		})
	}
}

func TestErrorMapping_ValidationField(t *testing.T) {
	hub := &mockHub{err: &domain.ValidationError{Field: "properties.age", Reason: "expected integer"}}
	h := newTestServer(t, hub, Options{})

	rec := do(h, http.MethodPost, "/api/invoke/connectors/es/indices/a/types/b/$actions/insert", `{}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "properties.age", body["field"])
	assert.Equal(t, "expected integer", body["reason"])
}

func TestQuery(t *testing.T) {
	hub := &mockHub{page: &domain.Page{
		Items:    []map[string]any{{"name": "a"}},
		NextPage: "http://hub.test/api/data/connectors/es/indices?page=2",
	}}
	h := newTestServer(t, hub, Options{})

	rec := do(h, http.MethodGet, "http://hub.test/api/data/connectors/es/indices/logs/types/doc?page=2&page_size=5&status=open", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "indices/logs/types/doc", hub.last.path)
	assert.Equal(t, domain.ListOptions{Page: 2, PageSize: 5}, hub.last.opts)
	assert.Equal(t, domain.Filter{"status": "open"}, hub.last.filter)
	assert.Equal(t, "http://hub.test/api/data/connectors/es/indices/logs/types/doc?page=3&page_size=5&status=open",
		hub.pageURL(domain.ParsePath("indices/logs/types/doc"), 3))

	body := decode(t, rec)
	assert.Len(t, body["items"], 1)
	assert.Equal(t, "http://hub.test/api/data/connectors/es/indices?page=2", body["next_page"])
}

func TestQuery_PageLinksKeepFilterAndSize(t *testing.T) {
	hub := &mockHub{page: &domain.Page{}}
	h := newTestServer(t, hub, Options{})

	rec := do(h, http.MethodGet, "http://hub.test/api/data/connectors/es/indices/people/types/person?name=bob&page_size=2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	next := hub.pageURL(domain.ParsePath("indices/people/types/person"), 2)
	assert.Equal(t, "http://hub.test/api/data/connectors/es/indices/people/types/person?name=bob&page=2&page_size=2", next)

	// Following the link repeats the same query one page further.
	rec = do(h, http.MethodGet, next, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.Filter{"name": "bob"}, hub.last.filter)
	assert.Equal(t, domain.ListOptions{Page: 2, PageSize: 2}, hub.last.opts)
}

func TestLinks_EscapeSegments(t *testing.T) {
	hub := &mockHub{descriptor: &domain.EntityDescriptor{}, page: &domain.Page{}}
	h := newTestServer(t, hub, Options{})

	rec := do(h, http.MethodGet, "http://hub.test/api/reflect/connectors/es", "")
	require.Equal(t, http.StatusOK, rec.Code)
	path := domain.PathOf(domain.NameSegment("indices"), domain.NameSegment("web logs?#1"), domain.ActionsSegment, domain.NameSegment("insert"))
	link := hub.urls(path)
	assert.Equal(t, "http://hub.test/api/reflect/connectors/es/indices/web%20logs%3F%231/$actions/insert", link)

	rec = do(h, http.MethodGet, link, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "indices/web logs?#1/$actions/insert", hub.last.path)

	rec = do(h, http.MethodGet, "http://hub.test/api/data/connectors/es/indices", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://hub.test/api/data/connectors/es/indices/a%20b?page=2",
		hub.pageURL(domain.ParsePath("indices/a b"), 2))
}

func TestQuery_BadPage(t *testing.T) {
	h := newTestServer(t, &mockHub{}, Options{})

	rec := do(h, http.MethodGet, "/api/data/connectors/es/indices?page=two", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInsertAndUpdate(t *testing.T) {
	hub := &mockHub{result: map[string]any{"_id": "1"}}
	h := newTestServer(t, hub, Options{})

	rec := do(h, http.MethodPost, "/api/data/connectors/es/indices/a/types/b", `{"name":"x"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, map[string]any{"name": "x"}, hub.last.args)

	hub.result = &domain.BulkResult{Matched: 2, Succeeded: 2}
	rec = do(h, http.MethodPut, "/api/data/connectors/es/indices/a/types/b?create_or_update=true",
		`{"keys":{"id":"7"},"properties":{"name":"y"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"id": "7"}, hub.last.keys)
	assert.Equal(t, map[string]any{"name": "y"}, hub.last.args)
	assert.True(t, hub.last.upsert)
	assert.EqualValues(t, 2, decode(t, rec)["matched"])

	rec = do(h, http.MethodPost, "/api/data/connectors/es/indices/a/types/b", `[1,2]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvoke(t *testing.T) {
	hub := &mockHub{result: "queued"}
	h := newTestServer(t, hub, Options{})

	rec := do(h, http.MethodPost, "/api/invoke/connectors/ivr/projects/1/$actions/call",
		`{"channel":"c","number":"123"}`, UserHeader, "bob@example.org")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "projects/1/$actions/call", hub.last.path)
	assert.Equal(t, map[string]any{"channel": "c", "number": "123"}, hub.last.args)
	assert.Equal(t, "queued", decode(t, rec)["result"])

	rec = do(h, http.MethodPost, "/api/invoke/connectors/ivr/projects/1/$actions/call", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{}, hub.last.args, "empty body means no arguments")
}

func TestPollAndReset(t *testing.T) {
	hub := &mockHub{payloads: []domain.Payload{{"id": "1"}}}
	h := newTestServer(t, hub, Options{})

	rec := do(h, http.MethodPost, "/api/poll/connectors/act/cases/$events/new_case", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":"1"}]`, rec.Body.String())
	assert.Equal(t, "cases/$events/new_case", hub.last.path)

	hub.payloads = nil
	rec = do(h, http.MethodPost, "/api/poll/connectors/act/cases/$events/new_case", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(h, http.MethodDelete, "/api/poll/connectors/act/cases/$events/new_case", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestNotify(t *testing.T) {
	hub := &mockHub{}
	h := newTestServer(t, hub, Options{})

	rec := do(h, http.MethodPost, "/api/notify/connectors/ivr/projects/1/call_flows/2/$events/call_finished",
		`{"CallSid":"1"}`, TokenHeader, "s3cret")
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "msg-1", decode(t, rec)["id"])
	assert.Equal(t, "s3cret", hub.last.token)
	assert.Equal(t, `{"CallSid":"1"}`, string(hub.last.body))

	rec = do(h, http.MethodPost, "/api/notify/connectors/ivr/x/$events/y?token=fromquery", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "fromquery", hub.last.token)

	hub.err = domain.ErrUnauthorized
	rec = do(h, http.MethodPost, "/api/notify/connectors/ivr/x/$events/y", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestConnectors(t *testing.T) {
	hub := &mockHub{connectors: []domain.Connector{{ID: "es", Name: "Search", Kind: "elasticsearch"}}}
	h := newTestServer(t, hub, Options{BaseURL: "https://hub.example.org"})

	rec := do(h, http.MethodGet, "/api/connectors", "", UserHeader, "alice@example.org")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":"es","name":"Search","kind":"elasticsearch","shared":false,
		"reflect_url":"https://hub.example.org/api/reflect/connectors/es"}]`, rec.Body.String())
	assert.Equal(t, "alice@example.org", hub.last.user.Email)
}

func TestMissingPortsRespondNotImplemented(t *testing.T) {
	s, err := NewServer(&Ports{Reflect: &mockHub{}}, Options{})
	require.NoError(t, err)

	rec := do(s.Handler(), http.MethodPost, "/api/poll/connectors/a/$events/b", "")
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	h := newTestServer(t, &mockHub{}, Options{})

	rec := do(h, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetrics(t *testing.T) {
	recorder := metrics.New()
	hub := &mockHub{descriptor: &domain.EntityDescriptor{}}
	h := newTestServer(t, hub, Options{Metrics: recorder})

	do(h, http.MethodGet, "/api/reflect/connectors/es", "")

	rec := do(h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `hub_http_requests_total{code="200",route="reflect"} 1`)
}
