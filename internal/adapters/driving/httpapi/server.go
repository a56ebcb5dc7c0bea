package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/custodia-labs/hub/internal/core/domain"
	"github.com/custodia-labs/hub/internal/logger"
)

// Header names read by the adapter.
const (
	UserHeader  = "X-Hub-User"
	TokenHeader = "X-Hub-Token"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 4 << 20

// Server serves the hub HTTP API.
type Server struct {
	ports  *Ports
	opts   Options
	router *mux.Router
}

// NewServer creates a server for the given ports.
func NewServer(ports *Ports, opts Options) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	s := &Server{
		ports: ports,
		opts:  opts,
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("http api listening on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(requestMiddleware(s.opts.Metrics))

	r.Handle("/metrics", s.opts.Metrics.Handler()).Methods(http.MethodGet).Name("metrics")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/connectors", s.handleConnectors).Methods(http.MethodGet).Name("connectors")

	api.HandleFunc("/reflect/connectors/{id}", s.handleReflect).Methods(http.MethodGet).Name("reflect")
	api.HandleFunc("/reflect/connectors/{id}/{path:.*}", s.handleReflect).Methods(http.MethodGet).Name("reflect")

	api.HandleFunc("/data/connectors/{id}/{path:.*}", s.handleQuery).Methods(http.MethodGet).Name("query")
	api.HandleFunc("/data/connectors/{id}/{path:.*}", s.handleInsert).Methods(http.MethodPost).Name("insert")
	api.HandleFunc("/data/connectors/{id}/{path:.*}", s.handleUpdate).Methods(http.MethodPut).Name("update")

	api.HandleFunc("/invoke/connectors/{id}/{path:.*}", s.handleInvoke).Methods(http.MethodPost).Name("invoke")

	api.HandleFunc("/poll/connectors/{id}/{path:.*}", s.handlePoll).Methods(http.MethodPost).Name("poll")
	api.HandleFunc("/poll/connectors/{id}/{path:.*}", s.handleReset).Methods(http.MethodDelete).Name("reset")

	api.HandleFunc("/notify/connectors/{id}/{path:.*}", s.handleNotify).Methods(http.MethodPost).Name("notify")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, fmt.Errorf("route %w", domain.ErrNotFound))
	})
	return r
}

// userFrom reads the caller's identity.
func userFrom(r *http.Request) domain.User {
	email := strings.TrimSpace(r.Header.Get(UserHeader))
	return domain.User{ID: email, Email: email}
}

// baseURL returns the configured base URL or the one the request came in on.
func (s *Server) baseURL(r *http.Request) string {
	if s.opts.BaseURL != "" {
		return strings.TrimRight(s.opts.BaseURL, "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

func nodeURL(base, route, connectorID string, path domain.Path) string {
	u := base + "/api/" + route + "/connectors/" + url.PathEscape(connectorID)
	for _, seg := range path.Segments() {
		u += "/" + url.PathEscape(seg.String())
	}
	return u
}

// urlBuilders returns the reflect and page link builders for a request.
func (s *Server) urlBuilders(r *http.Request, connectorID string) (domain.URLBuilder, domain.PageURLBuilder) {
	base := s.baseURL(r)
	reflectURL := func(p domain.Path) string {
		return nodeURL(base, "reflect", connectorID, p)
	}
	// Page links keep the filter and page size of the request.
	query := r.URL.Query()
	pageURL := func(p domain.Path, page int) string {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("page", strconv.Itoa(page))
		return nodeURL(base, "data", connectorID, p) + "?" + q.Encode()
	}
	return reflectURL, pageURL
}

func notImplemented(w http.ResponseWriter, what string) {
	writeJSON(w, http.StatusNotImplemented, errorBody{Error: what + " not available", Kind: "not_implemented"})
}

// decodeObject reads a JSON object body. An empty body decodes to an empty map.
func decodeObject(r *http.Request) (map[string]any, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", domain.ErrInvalidInput, err)
	}
	obj := map[string]any{}
	if strings.TrimSpace(string(data)) == "" {
		return obj, nil
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("%w: body must be a JSON object: %v", domain.ErrInvalidInput, err)
	}
	return obj, nil
}

func (s *Server) handleConnectors(w http.ResponseWriter, r *http.Request) {
	if s.ports.Connectors == nil {
		notImplemented(w, "connector listing")
		return
	}
	connectors, err := s.ports.Connectors.List(r.Context(), userFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}

	type connectorInfo struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		Kind       string `json:"kind"`
		Shared     bool   `json:"shared"`
		ReflectURL string `json:"reflect_url"`
	}
	base := s.baseURL(r)
	infos := make([]connectorInfo, len(connectors))
	for i, c := range connectors {
		infos[i] = connectorInfo{
			ID:         c.ID,
			Name:       c.Name,
			Kind:       c.Kind,
			Shared:     c.Shared,
			ReflectURL: nodeURL(base, "reflect", c.ID, domain.Path{}),
		}
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleReflect(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	reflectURL, _ := s.urlBuilders(r, vars["id"])

	desc, err := s.ports.Reflect.Reflect(r.Context(), vars["id"], vars["path"], userFrom(r), reflectURL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, desc)
}

// listOptions reads page and page_size; every other query parameter is a filter.
func listOptions(r *http.Request) (domain.Filter, domain.ListOptions, error) {
	var opts domain.ListOptions
	filter := domain.Filter{}
	for key, values := range r.URL.Query() {
		if len(values) == 0 {
			continue
		}
		switch key {
		case "page", "page_size":
			n, err := strconv.Atoi(values[0])
			if err != nil || n < 0 {
				return nil, opts, fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
			}
			if key == "page" {
				opts.Page = n
			} else {
				opts.PageSize = n
			}
		default:
			filter[key] = values[0]
		}
	}
	return filter, opts, nil
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if s.ports.Query == nil {
		notImplemented(w, "query")
		return
	}
	vars := mux.Vars(r)
	filter, opts, err := listOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	_, pageURL := s.urlBuilders(r, vars["id"])

	page, err := s.ports.Query.Query(r.Context(), vars["id"], vars["path"], filter, opts, userFrom(r), pageURL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	if s.ports.Data == nil {
		notImplemented(w, "data writes")
		return
	}
	vars := mux.Vars(r)
	properties, err := decodeObject(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.ports.Data.Insert(r.Context(), vars["id"], vars["path"], properties, userFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// updateRequest is the PUT body on data paths.
type updateRequest struct {
	Keys           map[string]any `json:"keys"`
	Properties     map[string]any `json:"properties"`
	CreateOrUpdate bool           `json:"create_or_update"`
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if s.ports.Data == nil {
		notImplemented(w, "data writes")
		return
	}
	vars := mux.Vars(r)

	var req updateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: body must be {keys, properties}: %v", domain.ErrInvalidInput, err))
		return
	}
	if v := r.URL.Query().Get("create_or_update"); v != "" {
		req.CreateOrUpdate, _ = strconv.ParseBool(v)
	}

	result, err := s.ports.Data.Update(r.Context(), vars["id"], vars["path"], req.Keys, req.Properties, req.CreateOrUpdate, userFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	if s.ports.Invoke == nil {
		notImplemented(w, "invoke")
		return
	}
	vars := mux.Vars(r)
	args, err := decodeObject(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.ports.Invoke.Invoke(r.Context(), vars["id"], vars["path"], args, userFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}

func (s *Server) handlePoll(w http.ResponseWriter, r *http.Request) {
	if s.ports.Poll == nil {
		notImplemented(w, "poll")
		return
	}
	vars := mux.Vars(r)

	payloads, err := s.ports.Poll.Poll(r.Context(), vars["id"], vars["path"])
	if err != nil {
		writeError(w, err)
		return
	}
	if payloads == nil {
		payloads = []domain.Payload{}
	}
	writeJSON(w, http.StatusOK, payloads)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if s.ports.Poll == nil {
		notImplemented(w, "poll")
		return
	}
	vars := mux.Vars(r)

	if err := s.ports.Poll.Reset(r.Context(), vars["id"], vars["path"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	if s.ports.Notify == nil {
		notImplemented(w, "notify")
		return
	}
	vars := mux.Vars(r)
	token := r.Header.Get(TokenHeader)
	if token == "" {
		token = r.URL.Query().Get("token")
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, fmt.Errorf("%w: reading body: %v", domain.ErrInvalidInput, err))
		return
	}

	msg, err := s.ports.Notify.Notify(r.Context(), vars["id"], vars["path"], token, body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"id": msg.ID})
}
