// Package httpclient is the HTTP client shared by the backend connectors.
// It applies per-connector rate limits, authentication and timeouts, and
// maps transport failures and error responses onto the hub's error kinds.
package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/hub/internal/core/domain"
	"github.com/custodia-labs/hub/internal/logger"
)

const (
	// DefaultTimeout is the default backend request timeout.
	DefaultTimeout = 30 * time.Second

	// userAgent identifies the hub to backends.
	userAgent = "connector-hub"
)

// Options configures a Client.
type Options struct {
	// BaseURL is prefixed to relative request paths.
	BaseURL string

	// Timeout bounds each request. Zero selects DefaultTimeout.
	Timeout time.Duration

	// Auth decorates requests. Nil sends requests anonymously.
	Auth Authenticator

	// Limiter throttles requests. Nil disables throttling.
	Limiter *rate.Limiter

	// Transport replaces the underlying round tripper (tests).
	Transport http.RoundTripper
}

// Client performs JSON requests against one backend.
type Client struct {
	resty   *resty.Client
	auth    Authenticator
	limiter *rate.Limiter
}

// New creates a client from options.
func New(opts Options) *Client {
	auth := opts.Auth
	if auth == nil {
		auth = NoAuth{}
	}
	return &Client{resty: newResty(opts), auth: auth, limiter: opts.Limiter}
}

func newResty(opts Options) *resty.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	rc := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent)
	if opts.Transport != nil {
		rc.SetTransport(opts.Transport)
	}
	rc.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug("backend %s %s -> %d (%s)", resp.Request.Method, resp.Request.URL, resp.StatusCode(), resp.Time())
		return nil
	})
	return rc
}

// Get fetches path and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, user domain.User, path string, query map[string]string, out any) error {
	return c.do(ctx, user, http.MethodGet, path, query, nil, out)
}

// Post sends body as JSON to path and decodes the response into out.
// A nil out discards the response body.
func (c *Client) Post(ctx context.Context, user domain.User, path string, body, out any) error {
	return c.do(ctx, user, http.MethodPost, path, nil, body, out)
}

// Put sends body as JSON to path and decodes the response into out.
func (c *Client) Put(ctx context.Context, user domain.User, path string, body, out any) error {
	return c.do(ctx, user, http.MethodPut, path, nil, body, out)
}

// Delete issues a DELETE for path.
func (c *Client) Delete(ctx context.Context, user domain.User, path string, out any) error {
	return c.do(ctx, user, http.MethodDelete, path, nil, nil, out)
}

func (c *Client) do(
	ctx context.Context,
	user domain.User,
	method, path string,
	query map[string]string,
	body, out any,
) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: rate limit wait: %w", domain.ErrBackendUnavailable, err)
		}
	}

	req := c.resty.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if err := c.auth.Authenticate(ctx, req, user); err != nil {
		return err
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s %s: %w", domain.ErrBackendUnavailable, method, path, err)
	}
	if resp.IsError() || resp.StatusCode() >= http.StatusMultipleChoices {
		return &APIError{
			StatusCode: resp.StatusCode(),
			Message:    messageFrom(resp.Status(), resp.Body()),
			URL:        resp.Request.URL,
		}
	}

	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %w", domain.ErrBackendUnavailable, method, path, err)
	}
	return nil
}
