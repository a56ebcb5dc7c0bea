package httpclient

import (
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// Pool hands out connector clients. Clients of the same connector share one
// resty client, and with it the transport and its idle connections, across
// the per-request connector trees. They also share the connector's rate
// limiter.
type Pool struct {
	limiters *Limiters

	mu      sync.Mutex
	clients map[string]pooledClient
}

// pooledClient is the resty client of one connector and the settings it was
// built with.
type pooledClient struct {
	baseURL string
	timeout time.Duration
	resty   *resty.Client
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{
		limiters: NewLimiters(),
		clients:  make(map[string]pooledClient),
	}
}

// Client returns a client for the connector. The underlying resty client is
// rebuilt when the base URL or timeout of the connector changed. Options
// with a custom Transport always get a fresh client.
func (p *Pool) Client(connectorID string, opts Options, rps float64, burst int) *Client {
	opts.Limiter = p.limiters.For(connectorID, rps, burst)
	if opts.Transport != nil {
		return New(opts)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	p.mu.Lock()
	pc, ok := p.clients[connectorID]
	if !ok || pc.baseURL != opts.BaseURL || pc.timeout != opts.Timeout {
		pc = pooledClient{baseURL: opts.BaseURL, timeout: opts.Timeout, resty: newResty(opts)}
		p.clients[connectorID] = pc
	}
	p.mu.Unlock()

	auth := opts.Auth
	if auth == nil {
		auth = NoAuth{}
	}
	return &Client{resty: pc.resty, auth: auth, limiter: opts.Limiter}
}
