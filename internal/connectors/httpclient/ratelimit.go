package httpclient

import (
	"sync"

	"golang.org/x/time/rate"
)

const (
	// DefaultRequestsPerSecond is the sustained upstream rate per connector.
	DefaultRequestsPerSecond = 10.0

	// DefaultBurst is the maximum burst size per connector.
	DefaultBurst = 20
)

// Limiters hands out one token bucket per connector so that limits hold
// across the per-request connector trees.
type Limiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewLimiters creates an empty limiter registry.
func NewLimiters() *Limiters {
	return &Limiters{limiters: make(map[string]*rate.Limiter)}
}

// For returns the limiter of the connector, creating it on first use.
// Non-positive values select the defaults. A changed rate is applied to the
// existing limiter.
func (l *Limiters) For(connectorID string, rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	if burst <= 0 {
		burst = DefaultBurst
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if lim, ok := l.limiters[connectorID]; ok {
		if lim.Limit() != rate.Limit(rps) {
			lim.SetLimit(rate.Limit(rps))
		}
		if lim.Burst() != burst {
			lim.SetBurst(burst)
		}
		return lim
	}
	lim := rate.NewLimiter(rate.Limit(rps), burst)
	l.limiters[connectorID] = lim
	return lim
}
