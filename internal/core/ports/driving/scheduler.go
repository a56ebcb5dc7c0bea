package driving

import (
	"context"

	"github.com/custodia-labs/hub/internal/core/domain"
)

// PollScheduler runs configured poll subscriptions in the background.
type PollScheduler interface {
	// Start begins the scheduler loop. This method blocks until Stop is
	// called or ctx is done.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the scheduler.
	Stop() error
}

// PayloadSink receives the payloads of one poll before its cursor is saved.
type PayloadSink func(ctx context.Context, payloads []domain.Payload) error

// SinkPoller polls events into a sink.
type SinkPoller interface {
	// PollTo polls the event at path and hands the payloads to sink. The
	// cursor advances only when sink returns nil, so a failed sink sees the
	// same payloads again on the next poll.
	PollTo(ctx context.Context, connectorID, path string, sink PayloadSink) (int, error)
}
