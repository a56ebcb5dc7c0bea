package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/hub/internal/core/domain"
	"github.com/custodia-labs/hub/internal/core/ports/driven"
	"github.com/custodia-labs/hub/internal/core/ports/driving"
	"github.com/custodia-labs/hub/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.PollScheduler = (*Scheduler)(nil)

// Scheduler polls subscribed events at their configured intervals and
// enqueues every produced payload for dispatch, like an inbound
// notification.
type Scheduler struct {
	config domain.SchedulerConfig
	poller driving.SinkPoller
	queue  driven.TaskQueue

	mu      sync.Mutex
	polls   map[domain.CursorKey]*domain.ScheduledPoll
	results []domain.PollResult
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// maxResults bounds the in-memory run history.
const maxResults = 100

// NewScheduler creates a scheduler with configuration.
func NewScheduler(config domain.SchedulerConfig, poller driving.SinkPoller, queue driven.TaskQueue) *Scheduler {
	return &Scheduler{
		config: config,
		poller: poller,
		queue:  queue,
		polls:  make(map[domain.CursorKey]*domain.ScheduledPoll),
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.initialisePolls()
	stopCh := s.stopCh
	s.mu.Unlock()

	return s.run(ctx, stopCh)
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	// Wait for running polls to complete
	s.wg.Wait()

	return nil
}

// Polls returns a snapshot of the scheduled polls.
func (s *Scheduler) Polls() []domain.ScheduledPoll {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ScheduledPoll, 0, len(s.polls))
	for _, p := range s.polls {
		out = append(out, *p)
	}
	return out
}

// Results returns the recent poll results, oldest first.
func (s *Scheduler) Results() []domain.PollResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.PollResult(nil), s.results...)
}

// initialisePolls must be called with mu held.
func (s *Scheduler) initialisePolls() {
	for _, sub := range s.config.Subscriptions {
		if sub.Interval <= 0 {
			sub.Interval = domain.DefaultPollInterval
		}
		key := sub.Key()
		if existing, ok := s.polls[key]; ok {
			existing.PollSubscription = sub
			continue
		}
		s.polls[key] = &domain.ScheduledPoll{PollSubscription: sub}
	}
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context, stopCh chan struct{}) error {
	// Check for due polls immediately on startup
	s.checkAndRunDuePolls(ctx)

	tick := s.config.Tick
	if tick <= 0 {
		tick = time.Minute
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDuePolls(ctx)
		}
	}
}

// checkAndRunDuePolls starts every due poll that is not already running.
func (s *Scheduler) checkAndRunDuePolls(ctx context.Context) {
	now := time.Now()

	s.mu.Lock()
	var due []*domain.ScheduledPoll
	var subs []domain.PollSubscription
	for _, p := range s.polls {
		if p.Due(now) {
			// Push NextRun out while the poll runs so the next tick skips it.
			p.NextRun = now.Add(p.Interval)
			due = append(due, p)
			subs = append(subs, p.PollSubscription)
		}
	}
	s.mu.Unlock()

	for i, p := range due {
		s.runPoll(ctx, p, subs[i])
	}
}

// runPoll executes a single poll.
func (s *Scheduler) runPoll(ctx context.Context, poll *domain.ScheduledPoll, sub domain.PollSubscription) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		result := domain.PollResult{Key: sub.Key(), StartedAt: time.Now()}

		n, err := s.pollAndEnqueue(ctx, sub)

		result.EndedAt = time.Now()
		result.Payloads = n
		result.Success = err == nil
		if err != nil {
			result.Error = err.Error()
			logger.Error("scheduler: poll %s failed: %v", result.Key, err)
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		poll.LastRun = result.StartedAt
		poll.NextRun = result.EndedAt.Add(poll.Interval)
		if err != nil {
			poll.LastError = err.Error()
		} else {
			poll.LastError = ""
			poll.LastSuccess = result.EndedAt
		}
		s.results = append(s.results, result)
		if len(s.results) > maxResults {
			s.results = s.results[len(s.results)-maxResults:]
		}
	}()
}

// pollAndEnqueue polls sub and enqueues its payloads. The cursor moves only
// after every payload is queued; a failed enqueue re-delivers the whole poll
// next time, so payloads queued before the failure may be seen twice.
func (s *Scheduler) pollAndEnqueue(ctx context.Context, sub domain.PollSubscription) (int, error) {
	path := domain.ParsePath(sub.EventPath).String()
	return s.poller.PollTo(ctx, sub.ConnectorID, sub.EventPath, func(ctx context.Context, payloads []domain.Payload) error {
		if s.queue == nil {
			return nil
		}
		for _, payload := range payloads {
			data, err := json.Marshal(payload)
			if err != nil {
				return fmt.Errorf("encode payload: %w", err)
			}
			msg := domain.NotifyMessage{
				ID:          uuid.NewString(),
				ConnectorID: sub.ConnectorID,
				Path:        path,
				Payload:     data,
				ReceivedAt:  time.Now().UTC(),
			}
			if err := s.queue.Enqueue(ctx, msg); err != nil {
				return fmt.Errorf("enqueue payload: %w", err)
			}
		}
		return nil
	})
}
