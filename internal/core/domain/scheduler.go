package domain

import "time"

// PollSubscription asks the scheduler to poll one event periodically.
type PollSubscription struct {
	// ConnectorID identifies the connector owning the event.
	ConnectorID string

	// EventPath is the raw path of the event node.
	EventPath string

	// Interval defines how often the event should be polled.
	Interval time.Duration

	// Enabled indicates whether the subscription is active.
	Enabled bool
}

// Key returns the cursor key the subscription polls under.
func (s PollSubscription) Key() CursorKey {
	return CursorKey{ConnectorID: s.ConnectorID, EventPath: ParsePath(s.EventPath).String()}
}

// ScheduledPoll tracks the run state of a subscription.
type ScheduledPoll struct {
	PollSubscription

	// LastRun is when the poll last ran.
	LastRun time.Time

	// NextRun is when the poll should run next.
	NextRun time.Time

	// LastError contains the last error message, if any.
	LastError string

	// LastSuccess is when the poll last completed successfully.
	LastSuccess time.Time
}

// Due reports whether the poll should run at now.
func (p *ScheduledPoll) Due(now time.Time) bool {
	return p.Enabled && !p.NextRun.After(now)
}

// PollResult represents the outcome of one scheduled poll.
type PollResult struct {
	// Key identifies which event was polled.
	Key CursorKey

	// StartedAt is when the poll started.
	StartedAt time.Time

	// EndedAt is when the poll completed.
	EndedAt time.Time

	// Success indicates whether the poll completed without error.
	Success bool

	// Error contains the error message if Success is false.
	Error string

	// Payloads is the number of occurrences enqueued.
	Payloads int
}

// SchedulerConfig holds scheduler configuration.
type SchedulerConfig struct {
	// Enabled is the master switch for the scheduler.
	Enabled bool

	// Tick is how often due subscriptions are checked.
	Tick time.Duration

	// Subscriptions lists the events to poll.
	Subscriptions []PollSubscription
}

// DefaultSchedulerConfig returns sensible defaults for the scheduler.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled: true,
		Tick:    1 * time.Minute,
	}
}

// DefaultPollInterval applies to subscriptions without an explicit interval.
const DefaultPollInterval = 5 * time.Minute
