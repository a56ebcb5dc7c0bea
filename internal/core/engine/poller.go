package engine

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/hub/internal/core/domain"
)

// Poll fetches occurrences of event after cursor. On failure the original
// cursor is returned so that nothing is skipped.
func Poll(
	ctx context.Context,
	event domain.Event,
	cursor domain.EventCursor,
	user domain.User,
) (domain.EventCursor, []domain.Payload, error) {
	next, payloads, err := event.Poll(ctx, cursor, user)
	if err != nil {
		return cursor, nil, err
	}
	return next, payloads, nil
}

// FeedItem is one occurrence of a feed ordered by an increasing id.
type FeedItem struct {
	ID      string
	Payload domain.Payload
}

// FeedFetcher returns the feed items after since, oldest first.
// An empty since requests the feed from its start.
type FeedFetcher func(ctx context.Context, since string) ([]FeedItem, error)

// PollCursorAdvance implements polling for feeds with an increasing item id.
// The cursor is the id of the last delivered item; it does not move when
// nothing new is returned.
func PollCursorAdvance(ctx context.Context, cursor domain.EventCursor, fetch FeedFetcher) (domain.EventCursor, []domain.Payload, error) {
	items, err := fetch(ctx, string(cursor))
	if err != nil {
		return cursor, nil, err
	}
	if len(items) == 0 {
		return cursor, []domain.Payload{}, nil
	}

	payloads := make([]domain.Payload, len(items))
	for i, item := range items {
		payloads[i] = item.Payload
	}
	return domain.EventCursor(items[len(items)-1].ID), payloads, nil
}

// RunSnapshot is the current state of one run (a respondent's progress
// through a flow) as reported by the backend.
type RunSnapshot struct {
	// Key identifies the run across polls.
	Key     string
	Contact string
	Phone   string
	Values  map[string]string
}

// SnapshotFetcher returns the current state of every run.
type SnapshotFetcher func(ctx context.Context) ([]RunSnapshot, error)

const snapshotCursorVersion = 1

type snapshotState struct {
	Version int                 `json:"v"`
	Runs    map[string]runState `json:"runs"`
}

type runState struct {
	Contact string            `json:"contact"`
	Phone   string            `json:"phone"`
	Values  map[string]string `json:"values"`
}

// PollSnapshotDiff implements polling for backends that only expose current
// state. The cursor stores the values last seen per run; a run produces a
// payload carrying only new or changed values, or an empty set of values the
// first time the run is seen.
func PollSnapshotDiff(ctx context.Context, cursor domain.EventCursor, fetch SnapshotFetcher) (domain.EventCursor, []domain.Payload, error) {
	state, err := decodeSnapshotState(cursor)
	if err != nil {
		return cursor, nil, err
	}

	runs, err := fetch(ctx)
	if err != nil {
		return cursor, nil, err
	}

	payloads := []domain.Payload{}
	for _, run := range runs {
		prev, seen := state.Runs[run.Key]

		delta := map[string]any{}
		for label, value := range run.Values {
			if old, ok := prev.Values[label]; !ok || old != value {
				delta[label] = value
			}
		}
		if seen && len(delta) == 0 {
			continue
		}

		payloads = append(payloads, domain.Payload{
			"contact": run.Contact,
			"phone":   run.Phone,
			"values":  delta,
		})

		merged := make(map[string]string, len(prev.Values)+len(run.Values))
		for k, v := range prev.Values {
			merged[k] = v
		}
		for k, v := range run.Values {
			merged[k] = v
		}
		state.Runs[run.Key] = runState{Contact: run.Contact, Phone: run.Phone, Values: merged}
	}

	next, err := state.encode()
	if err != nil {
		return cursor, nil, err
	}
	return next, payloads, nil
}

func (s *snapshotState) encode() (domain.EventCursor, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode snapshot cursor: %w", err)
	}
	return domain.EventCursor(base64.URLEncoding.EncodeToString(data)), nil
}

func decodeSnapshotState(cursor domain.EventCursor) (*snapshotState, error) {
	state := &snapshotState{Version: snapshotCursorVersion, Runs: map[string]runState{}}
	if cursor == "" {
		return state, nil
	}

	data, err := base64.URLEncoding.DecodeString(string(cursor))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidCursor, err)
	}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidCursor, err)
	}
	if state.Version != snapshotCursorVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", domain.ErrInvalidCursor, state.Version)
	}
	if state.Runs == nil {
		state.Runs = map[string]runState{}
	}
	return state, nil
}
