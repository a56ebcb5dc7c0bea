package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/hub/internal/core/domain"
)

func newTestNotifyService(queue *mockQueue, connector domain.Connector) *NotifyService {
	svc := NewNotifyService(newMockConnectorStore(connector), newTestFactory(newCaseTree(0)), queue, nil)
	svc.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	svc.newID = func() string { return "msg-1" }
	return svc
}

func TestNotifyService_Enqueues(t *testing.T) {
	queue := &mockQueue{}
	svc := newTestNotifyService(queue, testConnector())

	msg, err := svc.Notify(context.Background(), "act", "cases/$events/pushed", "s3cret", []byte(`{"case": 1}`))
	require.NoError(t, err)

	want := domain.NotifyMessage{
		ID:          "msg-1",
		ConnectorID: "act",
		Path:        "cases/$events/pushed",
		Payload:     json.RawMessage(`{"case": 1}`),
		ReceivedAt:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	assert.Equal(t, want, *msg)
	require.Len(t, queue.messages, 1)
	assert.Equal(t, want, queue.messages[0])
}

func TestNotifyService_EmptyBodyBecomesObject(t *testing.T) {
	for _, body := range [][]byte{nil, []byte(""), []byte("  \n")} {
		queue := &mockQueue{}
		svc := newTestNotifyService(queue, testConnector())

		msg, err := svc.Notify(context.Background(), "act", "cases/$events/pushed", "s3cret", body)
		require.NoError(t, err)
		assert.Equal(t, json.RawMessage("{}"), msg.Payload)
	}
}

func TestNotifyService_PathsWithPeriods(t *testing.T) {
	queue := &mockQueue{}
	svc := newTestNotifyService(queue, testConnector())

	_, err := svc.Notify(context.Background(), "act", "cases/$events/v1.2", "s3cret", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound, "periods are part of the event name, not a format suffix")
	assert.Equal(t, 0, queue.len())
}

func TestNotifyService_RejectsBeforeAnythingElse(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		token  string
		path   string
	}{
		{"wrong token", "s3cret", "guess", "cases/$events/pushed"},
		{"missing token", "s3cret", "", "cases/$events/pushed"},
		{"empty secret never matches", "", "", "cases/$events/pushed"},
		{"wrong token on invalid path", "s3cret", "guess", "does/not/exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queue := &mockQueue{}
			connector := testConnector()
			connector.SecretToken = tt.secret
			factory := newTestFactory(newCaseTree(0))
			svc := NewNotifyService(newMockConnectorStore(connector), factory, queue, nil)

			_, err := svc.Notify(context.Background(), "act", tt.path, tt.token, []byte(`{}`))
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
			assert.Equal(t, 0, queue.len())
			assert.Equal(t, 0, factory.built, "the tree is never built for unauthenticated calls")
		})
	}
}

func TestNotifyService_PathMustBeEvent(t *testing.T) {
	queue := &mockQueue{}
	svc := newTestNotifyService(queue, testConnector())

	_, err := svc.Notify(context.Background(), "act", "cases", "s3cret", nil)
	assert.ErrorIs(t, err, domain.ErrUnsupportedOperation)
	assert.Equal(t, 0, queue.len())
}

func TestNotifyService_QueueFailure(t *testing.T) {
	queue := &mockQueue{err: assert.AnError}
	svc := newTestNotifyService(queue, testConnector())

	_, err := svc.Notify(context.Background(), "act", "cases/$events/pushed", "s3cret", nil)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestTokensMatch(t *testing.T) {
	assert.True(t, TokensMatch("abc", "abc"))
	assert.False(t, TokensMatch("abc", "abd"))
	assert.False(t, TokensMatch("abc", "ab"))
	assert.False(t, TokensMatch("", ""))
}
