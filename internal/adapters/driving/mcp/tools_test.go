package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/hub/internal/core/domain"
)

func TestServer_handleQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("returns items and next page", func(t *testing.T) {
		query := &mockQueryService{items: []map[string]any{{"name": "a"}, {"name": "b"}}, more: true}
		server, err := NewServer(&Ports{Reflect: &mockReflectService{}, Query: query})
		require.NoError(t, err)

		_, output, err := server.handleQuery(ctx, nil, QueryInput{
			Connector: "es",
			Path:      "indices",
			Filter:    map[string]string{"status": "open"},
			Page:      2,
			PageSize:  2,
		})

		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		assert.Equal(t, 3, output.NextPage)
		assert.Equal(t, domain.Filter{"status": "open"}, query.filter)
		assert.Equal(t, domain.ListOptions{Page: 2, PageSize: 2}, query.opts)
	})

	t.Run("last page has no next page", func(t *testing.T) {
		query := &mockQueryService{}
		server, err := NewServer(&Ports{Reflect: &mockReflectService{}, Query: query})
		require.NoError(t, err)

		_, output, err := server.handleQuery(ctx, nil, QueryInput{Connector: "es", Path: "indices"})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.NotNil(t, output.Items)
		assert.Zero(t, output.NextPage)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		query := &mockQueryService{err: errors.New("query failed")}
		server, err := NewServer(&Ports{Reflect: &mockReflectService{}, Query: query})
		require.NoError(t, err)

		_, _, err = server.handleQuery(ctx, nil, QueryInput{Connector: "es", Path: "indices"})
		assert.EqualError(t, err, "query failed")
	})
}

func TestServer_handleInvoke(t *testing.T) {
	ctx := context.Background()
	invoke := &mockInvokeService{result: map[string]any{"call_id": 7}}
	server, err := NewServer(&Ports{Reflect: &mockReflectService{}, Invoke: invoke})
	require.NoError(t, err)

	_, output, err := server.handleInvoke(ctx, nil, InvokeInput{Connector: "ivr", Path: "projects/1/$actions/call"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"call_id": 7}, output.Result)
	assert.Equal(t, map[string]any{}, invoke.args, "missing args are sent as an empty object")

	invoke.err = &domain.ValidationError{Field: "number", Reason: "missing"}
	_, _, err = server.handleInvoke(ctx, nil, InvokeInput{Connector: "ivr", Path: "projects/1/$actions/call"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestServer_handlePoll(t *testing.T) {
	ctx := context.Background()
	poll := &mockPollService{payloads: []domain.Payload{{"id": 1}}}
	server, err := NewServer(&Ports{Reflect: &mockReflectService{}, Poll: poll})
	require.NoError(t, err)

	_, output, err := server.handlePoll(ctx, nil, NodeInput{Connector: "act", Path: "cases/$events/new_case"})
	require.NoError(t, err)
	assert.Equal(t, 1, output.Count)

	poll.payloads = nil
	_, output, err = server.handlePoll(ctx, nil, NodeInput{Connector: "act", Path: "cases/$events/new_case"})
	require.NoError(t, err)
	assert.NotNil(t, output.Payloads)
	assert.Equal(t, 0, output.Count)
}
