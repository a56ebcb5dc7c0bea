package mcp

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/hub/internal/core/domain"
)

func TestSplitNodeURI(t *testing.T) {
	tests := []struct {
		uri       string
		connector string
		path      string
		ok        bool
	}{
		{"hub://connectors/es/indices/logs", "es", "indices/logs", true},
		{"hub://connectors/es", "es", "", true},
		{"hub://connectors/", "", "", false},
		{"hub://other/es", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			connector, path, ok := splitNodeURI(tt.uri)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.connector, connector)
			assert.Equal(t, tt.path, path)
		})
	}
}

func TestServer_handleConnectorsResource(t *testing.T) {
	ctx := context.Background()
	req := &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "hub://connectors"}}

	t.Run("lists connectors", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Reflect: &mockReflectService{},
			Connectors: &mockConnectorService{connectors: []domain.Connector{
				{ID: "es", Name: "Search", Kind: "elasticsearch"},
			}},
		})
		require.NoError(t, err)

		res, err := server.handleConnectorsResource(ctx, req)
		require.NoError(t, err)
		require.Len(t, res.Contents, 1)
		assert.JSONEq(t, `[{"id":"es","name":"Search","kind":"elasticsearch","uri":"hub://connectors/es"}]`, res.Contents[0].Text)
	})

	t.Run("empty without connector service", func(t *testing.T) {
		server, err := NewServer(&Ports{Reflect: &mockReflectService{}})
		require.NoError(t, err)

		res, err := server.handleConnectorsResource(ctx, req)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, res.Contents[0].Text)
	})
}

func TestServer_handleNodeResource(t *testing.T) {
	ctx := context.Background()
	reflect := &mockReflectService{descriptor: &domain.EntityDescriptor{Label: "Logs", Path: "indices/logs"}}
	server, err := NewServer(&Ports{Reflect: reflect})
	require.NoError(t, err)

	res, err := server.handleNodeResource(ctx, &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: "hub://connectors/es/indices/logs"},
	})
	require.NoError(t, err)
	assert.Contains(t, res.Contents[0].Text, `"label": "Logs"`)
	assert.Equal(t, "indices/logs", reflect.path)

	_, err = server.handleNodeResource(ctx, &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: "hub://elsewhere"},
	})
	assert.Error(t, err)
}
