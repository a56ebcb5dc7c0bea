package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/hub/internal/adapters/driving/cli"
	"github.com/custodia-labs/hub/internal/core/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600))
	return dir
}

func TestBootstrap_MemoryStorage(t *testing.T) {
	dir := writeConfig(t, `
[storage]
driver = "memory"

[[connectors]]
id = "calls"
kind = "verboice"
shared = true
secret_token = "s3cret"
`)

	svc, cleanup, err := bootstrap(context.Background(), cli.Options{ConfigDir: dir})
	require.NoError(t, err)
	defer cleanup()

	list, err := svc.Connectors.List(context.Background(), domain.User{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "calls", list[0].ID)
	assert.Equal(t, ":8080", svc.ListenAddr)
	assert.NotNil(t, svc.Scheduler)
	assert.NotNil(t, svc.Watch)
}

func TestBootstrap_SQLiteDefaultsUnderConfigDir(t *testing.T) {
	dir := writeConfig(t, `
[server]
listen = "127.0.0.1:9000"
`)

	svc, cleanup, err := bootstrap(context.Background(), cli.Options{ConfigDir: dir})
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, "127.0.0.1:9000", svc.ListenAddr)
	assert.FileExists(t, filepath.Join(dir, "data", "hub.db"))

	pending, err := svc.Queue.Pending(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestBootstrap_InvalidConfig(t *testing.T) {
	dir := writeConfig(t, `
[storage]
driver = "cassandra"
`)

	_, _, err := bootstrap(context.Background(), cli.Options{ConfigDir: dir})

	assert.Error(t, err)
}
