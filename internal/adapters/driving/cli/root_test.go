package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{
		"serve", "reflect", "query", "invoke", "data", "poll",
		"notify", "connectors", "queue", "mcp", "version",
	} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "verbose", "user"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
}

func TestSetupServices_UsesBootstrap(t *testing.T) {
	oldServices, oldBootstrap := services, bootstrap
	services = nil
	defer func() {
		services, bootstrap = oldServices, oldBootstrap
		cleanup = nil
		resetFlags()
		configDir = ""
	}()

	hub := &mockHub{}
	var got Options
	SetBootstrap(func(_ context.Context, opts Options) (*Services, func(), error) {
		got = opts
		return &Services{Connectors: hub}, func() {}, nil
	})

	_, err := execute("connectors", "kinds", "--config", "/tmp/hub-test")

	require.NoError(t, err)
	assert.Equal(t, "/tmp/hub-test", got.ConfigDir)
	assert.NotNil(t, cleanup)
}

func TestSetupServices_BootstrapError(t *testing.T) {
	oldServices, oldBootstrap := services, bootstrap
	services = nil
	defer func() {
		services, bootstrap = oldServices, oldBootstrap
	}()

	SetBootstrap(func(context.Context, Options) (*Services, func(), error) {
		return nil, nil, errors.New("bad config")
	})

	_, err := execute("connectors", "kinds")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad config")
}

func TestSetupServices_NoBootstrap(t *testing.T) {
	oldServices, oldBootstrap := services, bootstrap
	services, bootstrap = nil, nil
	defer func() {
		services, bootstrap = oldServices, oldBootstrap
	}()

	_, err := execute("connectors", "kinds")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "services not configured")
}

func TestSetupServices_SkippedForVersion(t *testing.T) {
	oldServices, oldBootstrap := services, bootstrap
	services, bootstrap = nil, nil
	defer func() {
		services, bootstrap = oldServices, oldBootstrap
	}()

	out, err := execute("version")

	require.NoError(t, err)
	assert.Contains(t, out, "hub version")
}

func TestCurrentUser(t *testing.T) {
	defer resetFlags()

	assert.True(t, currentUser().IsAnonymous())

	userEmail = "jane@example.com"
	assert.Equal(t, "jane@example.com", currentUser().Email)
}

func TestParseKeyValues(t *testing.T) {
	got, err := parseKeyValues([]string{"email=jane@example.com", "name=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"email": "jane@example.com", "name": "a=b"}, got)

	_, err = parseKeyValues([]string{"novalue"})
	assert.Error(t, err)

	_, err = parseKeyValues([]string{"=x"})
	assert.Error(t, err)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}
