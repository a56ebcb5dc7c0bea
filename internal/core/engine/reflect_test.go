package engine

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/hub/internal/core/domain"
)

func reflectPath(t *testing.T, root domain.Node, path string) domain.Descriptor {
	t.Helper()
	node, err := Resolve(context.Background(), root, domain.ParsePath(path), domain.User{})
	require.NoError(t, err)
	desc, err := Reflect(context.Background(), node, domain.User{}, testURLs)
	require.NoError(t, err)
	return desc
}

func TestReflect_Entity(t *testing.T) {
	desc := reflectPath(t, newFakeRoot(3), "projects/7")

	entity, ok := desc.(*domain.EntityDescriptor)
	require.True(t, ok)
	assert.Equal(t, "Project 7", entity.Label)
	assert.Equal(t, domain.PropertyDescriptor{Label: "Name", Type: domain.StringType()}, entity.Properties["name"])

	flows := entity.Properties["call_flows"]
	require.NotNil(t, flows.Set)
	assert.Equal(t, domain.KindEntitySet, flows.Set.Type)
	assert.Equal(t, "projects/7/call_flows", flows.Set.Path)
	assert.Equal(t, "http://hub.test/api/reflect/connectors/c1/projects/7/call_flows", flows.Set.ReflectURL)

	require.Contains(t, entity.Actions, "call")
	assert.Equal(t, "http://hub.test/api/reflect/connectors/c1/projects/7/$actions/call", entity.Actions["call"].ReflectURL)
	require.Contains(t, entity.Events, "call_finished")
}

func TestReflect_EntityWithoutNamespacesOmitsThem(t *testing.T) {
	desc := reflectPath(t, newFakeRoot(3), "")

	data, err := json.Marshal(desc)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "properties")
	assert.NotContains(t, raw, "actions")
	assert.NotContains(t, raw, "events")
}

func TestReflect_EntitySetListsMembers(t *testing.T) {
	root := newFakeRoot(3)
	desc := reflectPath(t, root, "projects")

	set, ok := desc.(*domain.EntitySetDescriptor)
	require.True(t, ok)
	require.Len(t, set.Entities, 3)
	assert.Equal(t, "projects/1", set.Entities[0].Path)
	assert.Equal(t, domain.KindEntity, set.Entities[0].Type)
	assert.True(t, root.projects.lastReq.Unbounded())
	assert.Contains(t, set.Actions, "insert")
	assert.NotNil(t, set.Events)
}

func TestReflect_SuppressedListingNeverQueries(t *testing.T) {
	root := newFakeRoot(1000)
	desc := reflectPath(t, root, "archive")

	set, ok := desc.(*domain.EntitySetDescriptor)
	require.True(t, ok)
	assert.Empty(t, set.Entities)
	assert.NotNil(t, set.Entities)
	assert.Equal(t, 0, root.archive.queryCalls)

	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"entities":[]`)
}

func TestReflect_Action(t *testing.T) {
	desc := reflectPath(t, newFakeRoot(3), "projects/7/$actions/call")

	action, ok := desc.(*domain.ActionDescriptor)
	require.True(t, ok)
	assert.Equal(t, domain.KindAction, action.DescriptorKind())
	assert.Equal(t, []string{"channel", "number"}, action.Args.Names())
}

func TestReflect_EventWithoutArgs(t *testing.T) {
	desc := reflectPath(t, newFakeRoot(3), "projects/7/$events/call_finished")

	event, ok := desc.(*domain.EventDescriptor)
	require.True(t, ok)
	assert.Equal(t, "Call finished", event.Label)
	assert.Nil(t, event.Args)
}

func TestReflect_ListingErrorPropagates(t *testing.T) {
	root := newFakeRoot(3)
	root.projects.queryErr = domain.ErrBackendUnavailable

	node, err := Resolve(context.Background(), root, domain.ParsePath("projects"), domain.User{})
	require.NoError(t, err)
	_, err = Reflect(context.Background(), node, domain.User{}, testURLs)
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
}
