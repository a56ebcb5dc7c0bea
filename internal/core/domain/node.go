package domain

import (
	"context"
	"fmt"
)

// NodeKind identifies which capability a node offers.
type NodeKind string

const (
	KindEntitySet NodeKind = "entity_set"
	KindEntity    NodeKind = "entity"
	KindAction    NodeKind = "action"
	KindEvent     NodeKind = "event"
)

// Node is an addressable element of a connector's tree.
// Every node is exactly one of EntitySet, Entity, Action or Event.
type Node interface {
	// Kind returns the node's capability kind.
	Kind() NodeKind

	// Label returns a human-readable name for the node.
	Label() string

	// Path returns the node's address relative to the connector root.
	Path() Path
}

// Namespace is implemented by nodes that may declare actions and events.
// A nil map means the node declares none.
type Namespace interface {
	Actions(ctx context.Context, user User) (map[string]Action, error)
	Events(ctx context.Context, user User) (map[string]Event, error)
}

// EntitySet is a collection of entities that can be listed, filtered and
// addressed by member id. An EntitySet is also a Property of its parent.
type EntitySet interface {
	Node
	Property
	Namespace

	// FindEntity returns the member addressed by id. Implementations construct
	// the member lazily and need not verify that it exists in the backend.
	// The member is an Entity or a nested EntitySet.
	FindEntity(ctx context.Context, id string, user User) (Node, error)

	// Query lists members matching the filter starting at req.Offset.
	// A non-positive req.Limit requests every member.
	Query(ctx context.Context, req QueryRequest, user User) (*QueryResult, error)

	// SuppressReflectListing reports whether reflection must omit the
	// member listing (large or unbounded sets).
	SuppressReflectListing() bool

	isEntitySet()
}

// Entity is a record with named properties.
type Entity interface {
	Node
	Namespace

	// Properties returns the entity's scalar and entity-set properties.
	Properties(ctx context.Context, user User) (map[string]Property, error)

	isEntity()
}

// Action is an invocable operation with a declared argument schema.
type Action interface {
	Node

	// Args returns the schema the arguments of Invoke must satisfy.
	Args(ctx context.Context, user User) (Schema, error)

	// Invoke performs the operation. Arguments have already been validated.
	Invoke(ctx context.Context, args map[string]any, user User) (any, error)

	isAction()
}

// Event is an observable occurrence. Pollable events expose Poll; others
// receive occurrences via inbound notifications only.
type Event interface {
	Node

	// Args returns the schema of the event payload, or nil if undeclared.
	Args(ctx context.Context, user User) (Schema, error)

	// Poll fetches occurrences after cursor and returns the advanced cursor.
	Poll(ctx context.Context, cursor EventCursor, user User) (EventCursor, []Payload, error)

	isEvent()
}

// NodeInfo carries the label and path shared by every node base.
type NodeInfo struct {
	NodeLabel string
	NodePath  Path
}

// Label returns the node label.
func (n NodeInfo) Label() string { return n.NodeLabel }

// Path returns the node path.
func (n NodeInfo) Path() Path { return n.NodePath }

// EntitySetBase is embedded by connector entity sets. It supplies the
// variant marker and default behaviour: no members, no actions, no events.
type EntitySetBase struct {
	NodeInfo
}

func (EntitySetBase) isEntitySet() {}
func (EntitySetBase) isProperty()  {}

// Kind returns KindEntitySet.
func (EntitySetBase) Kind() NodeKind { return KindEntitySet }

// FindEntity reports that members are not individually addressable.
func (b EntitySetBase) FindEntity(_ context.Context, id string, _ User) (Node, error) {
	return nil, fmt.Errorf("%w: %s does not address member %q", ErrUnsupportedOperation, b.NodePath, id)
}

// Query reports that the set cannot be listed.
func (b EntitySetBase) Query(_ context.Context, _ QueryRequest, _ User) (*QueryResult, error) {
	return nil, fmt.Errorf("%w: %s cannot be listed", ErrUnsupportedOperation, b.NodePath)
}

// SuppressReflectListing returns false.
func (EntitySetBase) SuppressReflectListing() bool { return false }

// Actions returns no actions.
func (EntitySetBase) Actions(context.Context, User) (map[string]Action, error) { return nil, nil }

// Events returns no events.
func (EntitySetBase) Events(context.Context, User) (map[string]Event, error) { return nil, nil }

// EntityBase is embedded by connector entities.
type EntityBase struct {
	NodeInfo
}

func (EntityBase) isEntity() {}

// Kind returns KindEntity.
func (EntityBase) Kind() NodeKind { return KindEntity }

// Properties returns no properties.
func (EntityBase) Properties(context.Context, User) (map[string]Property, error) { return nil, nil }

// Actions returns no actions.
func (EntityBase) Actions(context.Context, User) (map[string]Action, error) { return nil, nil }

// Events returns no events.
func (EntityBase) Events(context.Context, User) (map[string]Event, error) { return nil, nil }

// ActionBase is embedded by connector actions.
type ActionBase struct {
	NodeInfo
}

func (ActionBase) isAction() {}

// Kind returns KindAction.
func (ActionBase) Kind() NodeKind { return KindAction }

// Args returns an empty schema.
func (ActionBase) Args(context.Context, User) (Schema, error) { return Schema{}, nil }

// Invoke reports that the action has no implementation.
func (b ActionBase) Invoke(context.Context, map[string]any, User) (any, error) {
	return nil, fmt.Errorf("%w: %s cannot be invoked", ErrUnsupportedOperation, b.NodePath)
}

// EventBase is embedded by connector events.
type EventBase struct {
	NodeInfo
}

func (EventBase) isEvent() {}

// Kind returns KindEvent.
func (EventBase) Kind() NodeKind { return KindEvent }

// Args returns nil: the payload is undeclared.
func (EventBase) Args(context.Context, User) (Schema, error) { return nil, nil }

// Poll reports that the event is notification-driven.
func (b EventBase) Poll(_ context.Context, cursor EventCursor, _ User) (EventCursor, []Payload, error) {
	return cursor, nil, fmt.Errorf("%w: %s is not pollable", ErrUnsupportedOperation, b.NodePath)
}

// NewNodeInfo is a convenience constructor for node bases.
func NewNodeInfo(label string, path Path) NodeInfo {
	return NodeInfo{NodeLabel: label, NodePath: path}
}
