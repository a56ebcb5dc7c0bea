package domain

import "encoding/json"

// URLBuilder maps a node path to the URL that reflects it.
// It is supplied by the driving adapter and must be pure.
type URLBuilder func(Path) string

// PageURLBuilder maps a listing path and 1-based page number to the URL of
// that page.
type PageURLBuilder func(path Path, page int) string

// Descriptor is the reflection output of a node.
type Descriptor interface {
	DescriptorKind() NodeKind
}

// NodeSummary is a one-level reference to another node.
type NodeSummary struct {
	Label      string   `json:"label"`
	Type       NodeKind `json:"type,omitempty"`
	Path       string   `json:"path"`
	ReflectURL string   `json:"reflect_url"`
}

// PropertyDescriptor describes one entity property. Scalar properties
// carry a Type; entity-set properties carry a Set summary instead.
type PropertyDescriptor struct {
	Label string
	Type  TypeSpec
	Set   *NodeSummary
}

// MarshalJSON renders a scalar as {label, type} and an entity set as its summary.
func (p PropertyDescriptor) MarshalJSON() ([]byte, error) {
	if p.Set != nil {
		return json.Marshal(p.Set)
	}
	return json.Marshal(struct {
		Label string   `json:"label"`
		Type  TypeSpec `json:"type"`
	}{p.Label, p.Type})
}

// EntityDescriptor reflects an Entity.
type EntityDescriptor struct {
	Label      string                        `json:"label"`
	Path       string                        `json:"path"`
	Properties map[string]PropertyDescriptor `json:"properties"`
	Actions    map[string]NodeSummary        `json:"actions,omitempty"`
	Events     map[string]NodeSummary        `json:"events,omitempty"`
}

// DescriptorKind returns KindEntity.
func (*EntityDescriptor) DescriptorKind() NodeKind { return KindEntity }

// EntitySetDescriptor reflects an EntitySet. Entities is empty when the set
// suppresses its listing; actions and events are always present.
type EntitySetDescriptor struct {
	Label    string                 `json:"label"`
	Path     string                 `json:"path"`
	Entities []NodeSummary          `json:"entities"`
	Actions  map[string]NodeSummary `json:"actions"`
	Events   map[string]NodeSummary `json:"events"`
}

// DescriptorKind returns KindEntitySet.
func (*EntitySetDescriptor) DescriptorKind() NodeKind { return KindEntitySet }

// ActionDescriptor reflects an Action.
type ActionDescriptor struct {
	Label string `json:"label"`
	Path  string `json:"path"`
	Args  Schema `json:"args"`
}

// DescriptorKind returns KindAction.
func (*ActionDescriptor) DescriptorKind() NodeKind { return KindAction }

// EventDescriptor reflects an Event. Args is omitted when undeclared.
type EventDescriptor struct {
	Label string `json:"label"`
	Path  string `json:"path"`
	Args  Schema `json:"args,omitempty"`
}

// DescriptorKind returns KindEvent.
func (*EventDescriptor) DescriptorKind() NodeKind { return KindEvent }
