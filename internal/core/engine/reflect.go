package engine

import (
	"context"
	"fmt"

	"github.com/custodia-labs/hub/internal/core/domain"
)

// Reflect describes node for discovery. Nested nodes are summarised one level
// deep with URLs produced by urls.
func Reflect(ctx context.Context, node domain.Node, user domain.User, urls domain.URLBuilder) (domain.Descriptor, error) {
	switch n := node.(type) {
	case domain.EntitySet:
		return reflectEntitySet(ctx, n, user, urls)
	case domain.Entity:
		return reflectEntity(ctx, n, user, urls)
	case domain.Action:
		args, err := n.Args(ctx, user)
		if err != nil {
			return nil, err
		}
		if args == nil {
			args = domain.Schema{}
		}
		return &domain.ActionDescriptor{Label: n.Label(), Path: n.Path().String(), Args: args}, nil
	case domain.Event:
		args, err := n.Args(ctx, user)
		if err != nil {
			return nil, err
		}
		return &domain.EventDescriptor{Label: n.Label(), Path: n.Path().String(), Args: args}, nil
	default:
		return nil, fmt.Errorf("%w: cannot reflect %T", domain.ErrUnsupportedOperation, node)
	}
}

func reflectEntity(ctx context.Context, e domain.Entity, user domain.User, urls domain.URLBuilder) (*domain.EntityDescriptor, error) {
	props, err := e.Properties(ctx, user)
	if err != nil {
		return nil, err
	}

	desc := &domain.EntityDescriptor{
		Label:      e.Label(),
		Path:       e.Path().String(),
		Properties: make(map[string]domain.PropertyDescriptor, len(props)),
	}
	for name, prop := range props {
		switch p := prop.(type) {
		case *domain.SimpleProperty:
			desc.Properties[name] = domain.PropertyDescriptor{Label: p.Label, Type: p.Type}
		case domain.EntitySet:
			summary := Summarize(p, urls)
			desc.Properties[name] = domain.PropertyDescriptor{Set: &summary}
		}
	}

	if desc.Actions, desc.Events, err = namespaceSummaries(ctx, e, user, urls); err != nil {
		return nil, err
	}
	if len(desc.Actions) == 0 {
		desc.Actions = nil
	}
	if len(desc.Events) == 0 {
		desc.Events = nil
	}
	return desc, nil
}

func reflectEntitySet(ctx context.Context, s domain.EntitySet, user domain.User, urls domain.URLBuilder) (*domain.EntitySetDescriptor, error) {
	desc := &domain.EntitySetDescriptor{
		Label:    s.Label(),
		Path:     s.Path().String(),
		Entities: []domain.NodeSummary{},
	}

	if !s.SuppressReflectListing() {
		res, err := s.Query(ctx, domain.QueryRequest{}, user)
		if err != nil {
			return nil, err
		}
		for _, item := range res.Items {
			desc.Entities = append(desc.Entities, Summarize(item, urls))
		}
	}

	var err error
	if desc.Actions, desc.Events, err = namespaceSummaries(ctx, s, user, urls); err != nil {
		return nil, err
	}
	return desc, nil
}

// Summarize returns a one-level reference to node.
func Summarize(node domain.Node, urls domain.URLBuilder) domain.NodeSummary {
	return domain.NodeSummary{
		Label:      node.Label(),
		Type:       node.Kind(),
		Path:       node.Path().String(),
		ReflectURL: buildURL(urls, node.Path()),
	}
}

func namespaceSummaries(
	ctx context.Context,
	ns domain.Namespace,
	user domain.User,
	urls domain.URLBuilder,
) (actions, events map[string]domain.NodeSummary, err error) {
	declaredActions, err := ns.Actions(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	declaredEvents, err := ns.Events(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return summarizeMembers(declaredActions, urls), summarizeMembers(declaredEvents, urls), nil
}

// summarizeMembers omits the node type: it is implied by the namespace.
func summarizeMembers[N domain.Node](members map[string]N, urls domain.URLBuilder) map[string]domain.NodeSummary {
	out := make(map[string]domain.NodeSummary, len(members))
	for name, m := range members {
		out[name] = domain.NodeSummary{
			Label:      m.Label(),
			Path:       m.Path().String(),
			ReflectURL: buildURL(urls, m.Path()),
		}
	}
	return out
}

func buildURL(urls domain.URLBuilder, p domain.Path) string {
	if urls == nil {
		return ""
	}
	return urls(p)
}
