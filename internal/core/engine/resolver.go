package engine

import (
	"context"
	"fmt"

	"github.com/custodia-labs/hub/internal/core/domain"
)

// Resolve walks path from root and returns the addressed node.
//
// A name under an EntitySet selects a member through FindEntity. A name under
// an Entity selects a property, which must itself be an EntitySet. A marker
// must follow an EntitySet or Entity and be followed by the name of one of its
// actions or events. Actions and events are leaves.
func Resolve(ctx context.Context, root domain.Node, path domain.Path, user domain.User) (domain.Node, error) {
	current := root
	for i := 0; i < path.Len(); i++ {
		seg := path.Segment(i)

		if !seg.IsMarker() {
			next, err := descend(ctx, current, seg.Name, user)
			if err != nil {
				return nil, err
			}
			current = next
			continue
		}

		ns, ok := current.(domain.Namespace)
		if !ok {
			return nil, fmt.Errorf("%w: %s %q has no actions or events", domain.ErrUnsupportedOperation, current.Kind(), current.Path())
		}
		if i+1 >= path.Len() || path.Segment(i+1).IsMarker() {
			return nil, fmt.Errorf("%w: %s at %q must be followed by a name", domain.ErrNotFound, seg, current.Path())
		}
		next, err := member(ctx, ns, current.Path(), seg.Kind, path.Segment(i+1).Name, user)
		if err != nil {
			return nil, err
		}
		current = next
		i++
	}
	return current, nil
}

func descend(ctx context.Context, node domain.Node, name string, user domain.User) (domain.Node, error) {
	switch n := node.(type) {
	case domain.EntitySet:
		child, err := n.FindEntity(ctx, name, user)
		if err != nil {
			return nil, err
		}
		if child == nil {
			return nil, fmt.Errorf("%w: %q in %q", domain.ErrNotFound, name, n.Path())
		}
		return child, nil

	case domain.Entity:
		props, err := n.Properties(ctx, user)
		if err != nil {
			return nil, err
		}
		prop, ok := props[name]
		if !ok {
			return nil, fmt.Errorf("%w: property %q of %q", domain.ErrNotFound, name, n.Path())
		}
		set, ok := prop.(domain.EntitySet)
		if !ok {
			return nil, fmt.Errorf("%w: property %q of %q is a scalar", domain.ErrUnsupportedOperation, name, n.Path())
		}
		return set, nil

	default:
		return nil, fmt.Errorf("%w: %s %q has no children", domain.ErrUnsupportedOperation, node.Kind(), node.Path())
	}
}

func member(
	ctx context.Context,
	ns domain.Namespace,
	at domain.Path,
	kind domain.SegmentKind,
	name string,
	user domain.User,
) (domain.Node, error) {
	if kind == domain.SegmentActions {
		actions, err := ns.Actions(ctx, user)
		if err != nil {
			return nil, err
		}
		if action, ok := actions[name]; ok && action != nil {
			return action, nil
		}
		return nil, fmt.Errorf("%w: action %q of %q", domain.ErrNotFound, name, at)
	}

	events, err := ns.Events(ctx, user)
	if err != nil {
		return nil, err
	}
	if event, ok := events[name]; ok && event != nil {
		return event, nil
	}
	return nil, fmt.Errorf("%w: event %q of %q", domain.ErrNotFound, name, at)
}
