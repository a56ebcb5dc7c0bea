package connectors

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/hub/internal/connectors/act"
	"github.com/custodia-labs/hub/internal/connectors/elasticsearch"
	"github.com/custodia-labs/hub/internal/connectors/httpclient"
	"github.com/custodia-labs/hub/internal/connectors/ona"
	"github.com/custodia-labs/hub/internal/connectors/rapidpro"
	"github.com/custodia-labs/hub/internal/connectors/verboice"
	"github.com/custodia-labs/hub/internal/core/domain"
	"github.com/custodia-labs/hub/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.ConnectorFactory = (*Factory)(nil)

// Factory builds connector trees from registered builders.
type Factory struct {
	mu            sync.RWMutex
	builders      map[string]driven.ConnectorBuilder
	tokenProvider driven.TokenProvider
}

// NewFactory creates an empty factory. tokenProvider may be nil when no
// connector is shared.
func NewFactory(tokenProvider driven.TokenProvider) *Factory {
	return &Factory{
		builders:      make(map[string]driven.ConnectorBuilder),
		tokenProvider: tokenProvider,
	}
}

// NewDefaultFactory creates a factory with every built-in kind registered.
func NewDefaultFactory(tokenProvider driven.TokenProvider) *Factory {
	f := NewFactory(tokenProvider)
	pool := httpclient.NewPool()
	f.Register(elasticsearch.Kind, elasticsearch.Builder(pool))
	f.Register(verboice.Kind, verboice.Builder(pool))
	f.Register(rapidpro.Kind, rapidpro.Builder(pool))
	f.Register(act.Kind, act.Builder(pool))
	f.Register(ona.Kind, ona.Builder(pool))
	return f
}

// Register adds a builder for the given kind, replacing any previous one.
func (f *Factory) Register(kind string, builder driven.ConnectorBuilder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[kind] = builder
}

// Root builds the root node of connector.
func (f *Factory) Root(ctx context.Context, connector domain.Connector) (domain.Entity, error) {
	f.mu.RLock()
	builder, ok := f.builders[connector.Kind]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: connector kind %q", domain.ErrUnsupportedType, connector.Kind)
	}

	root, err := builder(ctx, connector, f.tokenProvider)
	if err != nil {
		return nil, fmt.Errorf("build connector %s: %w", connector.ID, err)
	}
	return root, nil
}

// SupportedKinds returns the registered kinds in alphabetical order.
func (f *Factory) SupportedKinds() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	kinds := make([]string, 0, len(f.builders))
	for kind := range f.builders {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
