package auth

import (
	"context"
	"fmt"

	"github.com/custodia-labs/hub/internal/core/domain"
	"github.com/custodia-labs/hub/internal/core/ports/driven"
)

// Ensure NullTokenProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*NullTokenProvider)(nil)

// NullTokenProvider is used when no identity provider is configured.
// Shared connectors cannot authenticate with it.
type NullTokenProvider struct{}

// NewNullTokenProvider creates a token provider that issues no tokens.
func NewNullTokenProvider() *NullTokenProvider {
	return &NullTokenProvider{}
}

// Token always fails with ErrUnauthorized.
func (p *NullTokenProvider) Token(_ context.Context, _ domain.User, audience string) (string, error) {
	return "", fmt.Errorf("%w: no identity provider configured for %s", domain.ErrUnauthorized, audience)
}
