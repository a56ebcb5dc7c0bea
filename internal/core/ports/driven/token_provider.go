package driven

import (
	"context"

	"github.com/custodia-labs/hub/internal/core/domain"
)

// TokenProvider provides delegated access tokens for shared connectors.
// Implementations obtain and cache tokens from the identity provider; the
// hub only consumes them.
type TokenProvider interface {
	// Token returns a bearer token that lets user act on audience (the
	// backend host). Returns ErrUnauthorized if no token can be issued.
	Token(ctx context.Context, user domain.User, audience string) (string, error)
}
