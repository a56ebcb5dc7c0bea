package httpclient

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/hub/internal/core/domain"
	"github.com/custodia-labs/hub/internal/core/ports/driven"
)

// Authenticator decorates a backend request with the credentials of the
// connector or of the user the request runs for.
type Authenticator interface {
	Authenticate(ctx context.Context, req *resty.Request, user domain.User) error
}

// NoAuth sends requests anonymously.
type NoAuth struct{}

// Authenticate does nothing.
func (NoAuth) Authenticate(context.Context, *resty.Request, domain.User) error { return nil }

// BasicAuth authenticates with the connector's own username and password.
type BasicAuth struct {
	Username string
	Password string
}

// Authenticate sets the basic auth header.
func (a BasicAuth) Authenticate(_ context.Context, req *resty.Request, _ domain.User) error {
	req.SetBasicAuth(a.Username, a.Password)
	return nil
}

// TokenAuth authenticates with a static API token using the given scheme
// (e.g., "Token" or "Bearer").
type TokenAuth struct {
	Scheme string
	Token  string
}

// Authenticate sets the Authorization header.
func (a TokenAuth) Authenticate(_ context.Context, req *resty.Request, _ domain.User) error {
	scheme := a.Scheme
	if scheme == "" {
		scheme = "Bearer"
	}
	req.SetHeader("Authorization", scheme+" "+a.Token)
	return nil
}

// DelegatedAuth authenticates shared connectors with a bearer token issued
// to the requesting user for the backend audience.
type DelegatedAuth struct {
	Provider driven.TokenProvider
	Audience string
}

// Authenticate fetches the user's token and sets it as a bearer token.
func (a DelegatedAuth) Authenticate(ctx context.Context, req *resty.Request, user domain.User) error {
	if a.Provider == nil {
		return fmt.Errorf("%w: shared connector requires a token provider", domain.ErrConnectorConfig)
	}
	token, err := TokenSource(ctx, a.Provider, user, a.Audience).Token()
	if err != nil {
		return err
	}
	req.SetHeader("Authorization", token.Type()+" "+token.AccessToken)
	return nil
}

// providerTokenSource adapts a driven.TokenProvider to an oauth2.TokenSource
// bound to one user and audience.
type providerTokenSource struct {
	ctx      context.Context
	provider driven.TokenProvider
	user     domain.User
	audience string
}

// TokenSource returns an oauth2.TokenSource yielding the user's delegated
// token for audience.
func TokenSource(ctx context.Context, provider driven.TokenProvider, user domain.User, audience string) oauth2.TokenSource {
	return &providerTokenSource{ctx: ctx, provider: provider, user: user, audience: audience}
}

func (s *providerTokenSource) Token() (*oauth2.Token, error) {
	access, err := s.provider.Token(s.ctx, s.user, s.audience)
	if err != nil {
		return nil, fmt.Errorf("token for %s on %s: %w", s.user.Email, s.audience, err)
	}
	return &oauth2.Token{AccessToken: access, TokenType: "Bearer"}, nil
}
