package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/custodia-labs/hub/internal/core/domain"
	"github.com/custodia-labs/hub/internal/core/ports/driven"
	"github.com/custodia-labs/hub/internal/logger"
)

// Ensure ClientCredentialsProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*ClientCredentialsProvider)(nil)

const (
	// refreshBuffer is how long before expiry a cached token is dropped.
	refreshBuffer = 1 * time.Minute

	// defaultTokenTTL applies to tokens issued without an expiry.
	defaultTokenTTL = 5 * time.Minute
)

// ClientCredentialsOptions configures a ClientCredentialsProvider.
type ClientCredentialsOptions struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string

	// HTTPClient is used for token requests. Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// ClientCredentialsProvider obtains delegated tokens from an OAuth2 token
// endpoint using the client-credentials grant. The user's email is sent as
// the "subject" parameter and the backend host as "audience".
type ClientCredentialsProvider struct {
	opts  ClientCredentialsOptions
	cache *cache.Cache
}

// NewClientCredentialsProvider creates a token provider.
func NewClientCredentialsProvider(opts ClientCredentialsOptions) *ClientCredentialsProvider {
	return &ClientCredentialsProvider{
		opts:  opts,
		cache: cache.New(defaultTokenTTL, 10*time.Minute),
	}
}

// NewTokenProvider returns a client-credentials provider when opts names a
// token endpoint and a NullTokenProvider otherwise.
func NewTokenProvider(opts ClientCredentialsOptions) driven.TokenProvider {
	if strings.TrimSpace(opts.TokenURL) == "" {
		return NewNullTokenProvider()
	}
	return NewClientCredentialsProvider(opts)
}

// Token returns a cached or freshly issued access token for user on audience.
func (p *ClientCredentialsProvider) Token(ctx context.Context, user domain.User, audience string) (string, error) {
	if user.IsAnonymous() {
		return "", fmt.Errorf("%w: delegated token requires a user", domain.ErrUnauthorized)
	}

	key := cacheKey(user, audience)
	if token, ok := p.cache.Get(key); ok {
		return token.(string), nil
	}

	cfg := clientcredentials.Config{
		ClientID:     p.opts.ClientID,
		ClientSecret: p.opts.ClientSecret,
		TokenURL:     p.opts.TokenURL,
		Scopes:       p.opts.Scopes,
		EndpointParams: url.Values{
			"audience": {audience},
			"subject":  {subject(user)},
		},
	}
	if p.opts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.opts.HTTPClient)
	}

	token, err := cfg.Token(ctx)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return "", fmt.Errorf("%w: token for %s on %s: %v", domain.ErrUnauthorized, subject(user), audience, err)
		}
		return "", fmt.Errorf("%w: token endpoint: %v", domain.ErrBackendUnavailable, err)
	}

	ttl := defaultTokenTTL
	if !token.Expiry.IsZero() {
		ttl = time.Until(token.Expiry) - refreshBuffer
	}
	if ttl > 0 {
		p.cache.Set(key, token.AccessToken, ttl)
	}
	logger.Debug("issued delegated token for %s on %s", subject(user), audience)
	return token.AccessToken, nil
}

func subject(user domain.User) string {
	if user.Email != "" {
		return user.Email
	}
	return user.ID
}

func cacheKey(user domain.User, audience string) string {
	return strings.ToLower(subject(user)) + "|" + audience
}
