// Package auth provides driven.TokenProvider implementations.
//
// Shared connectors act on a backend with a token delegated to the
// requesting user. The hub does not run the token exchange itself; it asks
// an OAuth2 token endpoint for a client-credentials token scoped to the
// user and the backend host, and caches the result until shortly before
// expiry.
package auth
