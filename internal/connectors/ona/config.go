// Package ona exposes a form-collection service as a connector tree of forms,
// each with a polled new_data event reporting new submissions.
package ona

import (
	"github.com/custodia-labs/hub/internal/connectors/httpclient"
	"github.com/custodia-labs/hub/internal/core/domain"
)

// Kind is the connector kind served by this package.
const Kind = "ona"

// DefaultURL is the hosted Ona API.
const DefaultURL = "https://api.ona.io"

// AuthMethod selects how the connector authenticates.
type AuthMethod string

const (
	AuthAnonymous AuthMethod = "anonymous"
	AuthBasic     AuthMethod = "basic"
	AuthToken     AuthMethod = "token"
)

// Config holds the parsed settings of an Ona connector.
type Config struct {
	URL        string     `validate:"required,url"`
	AuthMethod AuthMethod `validate:"oneof=anonymous basic token"`

	Username string `validate:"required_if=AuthMethod basic"`
	Password string `validate:"required_if=AuthMethod basic"`
	Token    string `validate:"required_if=AuthMethod token"`

	httpclient.Common
}

// ParseConfig parses a connector's settings into a Config.
func ParseConfig(c domain.Connector) (*Config, error) {
	common, err := httpclient.ParseCommon(c)
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		URL:        c.Setting("url", DefaultURL),
		AuthMethod: AuthMethod(c.Setting("auth_method", string(AuthAnonymous))),
		Username:   c.Setting("username", ""),
		Password:   c.Setting("password", ""),
		Token:      c.Setting("token", ""),
		Common:     common,
	}
	if err := httpclient.ValidateConfig(Kind, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Authenticator returns the authenticator for the configured method.
func (c *Config) Authenticator() httpclient.Authenticator {
	switch c.AuthMethod {
	case AuthBasic:
		return httpclient.BasicAuth{Username: c.Username, Password: c.Password}
	case AuthToken:
		return httpclient.TokenAuth{Scheme: "Token", Token: c.Token}
	default:
		return httpclient.NoAuth{}
	}
}
