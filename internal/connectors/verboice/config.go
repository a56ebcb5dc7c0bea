// Package verboice exposes an IVR service as a connector tree of projects,
// their call flows, a call action per project and a notification-driven
// call_finished event per call flow.
package verboice

import (
	"net/url"

	"github.com/custodia-labs/hub/internal/connectors/httpclient"
	"github.com/custodia-labs/hub/internal/core/domain"
)

// Kind is the connector kind served by this package.
const Kind = "verboice"

// DefaultURL is the hosted Verboice instance.
const DefaultURL = "https://verboice.instedd.org"

// Config holds the parsed settings of a Verboice connector.
type Config struct {
	URL string `validate:"required,url"`

	// Username and Password authenticate unshared connectors.
	Username string `validate:"required_without=Shared"`
	Password string `validate:"required_without=Shared"`

	// Shared connectors authenticate as the requesting user with a
	// delegated bearer token.
	Shared bool

	httpclient.Common
}

// ParseConfig parses a connector's settings into a Config.
func ParseConfig(c domain.Connector) (*Config, error) {
	common, err := httpclient.ParseCommon(c)
	if err != nil {
		return nil, err
	}
	shared, err := httpclient.ParseBool(c, "shared", c.Shared)
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		URL:      c.Setting("url", DefaultURL),
		Username: c.Setting("username", ""),
		Password: c.Setting("password", ""),
		Shared:   shared,
		Common:   common,
	}
	if err := httpclient.ValidateConfig(Kind, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Audience is the token audience of shared connectors: the backend host.
func (c *Config) Audience() string {
	u, err := url.Parse(c.URL)
	if err != nil {
		return c.URL
	}
	return u.Host
}
