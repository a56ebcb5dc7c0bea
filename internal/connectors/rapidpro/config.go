// Package rapidpro exposes a survey-flow service as a connector tree of
// flows, each with a polled run_update event that reports new and changed
// run values.
package rapidpro

import (
	"github.com/custodia-labs/hub/internal/connectors/httpclient"
	"github.com/custodia-labs/hub/internal/core/domain"
)

// Kind is the connector kind served by this package.
const Kind = "rapidpro"

// DefaultURL is the hosted RapidPro instance.
const DefaultURL = "https://rapidpro.io"

// Config holds the parsed settings of a RapidPro connector.
type Config struct {
	URL   string `validate:"required,url"`
	Token string `validate:"required"`

	httpclient.Common
}

// ParseConfig parses a connector's settings into a Config.
func ParseConfig(c domain.Connector) (*Config, error) {
	common, err := httpclient.ParseCommon(c)
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		URL:    c.Setting("url", DefaultURL),
		Token:  c.Setting("token", ""),
		Common: common,
	}
	if err := httpclient.ValidateConfig(Kind, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
