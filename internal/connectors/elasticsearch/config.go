package elasticsearch

import (
	"fmt"
	"strconv"

	"github.com/custodia-labs/hub/internal/connectors/httpclient"
	"github.com/custodia-labs/hub/internal/core/domain"
)

// Kind is the connector kind served by this package.
const Kind = "elasticsearch"

// DefaultPageSize is the document page size when none is configured.
const DefaultPageSize = 20

const (
	// matchBatchSize is the search page size when reading the documents an
	// update or delete touches.
	matchBatchSize = 1000

	// maxResultWindow is the default index.max_result_window of a cluster.
	// Matches past it cannot be reached with from/size paging.
	maxResultWindow = 10000
)

// Config holds the parsed settings of an Elasticsearch connector.
type Config struct {
	// URL is the cluster endpoint.
	URL string `validate:"required,url"`

	// Username and Password enable basic auth when set.
	Username string
	Password string `validate:"required_with=Username"`

	// PageSize is the default document page size.
	PageSize int `validate:"gte=0,lte=10000"`

	httpclient.Common
}

// ParseConfig parses a connector's settings into a Config.
func ParseConfig(c domain.Connector) (*Config, error) {
	common, err := httpclient.ParseCommon(c)
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		URL:      c.Setting("url", ""),
		Username: c.Setting("username", ""),
		Password: c.Setting("password", ""),
		PageSize: DefaultPageSize,
		Common:   common,
	}
	if v := c.Setting("page_size", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: page_size: %w", domain.ErrConnectorConfig, Kind, err)
		}
		cfg.PageSize = n
	}
	if err := httpclient.ValidateConfig(Kind, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
