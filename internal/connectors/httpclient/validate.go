package httpclient

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/hub/internal/core/domain"
)

// use a single instance of go-playground/validator Validate, it
// caches struct info
var validate = validator.New()

// ValidateConfig validates a connector config struct, reporting failures as
// ErrConnectorConfig naming the offending settings.
func ValidateConfig(kind string, cfg any) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %s: %w", domain.ErrConnectorConfig, kind, err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s fails %q", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("%w: %s: %s", domain.ErrConnectorConfig, kind, strings.Join(parts, ", "))
}

// Common holds the settings every HTTP backed connector accepts.
type Common struct {
	// Timeout bounds each backend request.
	Timeout time.Duration `validate:"gte=0"`

	// RateLimit is the sustained requests per second against the backend.
	RateLimit float64 `validate:"gte=0"`

	// Burst is the maximum request burst.
	Burst int `validate:"gte=0"`
}

// ParseCommon reads the timeout, rate_limit and burst settings.
func ParseCommon(c domain.Connector) (Common, error) {
	common := Common{Timeout: DefaultTimeout}

	if v := c.Setting("timeout", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return common, fmt.Errorf("%w: %s: timeout: %w", domain.ErrConnectorConfig, c.Kind, err)
		}
		common.Timeout = d
	}
	if v := c.Setting("rate_limit", ""); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return common, fmt.Errorf("%w: %s: rate_limit: %w", domain.ErrConnectorConfig, c.Kind, err)
		}
		common.RateLimit = f
	}
	if v := c.Setting("burst", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return common, fmt.Errorf("%w: %s: burst: %w", domain.ErrConnectorConfig, c.Kind, err)
		}
		common.Burst = n
	}
	return common, nil
}

// ParseBool reads a boolean setting, treating unset as def.
func ParseBool(c domain.Connector, name string, def bool) (bool, error) {
	v := c.Setting(name, "")
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%w: %s: %s: %w", domain.ErrConnectorConfig, c.Kind, name, err)
	}
	return b, nil
}
