package file

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/hub/internal/core/domain"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultListen is the HTTP listen address used when none is configured.
const DefaultListen = ":8080"

var validate = validator.New()

// Config is the decoded configuration file.
type Config struct {
	Server     ServerConfig      `toml:"server"`
	Query      QueryConfig       `toml:"query"`
	Storage    StorageConfig     `toml:"storage"`
	Scheduler  SchedulerConfig   `toml:"scheduler"`
	OAuth      OAuthConfig       `toml:"oauth"`
	Connectors []ConnectorConfig `toml:"connectors" validate:"dive"`
	Polls      []PollConfig      `toml:"polls" validate:"dive"`
}

// ServerConfig configures the HTTP adapter.
type ServerConfig struct {
	Listen string `toml:"listen"`

	// BaseURL prefixes the links rendered in reflection and page results.
	// Empty renders host-relative links.
	BaseURL string `toml:"base_url" validate:"omitempty,url"`
}

// QueryConfig configures entity set listings.
type QueryConfig struct {
	// PageSize overrides the per-backend default page size when positive.
	PageSize int `toml:"page_size" validate:"gte=0"`
}

// StorageConfig selects where cursors and notifications are kept.
type StorageConfig struct {
	Driver  string `toml:"driver" validate:"omitempty,oneof=memory sqlite postgres"`
	DataDir string `toml:"data_dir"`
	DSN     string `toml:"dsn" validate:"required_if=Driver postgres"`
}

// SchedulerConfig configures background polling.
type SchedulerConfig struct {
	Enabled *bool  `toml:"enabled"`
	Tick    string `toml:"tick"`
}

// OAuthConfig configures the client-credentials token provider used by
// shared connectors. An empty TokenURL disables delegated tokens.
type OAuthConfig struct {
	TokenURL     string   `toml:"token_url" validate:"omitempty,url"`
	ClientID     string   `toml:"client_id" validate:"required_with=TokenURL"`
	ClientSecret string   `toml:"client_secret"`
	Scopes       []string `toml:"scopes"`
}

// ConnectorConfig is one [[connectors]] record.
type ConnectorConfig struct {
	ID          string            `toml:"id" validate:"required,excludesall=/"`
	Kind        string            `toml:"kind" validate:"required"`
	Name        string            `toml:"name"`
	Owner       string            `toml:"owner" validate:"omitempty,email"`
	Shared      bool              `toml:"shared"`
	SecretToken string            `toml:"secret_token"`
	Settings    map[string]string `toml:"settings"`
}

// PollConfig is one [[polls]] subscription.
type PollConfig struct {
	Connector string `toml:"connector" validate:"required"`
	Event     string `toml:"event" validate:"required"`
	Interval  string `toml:"interval"`
	Enabled   *bool  `toml:"enabled"`
}

// Validate checks field constraints and cross-record consistency.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, err)
	}

	seen := make(map[string]bool, len(c.Connectors))
	for _, conn := range c.Connectors {
		if seen[conn.ID] {
			return fmt.Errorf("%w: duplicate connector id %q", domain.ErrInvalidInput, conn.ID)
		}
		seen[conn.ID] = true
	}
	for _, p := range c.Polls {
		if !seen[p.Connector] {
			return fmt.Errorf("%w: poll of unknown connector %q", domain.ErrInvalidInput, p.Connector)
		}
		if _, err := parseDuration(p.Interval, 0); err != nil {
			return fmt.Errorf("%w: poll %s %s: %w", domain.ErrInvalidInput, p.Connector, p.Event, err)
		}
	}
	if _, err := parseDuration(c.Scheduler.Tick, 0); err != nil {
		return fmt.Errorf("%w: scheduler tick: %w", domain.ErrInvalidInput, err)
	}
	return nil
}

// ListenAddr returns the configured listen address or DefaultListen.
func (c *Config) ListenAddr() string {
	if c.Server.Listen == "" {
		return DefaultListen
	}
	return c.Server.Listen
}

// StorageDriver returns the configured driver, sqlite by default.
func (c *Config) StorageDriver() string {
	if c.Storage.Driver == "" {
		return DriverSQLite
	}
	return c.Storage.Driver
}

// ConnectorRecords converts the [[connectors]] tables into domain records.
func (c *Config) ConnectorRecords() []domain.Connector {
	records := make([]domain.Connector, 0, len(c.Connectors))
	for _, conn := range c.Connectors {
		records = append(records, conn.record())
	}
	return records
}

func (c ConnectorConfig) record() domain.Connector {
	name := c.Name
	if name == "" {
		name = c.ID
	}
	settings := make(map[string]string, len(c.Settings))
	for k, v := range c.Settings {
		settings[k] = v
	}
	return domain.Connector{
		ID:          c.ID,
		Kind:        strings.ToLower(c.Kind),
		Name:        name,
		OwnerEmail:  c.Owner,
		Shared:      c.Shared,
		SecretToken: c.SecretToken,
		Settings:    settings,
	}
}

// SchedulerConfig converts the [scheduler] and [[polls]] tables.
func (c *Config) SchedulerConfig() domain.SchedulerConfig {
	cfg := domain.DefaultSchedulerConfig()
	if c.Scheduler.Enabled != nil {
		cfg.Enabled = *c.Scheduler.Enabled
	}
	cfg.Tick, _ = parseDuration(c.Scheduler.Tick, cfg.Tick)

	for _, p := range c.Polls {
		interval, _ := parseDuration(p.Interval, domain.DefaultPollInterval)
		enabled := true
		if p.Enabled != nil {
			enabled = *p.Enabled
		}
		cfg.Subscriptions = append(cfg.Subscriptions, domain.PollSubscription{
			ConnectorID: p.Connector,
			EventPath:   p.Event,
			Interval:    interval,
			Enabled:     enabled,
		})
	}
	return cfg
}

// parseDuration parses s, returning def when s is empty.
func parseDuration(s string, def time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def, err
	}
	if d <= 0 {
		return def, fmt.Errorf("duration must be positive: %s", s)
	}
	return d, nil
}
