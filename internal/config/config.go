package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/spf13/viper"
	"github.com/thesavant42/issuenav/internal/models"
)

const (
	SourceAPI   = "api"
	SourceLocal = "local"

	DefaultBaseURL  = "https://sentry.io"
	DefaultDBPath   = "issuenav.db"
	DefaultPageSize = 25
	MaxPageSize     = 100
	DefaultAddr     = ":8080"
)

var periodPattern = regexp.MustCompile(`^\d+[smhdw]$`)

// Config represents the full issuenav configuration
type Config struct {
	Org       string          `mapstructure:"org"`
	Source    string          `mapstructure:"source"` // "api" or "local"
	DBPath    string          `mapstructure:"db_path"`
	PageSize  int             `mapstructure:"page_size"`
	API       APIConfig       `mapstructure:"api"`
	Features  FeaturesConfig  `mapstructure:"features"`
	Selection SelectionConfig `mapstructure:"selection"`
	Server    ServerConfig    `mapstructure:"server"`
}

// APIConfig contains the hosted API connection settings
type APIConfig struct {
	BaseURL   string  `mapstructure:"base_url"`
	Token     string  `mapstructure:"token"`
	RateLimit float64 `mapstructure:"rate_limit"` // requests per second, 0 disables
	Burst     int     `mapstructure:"burst"`
}

// FeaturesConfig contains organization capability flags
type FeaturesConfig struct {
	GlobalViews bool `mapstructure:"global_views"`
}

// SelectionConfig is the default project/environment/time filter
type SelectionConfig struct {
	Projects     []int64  `mapstructure:"projects"`
	Environments []string `mapstructure:"environments"`
	Period       string   `mapstructure:"period"`
	Start        string   `mapstructure:"start"` // RFC3339
	End          string   `mapstructure:"end"`   // RFC3339
	UTC          bool     `mapstructure:"utc"`
}

// ServerConfig contains development server settings
type ServerConfig struct {
	Addr      string  `mapstructure:"addr"`
	Token     string  `mapstructure:"token"`
	RateLimit float64 `mapstructure:"rate_limit"`
	Burst     int     `mapstructure:"burst"`
}

// Load loads configuration from file and environment
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom loads configuration from a specific viper instance
func LoadFrom(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults sets default values for unset fields
func applyDefaults(cfg *Config) {
	if cfg.Source == "" {
		cfg.Source = SourceAPI
	}

	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath
	}

	if cfg.PageSize == 0 {
		cfg.PageSize = DefaultPageSize
	}

	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultBaseURL
	}

	if cfg.API.Token == "" {
		cfg.API.Token = os.Getenv("SENTRY_AUTH_TOKEN")
	}

	if cfg.API.Burst == 0 {
		cfg.API.Burst = 1
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultAddr
	}

	if cfg.Server.Burst == 0 {
		cfg.Server.Burst = 10
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Org == "" {
		return fmt.Errorf("organization is required")
	}

	if c.Source != SourceAPI && c.Source != SourceLocal {
		return fmt.Errorf("invalid source: %s (must be api or local)", c.Source)
	}

	if c.PageSize < 1 || c.PageSize > MaxPageSize {
		return fmt.Errorf("invalid page_size: %d (must be 1-%d)", c.PageSize, MaxPageSize)
	}

	if c.API.RateLimit < 0 || c.Server.RateLimit < 0 {
		return fmt.Errorf("rate_limit cannot be negative")
	}

	if _, err := c.PageSelection(); err != nil {
		return err
	}

	return nil
}

// PageSelection converts the selection settings into the global page filter.
// An absolute range takes effect only when both bounds are set and no period is.
func (c *Config) PageSelection() (models.PageSelection, error) {
	s := c.Selection
	sel := models.PageSelection{
		Projects:     s.Projects,
		Environments: s.Environments,
		DateTime: models.DateTime{
			Period: s.Period,
			UTC:    s.UTC,
		},
	}

	if s.Period != "" && !periodPattern.MatchString(s.Period) {
		return sel, fmt.Errorf("invalid selection period: %s", s.Period)
	}

	if (s.Start == "") != (s.End == "") {
		return sel, fmt.Errorf("selection start and end must be set together")
	}
	if s.Start != "" {
		start, err := time.Parse(time.RFC3339, s.Start)
		if err != nil {
			return sel, fmt.Errorf("invalid selection start: %w", err)
		}
		end, err := time.Parse(time.RFC3339, s.End)
		if err != nil {
			return sel, fmt.Errorf("invalid selection end: %w", err)
		}
		if end.Before(start) {
			return sel, fmt.Errorf("selection end is before start")
		}
		sel.DateTime.Start = &start
		sel.DateTime.End = &end
	}

	return sel, nil
}
