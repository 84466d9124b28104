// Package config loads process settings from the environment and manages
// the per-account settings file.
package config

import (
	"fmt"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

const (
	ModeAPI   = "api"
	ModeOAuth = "oauth"
	ModeMock  = "mock"
)

type Config struct {
	CollectorMode string `env:"REDELETE_COLLECTOR_MODE" envDefault:"oauth"`

	ClientID     string `env:"REDDIT_CLIENT_ID"`
	ClientSecret string `env:"REDDIT_CLIENT_SECRET"`
	Username     string `env:"REDDIT_USERNAME"`
	Password     string `env:"REDDIT_PASSWORD"`
	UserAgent    string `env:"REDDIT_USER_AGENT" envDefault:"redelete:v0.2.0 (bulk history cleanup)"`

	ConfigFile string `env:"REDELETE_CONFIG_FILE"`

	RequestsPerMinute int `env:"REDELETE_REQUESTS_PER_MINUTE" envDefault:"55"`
	MaxFetchAttempts  int `env:"REDELETE_MAX_FETCH_ATTEMPTS" envDefault:"5"`
	PageSize          int `env:"REDELETE_PAGE_SIZE" envDefault:"100"`

	// Overrides for the remote endpoints, mostly for testing.
	APIBase  string `env:"REDELETE_API_BASE"`
	TokenURL string `env:"REDELETE_TOKEN_URL"`

	MockItems int `env:"REDELETE_MOCK_ITEMS" envDefault:"50"`
}

// Load reads .env files (missing ones are ignored) and then the environment.
// Call Validate before talking to the API.
func Load(files ...string) (Config, error) {
	godotenv.Load(files...)

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Validate checks that the selected collector mode has what it needs.
func (c Config) Validate() error {
	switch c.CollectorMode {
	case ModeAPI:
		if c.ClientID == "" || c.ClientSecret == "" || c.Username == "" || c.Password == "" {
			return fmt.Errorf("api mode needs REDDIT_CLIENT_ID, REDDIT_CLIENT_SECRET, REDDIT_USERNAME and REDDIT_PASSWORD")
		}
	case ModeOAuth:
		if c.ClientID == "" {
			return fmt.Errorf("oauth mode needs REDDIT_CLIENT_ID")
		}
	case ModeMock:
	default:
		return fmt.Errorf("unknown REDELETE_COLLECTOR_MODE: %s (use 'api', 'oauth', or 'mock')", c.CollectorMode)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("REDDIT_USER_AGENT is required")
	}
	if c.MaxFetchAttempts < 1 {
		return fmt.Errorf("REDELETE_MAX_FETCH_ATTEMPTS must be at least 1, got %d", c.MaxFetchAttempts)
	}
	return nil
}
