package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all configuration for the chat client.
type Config struct {
	// ServerURL is the base URL of the chat REST backend.
	ServerURL string `env:"CHAT_SERVER_URL" envDefault:"http://localhost:8080"`

	LogLevel string `env:"CHAT_LOG_LEVEL" envDefault:"info"`

	// SessionPath is the SQLite file holding the persisted session. An empty
	// value falls back to a per-user default under the OS config directory.
	SessionPath string `env:"CHAT_SESSION_PATH"`

	// RequestTimeout bounds every request including retries.
	RequestTimeout time.Duration `env:"CHAT_REQUEST_TIMEOUT" envDefault:"30s"`

	MaxRetries   int           `env:"CHAT_MAX_RETRIES" envDefault:"3"`
	RetryWaitMin time.Duration `env:"CHAT_RETRY_WAIT_MIN" envDefault:"1s"`
	RetryWaitMax time.Duration `env:"CHAT_RETRY_WAIT_MAX" envDefault:"5s"`

	// MetricsAddr, when set, serves Prometheus metrics on that address for
	// the lifetime of the command (for example "127.0.0.1:9091").
	MetricsAddr string `env:"CHAT_METRICS_ADDR"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	u, err := url.Parse(cfg.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid CHAT_SERVER_URL %q", cfg.ServerURL)
	}

	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("CHAT_REQUEST_TIMEOUT must be positive, got %s", cfg.RequestTimeout)
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("CHAT_MAX_RETRIES must not be negative, got %d", cfg.MaxRetries)
	}

	if cfg.SessionPath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve session path: %w", err)
		}
		cfg.SessionPath = filepath.Join(dir, "chatcli", "session.db")
	}

	return cfg, nil
}
