package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names understood by Load.
const (
	EnvPrefix  = "ETA_"
	EnvFile    = "ETA_CONFIG"
	EnvDotFile = "ETA_DOTENV"

	defaultDotEnv = ".env"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML) if ETA_CONFIG is set
//  3. env (prefix ETA_), after loading a .env file (ETA_DOTENV or ./.env)
//     if one exists; variables already set in the process win over .env
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	if path := os.Getenv(EnvFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// ETA_SERVING_URL -> serving_url. Underscores are kept to match the
	// flat koanf tags on the struct.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv reads an optional .env file into the process environment.
func loadDotEnv() error {
	path := os.Getenv(EnvDotFile)
	explicit := path != ""
	if !explicit {
		path = defaultDotEnv
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("%w: dotenv %s: %w", ErrLoadConfig, path, err)
}

// Validate checks the fields the service cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	u, err := url.Parse(c.ServingURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: serving_url must be an http(s) URL, got %q", ErrInvalidConfig, c.ServingURL)
	}
	if c.ModelTimeoutMS <= 0 {
		return fmt.Errorf("%w: model_timeout_ms must be positive", ErrInvalidConfig)
	}
	if c.BreakerFailureThreshold <= 0 {
		return fmt.Errorf("%w: breaker_failure_threshold must be positive", ErrInvalidConfig)
	}
	if c.BreakerMaxRequests <= 0 {
		return fmt.Errorf("%w: breaker_max_requests must be positive", ErrInvalidConfig)
	}
	if c.BreakerIntervalSec < 0 || c.BreakerTimeoutSec <= 0 {
		return fmt.Errorf("%w: breaker_interval_sec must be >= 0 and breaker_timeout_sec > 0", ErrInvalidConfig)
	}
	return nil
}
