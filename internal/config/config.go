// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8501".
	Addr string `koanf:"addr"`

	// TrackingURI is the MLflow tracking server the model was logged to.
	TrackingURI string `koanf:"tracking_uri"`

	// RunID and ArtifactPath locate the model as runs:/<run_id>/<artifact_path>.
	RunID        string `koanf:"run_id"`
	ArtifactPath string `koanf:"artifact_path"`

	// ServingURL is the base URL of the scoring server hosting the model.
	ServingURL string `koanf:"serving_url"`

	// ModelTimeoutMS bounds each call to the scoring server.
	ModelTimeoutMS int `koanf:"model_timeout_ms"`

	// StartupCheck pings the scoring server before serving traffic.
	StartupCheck bool `koanf:"startup_check"`

	// Circuit breaker around the scoring server.
	BreakerMaxRequests      int `koanf:"breaker_max_requests"`
	BreakerIntervalSec      int `koanf:"breaker_interval_sec"`
	BreakerTimeoutSec       int `koanf:"breaker_timeout_sec"`
	BreakerFailureThreshold int `koanf:"breaker_failure_threshold"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               "text",
		Addr:                    ":8501",
		TrackingURI:             "https://dagshub.com/Pooja-Spandana/Amazon_DeliveryTime_Prediction.mlflow",
		RunID:                   "0009aa096930489b83713cffcc379070",
		ArtifactPath:            "Final_RF_Model",
		ServingURL:              "http://127.0.0.1:5001",
		ModelTimeoutMS:          10_000,
		StartupCheck:            true,
		BreakerMaxRequests:      1,
		BreakerIntervalSec:      60,
		BreakerTimeoutSec:       30,
		BreakerFailureThreshold: 5,
	}
}

// ModelTimeout returns ModelTimeoutMS as a duration.
func (c *Config) ModelTimeout() time.Duration {
	return time.Duration(c.ModelTimeoutMS) * time.Millisecond
}

// BreakerInterval returns BreakerIntervalSec as a duration.
func (c *Config) BreakerInterval() time.Duration {
	return time.Duration(c.BreakerIntervalSec) * time.Second
}

// BreakerTimeout returns BreakerTimeoutSec as a duration.
func (c *Config) BreakerTimeout() time.Duration {
	return time.Duration(c.BreakerTimeoutSec) * time.Second
}
