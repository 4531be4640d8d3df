package mlflow

import (
	"net/http"
	"time"

	"github.com/okian/eta/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each scoring call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBreaker configures the circuit breaker around scoring calls.
// maxRequests is the number of trial calls let through while half-open,
// interval the window after which closed-state counts reset (0 never resets),
// timeout how long the breaker stays open, and failures the number of
// consecutive failures that opens it.
func WithBreaker(maxRequests uint32, interval, timeout time.Duration, failures uint32) Option {
	return func(c *Client) {
		if maxRequests > 0 {
			c.breakerMaxRequests = maxRequests
		}
		if interval >= 0 {
			c.breakerInterval = interval
		}
		if timeout > 0 {
			c.breakerTimeout = timeout
		}
		if failures > 0 {
			c.breakerFailures = failures
		}
	}
}

// WithModelCoordinates records where the served model comes from. They are
// informational; scoring only talks to the serving URL.
func WithModelCoordinates(trackingURI, runID, artifactPath string) Option {
	return func(c *Client) {
		c.trackingURI = trackingURI
		c.runID = runID
		c.artifactPath = artifactPath
	}
}
