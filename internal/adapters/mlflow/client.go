// Package mlflow scores engineered records against a model hosted by an
// MLflow scoring server (mlflow models serve).
package mlflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/okian/eta/internal/domain/features"
	"github.com/okian/eta/pkg/logger"
	"github.com/okian/eta/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultTimeout            = 10 * time.Second
	defaultBreakerMaxRequests = 1
	defaultBreakerInterval    = 60 * time.Second
	defaultBreakerTimeout     = 30 * time.Second
	defaultBreakerFailures    = 5

	invocationsPath = "/invocations"
	pingPath        = "/ping"

	maxResponseBytes = 1 << 20
	maxErrorBody     = 256
)

// Predictor scores engineered rows. It returns one value per row, in order,
// interpreted as delivery duration in hours.
type Predictor interface {
	Predict(ctx context.Context, rows []features.EngineeredRecord) ([]float64, error)
}

// Client is a Predictor backed by an MLflow scoring server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     logger.Logger

	breaker            *gobreaker.CircuitBreaker
	breakerMaxRequests uint32
	breakerInterval    time.Duration
	breakerTimeout     time.Duration
	breakerFailures    uint32

	trackingURI  string
	runID        string
	artifactPath string
}

// dataframeSplit is the pandas "split" orientation accepted by /invocations.
type dataframeSplit struct {
	Columns []string `json:"columns"`
	Data    [][]any  `json:"data"`
}

type invocationRequest struct {
	DataframeSplit dataframeSplit `json:"dataframe_split"`
}

// New creates a client for the scoring server at servingURL.
func New(servingURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(servingURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, servingURL)
	}

	c := &Client{
		baseURL:            strings.TrimRight(u.String(), "/"),
		httpClient:         &http.Client{},
		timeout:            defaultTimeout,
		logger:             logger.Nop(),
		breakerMaxRequests: defaultBreakerMaxRequests,
		breakerInterval:    defaultBreakerInterval,
		breakerTimeout:     defaultBreakerTimeout,
		breakerFailures:    defaultBreakerFailures,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "mlflow",
		MaxRequests: c.breakerMaxRequests,
		Interval:    c.breakerInterval,
		Timeout:     c.breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= c.breakerFailures
		},
		IsSuccessful: func(err error) bool {
			return !isOutage(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn(context.Background(), "model circuit breaker state changed",
				logger.String("name", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
			metrics.UpdateModelBreakerState(int(to))
		},
	})
	metrics.UpdateModelBreakerState(int(gobreaker.StateClosed))
	return c, nil
}

// ServingURL returns the scoring server base URL.
func (c *Client) ServingURL() string { return c.baseURL }

// TrackingURI returns the tracking server the model was logged to.
func (c *Client) TrackingURI() string { return c.trackingURI }

// ModelURI returns the runs:/ URI of the served model, or "" when the run is unknown.
func (c *Client) ModelURI() string {
	if c.runID == "" {
		return ""
	}
	return "runs:/" + c.runID + "/" + c.artifactPath
}

// BreakerState reports the circuit breaker state: closed, half-open or open.
func (c *Client) BreakerState() string { return c.breaker.State().String() }

// Ping checks that the scoring server is up and has loaded its model.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pingPath, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create ping request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: ping: %w", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: ping: %w", ErrUnavailable, statusError(resp))
	}
	return nil
}

// Predict implements Predictor.
func (c *Client) Predict(ctx context.Context, rows []features.EngineeredRecord) ([]float64, error) {
	if len(rows) == 0 {
		return []float64{}, nil
	}

	body, err := encodeRows(rows)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.invoke(ctx, body, len(rows))
	})
	latencyMs := float64(time.Since(start).Milliseconds())

	if err != nil {
		kind := errorKind(err)
		metrics.RecordModelError(kind)
		metrics.RecordErrorLatency("model", kind, latencyMs)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		c.logger.Error(ctx, "model invocation failed", logger.Error(err), logger.Int("rows", len(rows)))
		return nil, err
	}

	metrics.RecordModelLatency(latencyMs)
	preds, _ := out.([]float64)
	return preds, nil
}

func (c *Client) invoke(ctx context.Context, body []byte, want int) ([]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+invocationsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read model response: %w", err)
	}
	preds, err := decodePredictions(raw)
	if err != nil {
		return nil, err
	}
	if len(preds) != want {
		return nil, fmt.Errorf("%w: got %d predictions for %d rows", ErrInvalidResponse, len(preds), want)
	}
	return preds, nil
}

func encodeRows(rows []features.EngineeredRecord) ([]byte, error) {
	data := make([][]any, len(rows))
	for i, r := range rows {
		data[i] = r.Row()
	}
	b, err := json.Marshal(invocationRequest{DataframeSplit: dataframeSplit{
		Columns: features.Columns(),
		Data:    data,
	}})
	if err != nil {
		return nil, fmt.Errorf("failed to encode rows: %w", err)
	}
	return b, nil
}

// decodePredictions accepts {"predictions": [...]} (MLflow 2.x) or a bare
// array (MLflow 1.x). Each element must be a number or a one-element array
// holding a number.
func decodePredictions(raw []byte) ([]float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrInvalidResponse)
	}

	var items []json.RawMessage
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	} else {
		var wrapped struct {
			Predictions []json.RawMessage `json:"predictions"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		if wrapped.Predictions == nil {
			return nil, fmt.Errorf("%w: missing predictions", ErrInvalidResponse)
		}
		items = wrapped.Predictions
	}

	out := make([]float64, len(items))
	for i, item := range items {
		v, err := decodeScalar(item)
		if err != nil {
			return nil, fmt.Errorf("%w: prediction %d: %v", ErrInvalidResponse, i, err)
		}
		out[i] = v
	}
	return out, nil
}

func decodeScalar(item json.RawMessage) (float64, error) {
	if string(bytes.TrimSpace(item)) == "null" {
		return 0, errors.New("null prediction")
	}
	var v float64
	if err := json.Unmarshal(item, &v); err == nil {
		return v, nil
	}
	var nested []float64
	if err := json.Unmarshal(item, &nested); err == nil && len(nested) == 1 {
		return nested[0], nil
	}
	return 0, fmt.Errorf("not a number: %s", truncate(string(item)))
}

func statusError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
}

// isOutage reports whether err says the model server is unhealthy. A caller
// that went away or a request the server rejected as malformed does not.
func isOutage(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) && se.Code >= 400 && se.Code < 500 {
		return false
	}
	return true
}

func errorKind(err error) string {
	var se *StatusError
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "breaker_open"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &se):
		return "status"
	case errors.Is(err, ErrInvalidResponse):
		return "invalid_response"
	default:
		return "transport"
	}
}

func truncate(s string) string {
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}
