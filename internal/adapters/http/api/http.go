// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/eta/internal/adapters/mlflow"
	service "github.com/okian/eta/internal/app"
	"github.com/okian/eta/internal/domain/model"
	"github.com/okian/eta/internal/domain/types"
)

const (
	defaultMaxBatch     = 1000
	defaultMaxBodyBytes = 1 << 20
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	PredictBatch(ctx context.Context, orders []model.RawOrderRecord) ([]service.Prediction, error)
	ModelInfo() types.ModelInfo
	BreakerState() string
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	modelHandler       *ModelHandler
	predictionsHandler *PredictionsHandler
}

// Option applies a configuration option to the Server.
type Option func(*serverConfig)

type serverConfig struct {
	maxBatch     int
	maxBodyBytes int64
}

// WithMaxBatch caps the number of orders accepted per request.
func WithMaxBatch(n int) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxBatch = n
		}
	}
}

// WithMaxBodyBytes caps the request body size.
func WithMaxBodyBytes(n int64) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxBodyBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	cfg := serverConfig{maxBatch: defaultMaxBatch, maxBodyBytes: defaultMaxBodyBytes}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		healthHandler:      NewHealthHandler(deps),
		modelHandler:       NewModelHandler(deps),
		predictionsHandler: NewPredictionsHandler(deps, cfg.maxBatch, cfg.maxBodyBytes),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("GET /api/v1/model", MetricsMiddleware(s.modelHandler.HandleGetModel, "model"))
	mux.HandleFunc("POST /api/v1/predictions", MetricsMiddleware(s.predictionsHandler.HandlePostPredictions, "predictions"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// StatusFor maps a prediction pipeline error to an HTTP status and a short
// machine readable code.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrMissingField):
		return http.StatusBadRequest, "missing_field"
	case errors.Is(err, model.ErrInvalidField):
		return http.StatusBadRequest, "invalid_field"
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, mlflow.ErrUnavailable):
		return http.StatusServiceUnavailable, "model_unavailable"
	case errors.Is(err, service.ErrModel):
		return http.StatusBadGateway, "model_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
