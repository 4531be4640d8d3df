package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/eta/pkg/metrics"
)

// HealthDependencies exposes the state reported by /healthz.
type HealthDependencies interface {
	BreakerState() string
}

// HealthHandler handles health check and metrics requests.
type HealthHandler struct {
	deps    HealthDependencies
	metrics http.Handler
}

type healthResponse struct {
	Status  string `json:"status"`
	Breaker string `json:"breaker"`
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps HealthDependencies) *HealthHandler {
	return &HealthHandler{
		deps:    deps,
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

// HandleHealth handles GET /healthz requests. The process is live whenever it
// answers; an open breaker is reported as degraded.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	state := h.deps.BreakerState()
	status := "ok"
	if state != "closed" {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: status, Breaker: state})
}

// HandleMetrics serves the service registry in the Prometheus exposition format.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}
