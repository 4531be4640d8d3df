package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/eta/internal/app"
	"github.com/okian/eta/internal/domain/model"
	"github.com/okian/eta/internal/domain/types"
)

// PredictionDependencies defines the interface for scoring orders.
type PredictionDependencies interface {
	PredictBatch(ctx context.Context, orders []model.RawOrderRecord) ([]service.Prediction, error)
}

// PredictionsHandler handles prediction requests.
type PredictionsHandler struct {
	deps         PredictionDependencies
	maxBatch     int
	maxBodyBytes int64
}

// predictionRequest mirrors the OpenAPI schema for POST /api/v1/predictions.
// Orders are kept raw so absent columns can be told apart from zero values.
type predictionRequest struct {
	Orders []map[string]json.RawMessage `json:"orders"`
}

type predictionResponse struct {
	Predictions []types.Prediction `json:"predictions"`
}

// NewPredictionsHandler creates a new predictions handler.
func NewPredictionsHandler(deps PredictionDependencies, maxBatch int, maxBodyBytes int64) *PredictionsHandler {
	return &PredictionsHandler{deps: deps, maxBatch: maxBatch, maxBodyBytes: maxBodyBytes}
}

// HandlePostPredictions handles POST /api/v1/predictions requests.
func (h *PredictionsHandler) HandlePostPredictions(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_predictions"

	var req predictionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	switch {
	case len(req.Orders) == 0:
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("orders must not be empty")))
		return
	case len(req.Orders) > h.maxBatch:
		writeError(w, http.StatusBadRequest, "limit_exceeded",
			WrapKind(op, ErrBadRequest, fmt.Errorf("at most %d orders per request", h.maxBatch)))
		return
	}

	orders := make([]model.RawOrderRecord, len(req.Orders))
	for i, fields := range req.Orders {
		rec, err := model.Parse(jsonLookup(fields))
		if err != nil {
			status, code := StatusFor(err)
			writeError(w, status, code, Wrap(op, fmt.Errorf("order %d: %w", i, err)))
			return
		}
		orders[i] = rec
	}

	preds, err := h.deps.PredictBatch(r.Context(), orders)
	if err != nil {
		status, code := StatusFor(err)
		writeError(w, status, code, Wrap(op, err))
		return
	}

	out := predictionResponse{Predictions: make([]types.Prediction, len(preds))}
	for i, p := range preds {
		out.Predictions[i] = p.View()
	}
	writeJSON(w, http.StatusOK, out)
}

// jsonLookup reads a column from a raw JSON object. Strings are unquoted,
// other values are passed through as their literal text, null is absent.
func jsonLookup(fields map[string]json.RawMessage) model.Lookup {
	return func(key string) (string, bool) {
		raw, ok := fields[key]
		if !ok {
			return "", false
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || string(raw) == "null" {
			return "", false
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s, true
		}
		return string(raw), true
	}
}
