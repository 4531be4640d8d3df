package api

import (
	"net/http"

	"github.com/okian/eta/internal/domain/types"
)

// ModelDependencies exposes the served model card.
type ModelDependencies interface {
	ModelInfo() types.ModelInfo
}

// ModelHandler handles model metadata requests.
type ModelHandler struct {
	deps ModelDependencies
}

// NewModelHandler creates a new model handler.
func NewModelHandler(deps ModelDependencies) *ModelHandler {
	return &ModelHandler{deps: deps}
}

// HandleGetModel handles GET /api/v1/model requests.
func (h *ModelHandler) HandleGetModel(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.ModelInfo())
}
