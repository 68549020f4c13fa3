package preset

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/erniesg/aidobe-sub002/internal/model/preset"
	"github.com/erniesg/aidobe-sub002/pkg/utils"
)

// Handler exposes the render preset catalog.
type Handler struct {
	presets preset.Store
}

// New creates the preset handler.
func New(presets preset.Store) *Handler {
	return &Handler{presets: presets}
}

// RegisterRoutes registers the preset routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/presets", h.handleListPresets)
	r.Get("/presets/{presetID}", h.handleGetPreset)
}

func (h *Handler) handleListPresets(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.presets.List())
}

func (h *Handler) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	presetID := chi.URLParam(r, "presetID")

	found, ok := h.presets.FindByID(presetID)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "preset not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, found)
}
