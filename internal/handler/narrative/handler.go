package narrative

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	narrativeservice "github.com/erniesg/aidobe-sub002/internal/service/narrative"
	"github.com/erniesg/aidobe-sub002/pkg/utils"
)

// Handler exposes narrative role segmentation.
type Handler struct {
	narrative *narrativeservice.Service
}

// New creates the narrative handler.
func New(narrativeSvc *narrativeservice.Service) *Handler {
	return &Handler{narrative: narrativeSvc}
}

// RegisterRoutes registers the narrative routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/narrative/segments", h.handleSegments)
}

func (h *Handler) handleSegments(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Script string `json:"script"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Script) == "" {
		utils.RespondError(w, http.StatusBadRequest, "script is required")
		return
	}

	segmentation := h.narrative.Segment(r.Context(), payload.Script)

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"segments":   segmentation.Segments,
		"source":     segmentation.Source,
		"confidence": segmentation.Confidence,
		"reason":     segmentation.Reason,
	})
}
