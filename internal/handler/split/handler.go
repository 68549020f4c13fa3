package split

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/erniesg/aidobe-sub002/internal/analysis/splitter"
	"github.com/erniesg/aidobe-sub002/internal/model/preset"
	"github.com/erniesg/aidobe-sub002/internal/model/timeline"
	"github.com/erniesg/aidobe-sub002/pkg/utils"
)

// Handler exposes the transcript splitting strategies.
type Handler struct {
	presets preset.Store
}

// New creates the split handler.
func New(presets preset.Store) *Handler {
	return &Handler{presets: presets}
}

// RegisterRoutes registers the splitting routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/split", h.handleSplit)
	r.Post("/split/avatar", h.handleSplitAvatar)
}

type splitRequest struct {
	Transcript  string                `json:"transcript"`
	WordTimings []timeline.WordTiming `json:"wordTimings"`
	Strategy    string                `json:"strategy,omitempty"`
	MaxChars    int                   `json:"maxChars,omitempty"`
	MaxDuration float64               `json:"maxDuration,omitempty"`
	PresetID    string                `json:"presetId,omitempty"`
}

func (h *Handler) handleSplit(w http.ResponseWriter, r *http.Request) {
	var payload splitRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.PresetID != "" {
		p, ok := h.presets.FindByID(payload.PresetID)
		if !ok {
			utils.RespondError(w, http.StatusBadRequest, "preset not found")
			return
		}
		if payload.MaxChars == 0 {
			payload.MaxChars = p.MaxChunkChars
		}
		if payload.MaxDuration == 0 {
			payload.MaxDuration = p.MaxSegmentSeconds
		}
	}

	strategy, err := resolveStrategy(payload)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := splitter.Split(payload.Transcript, payload.WordTimings, strategy)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleSplitAvatar(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Transcript  string                `json:"transcript"`
		WordTimings []timeline.WordTiming `json:"wordTimings"`
		MaxChars    int                   `json:"maxChars,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := splitter.SplitForAvatar(payload.Transcript, payload.WordTimings, payload.MaxChars)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

// resolveStrategy maps the request strategy name onto the closed strategy
// set. An empty name means the avatar composite, the strategy the rest of
// the product assumes.
func resolveStrategy(payload splitRequest) (splitter.Strategy, error) {
	switch payload.Strategy {
	case "sentence":
		return splitter.SentenceStrategy{}, nil
	case "character_limit":
		return splitter.CharacterLimitStrategy{MaxChars: payload.MaxChars}, nil
	case "time_segment":
		return splitter.TimeSegmentStrategy{MaxDuration: payload.MaxDuration}, nil
	case "avatar_composite", "":
		return splitter.AvatarStrategy{MaxChars: payload.MaxChars}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", payload.Strategy)
	}
}
