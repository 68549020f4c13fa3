package audio

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/erniesg/aidobe-sub002/internal/analysis/audiomix"
	"github.com/erniesg/aidobe-sub002/internal/config"
	"github.com/erniesg/aidobe-sub002/internal/model/timeline"
	"github.com/erniesg/aidobe-sub002/internal/service/media"
	"github.com/erniesg/aidobe-sub002/pkg/utils"
)

// Handler exposes audio segment building, mix levels and sync checks.
type Handler struct {
	engine config.EngineConfig
	media  *media.Client
}

// New creates the audio handler. mediaClient may be nil; sync requests must
// then carry a measured audio duration instead of a URL.
func New(engine config.EngineConfig, mediaClient *media.Client) *Handler {
	return &Handler{engine: engine, media: mediaClient}
}

// RegisterRoutes registers the audio routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/audio/segments", h.handleSegments)
	r.Post("/audio/levels", h.handleLevels)
	r.Post("/audio/sync", h.handleSync)
}

func (h *Handler) handleSegments(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		WordTimings []timeline.WordTiming           `json:"wordTimings"`
		Ranges      []timeline.AudioExtractionRange `json:"ranges"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(payload.Ranges) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "ranges are required")
		return
	}

	batch := audiomix.BuildBatch(payload.Ranges, payload.WordTimings)

	failures := make([]map[string]string, 0)
	for _, outcome := range batch.Outcomes {
		if outcome.Err != nil {
			failures = append(failures, map[string]string{
				"sceneId": outcome.SceneID,
				"error":   outcome.Err.Error(),
			})
		}
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"segments":      batch.Segments,
		"totalDuration": batch.TotalDuration,
		"failures":      failures,
	})
}

func (h *Handler) handleLevels(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		VoiceVolume    *float64 `json:"voiceVolume,omitempty"`
		MusicVolume    *float64 `json:"musicVolume,omitempty"`
		DuckingEnabled *bool    `json:"duckingEnabled,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	voice := h.engine.VoiceVolume
	if payload.VoiceVolume != nil {
		voice = *payload.VoiceVolume
	}
	music := h.engine.MusicVolume
	if payload.MusicVolume != nil {
		music = *payload.MusicVolume
	}
	ducking := h.engine.DuckingEnabled
	if payload.DuckingEnabled != nil {
		ducking = *payload.DuckingEnabled
	}

	levels := audiomix.ComputeLevelsReduced(voice, music, ducking, h.engine.DuckingReduction)

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"voiceLevel":       levels.VoiceLevel,
		"musicLevel":       levels.MusicLevel,
		"musicFadeSeconds": h.engine.MusicFadeSeconds,
	})
}

func (h *Handler) handleSync(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		VideoDuration     float64   `json:"videoDuration,omitempty"`
		AudioDuration     float64   `json:"audioDuration,omitempty"`
		AudioURL          string    `json:"audioUrl,omitempty"`
		ActualDurations   []float64 `json:"actualDurations,omitempty"`
		ExpectedDurations []float64 `json:"expectedDurations,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(payload.ActualDurations) > 0 || len(payload.ExpectedDurations) > 0 {
		report, err := audiomix.ValidateSync(payload.ActualDurations, payload.ExpectedDurations)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]any{"validation": report})
		return
	}

	audioDuration := payload.AudioDuration
	if audioDuration == 0 && payload.AudioURL != "" {
		if !h.media.Enabled() {
			utils.RespondError(w, http.StatusBadRequest, "audioDuration is required when no media collaborator is configured")
			return
		}
		measured, err := h.media.Duration(r.Context(), payload.AudioURL)
		if err != nil {
			utils.RespondError(w, http.StatusBadGateway, "failed to measure audio duration")
			return
		}
		audioDuration = measured
	}

	recommendation, err := audiomix.RecommendSync(payload.VideoDuration, audioDuration)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"recommendation": recommendation})
}
