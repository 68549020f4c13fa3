package timeline

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/erniesg/aidobe-sub002/internal/analysis/scenetiming"
	timelinemodel "github.com/erniesg/aidobe-sub002/internal/model/timeline"
	"github.com/erniesg/aidobe-sub002/pkg/utils"
)

// Handler exposes scene allocation, rescaling, continuity checks and
// duration distribution.
type Handler struct{}

// New creates the timeline handler.
func New() *Handler {
	return &Handler{}
}

// RegisterRoutes registers the timeline routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/timeline/scenes", h.handleScenes)
	r.Post("/timeline/rescale", h.handleRescale)
	r.Post("/timeline/validate", h.handleValidate)
	r.Post("/timeline/fix", h.handleFix)
	r.Post("/timeline/distribute", h.handleDistribute)
}

func (h *Handler) handleScenes(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Segments       []timelinemodel.ScriptSegment `json:"segments"`
		TargetDuration float64                       `json:"targetDuration"`
		WordTimings    []timelinemodel.WordTiming    `json:"wordTimings,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	scenes, err := scenetiming.Allocate(payload.Segments, payload.TargetDuration, payload.WordTimings)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"scenes":   scenes,
		"sequence": scenetiming.ValidateSequence(scenes),
	})
}

func (h *Handler) handleRescale(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Scenes         []timelinemodel.SceneTiming `json:"scenes"`
		TargetDuration float64                     `json:"targetDuration"`
		MinDuration    float64                     `json:"minDuration,omitempty"`
		Exact          bool                        `json:"exact,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		scenes []timelinemodel.SceneTiming
		err    error
	)
	if payload.Exact {
		scenes, err = scenetiming.EnforceTotalDuration(payload.Scenes, payload.TargetDuration)
	} else {
		scenes, err = scenetiming.Rescale(payload.Scenes, payload.TargetDuration, payload.MinDuration)
	}
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"scenes": scenes})
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Scenes []timelinemodel.SceneTiming `json:"scenes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	continuity, err := scenetiming.ValidateContinuity(payload.Scenes)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"continuity": continuity,
		"sequence":   scenetiming.ValidateSequence(payload.Scenes),
	})
}

func (h *Handler) handleFix(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Scenes           []timelinemodel.SceneTiming `json:"scenes"`
		Strategy         string                      `json:"strategy,omitempty"`
		MinSceneDuration float64                     `json:"minSceneDuration,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fixed, err := applyFix(payload.Scenes, payload.Strategy, payload.MinSceneDuration)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	continuity, err := scenetiming.ValidateContinuity(fixed)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"scenes":     fixed,
		"continuity": continuity,
	})
}

func applyFix(scenes []timelinemodel.SceneTiming, strategy string, minSceneDuration float64) ([]timelinemodel.SceneTiming, error) {
	switch strategy {
	case "extend":
		return scenetiming.FixGapsExtendPrevious(scenes, minSceneDuration), nil
	case "shift":
		return scenetiming.FixGapsShiftFollowing(scenes), nil
	case "trim":
		return scenetiming.FixOverlapsTrimPrevious(scenes), nil
	case "all", "":
		return scenetiming.FixAll(scenes, minSceneDuration)
	default:
		return nil, fmt.Errorf("unknown fix strategy %q", strategy)
	}
}

func (h *Handler) handleDistribute(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		TotalDuration float64   `json:"totalDuration"`
		SceneCount    int       `json:"sceneCount,omitempty"`
		Weights       []float64 `json:"weights,omitempty"`
		MinDuration   float64   `json:"minDuration,omitempty"`
		MaxDuration   float64   `json:"maxDuration,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		durations []float64
		err       error
	)
	switch {
	case len(payload.Weights) > 0:
		durations, err = scenetiming.DistributeWeighted(payload.TotalDuration, payload.Weights)
	case payload.MinDuration > 0 || payload.MaxDuration > 0:
		durations, err = scenetiming.DistributeBounded(payload.TotalDuration, payload.SceneCount, payload.MinDuration, payload.MaxDuration)
	default:
		durations, err = scenetiming.DistributeEven(payload.TotalDuration, payload.SceneCount)
	}
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"durations": durations,
		"scenes":    scenetiming.PlanFromDurations(durations),
		"imbalance": scenetiming.SummarizeImbalance(durations, payload.TotalDuration),
	})
}
