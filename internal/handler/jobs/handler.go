package jobs

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/erniesg/aidobe-sub002/internal/model/job"
	"github.com/erniesg/aidobe-sub002/internal/service/pipeline"
	"github.com/erniesg/aidobe-sub002/pkg/utils"
)

// Handler exposes pipeline job submission, lookup and progress streaming.
type Handler struct {
	jobs *pipeline.Service
}

// New creates the jobs handler.
func New(jobs *pipeline.Service) *Handler {
	return &Handler{jobs: jobs}
}

// RegisterRoutes registers the job routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/jobs", h.handleSubmit)
	r.Get("/jobs", h.handleList)
	r.Get("/jobs/{jobID}", h.handleGet)
	r.Get("/jobs/{jobID}/events", h.handleEvents)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var payload job.Request
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	submitted, err := h.jobs.Submit(r.Context(), payload)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, pipeline.ErrTranscriptRequired) || errors.Is(err, pipeline.ErrPresetNotFound) {
			status = http.StatusBadRequest
		}
		utils.RespondError(w, status, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusAccepted, submitted)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.jobs.List(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	found, err := h.jobs.Get(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, pipeline.ErrJobNotFound) {
			utils.RespondError(w, http.StatusNotFound, "job not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, found)
}

// handleEvents replays the job's event history and then streams live events
// until the job finishes or the client disconnects.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	history, events, cancel, err := h.jobs.Subscribe(jobID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "job not found")
		return
	}
	defer cancel()

	utils.SetupSSEHeaders(w)

	log.Printf("[jobs] opening event stream for job=%s", jobID)

	for _, event := range history {
		utils.SendSSEChunk(w, flusher, event)
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			log.Printf("[jobs] closing event stream for job=%s", jobID)
			return
		case event, open := <-events:
			if !open {
				return
			}
			utils.SendSSEChunk(w, flusher, event)
		}
	}
}
