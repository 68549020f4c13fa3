package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/erniesg/aidobe-sub002/internal/config"
	"github.com/erniesg/aidobe-sub002/internal/handler/audio"
	"github.com/erniesg/aidobe-sub002/internal/handler/jobs"
	"github.com/erniesg/aidobe-sub002/internal/handler/narrative"
	"github.com/erniesg/aidobe-sub002/internal/handler/preset"
	"github.com/erniesg/aidobe-sub002/internal/handler/split"
	"github.com/erniesg/aidobe-sub002/internal/handler/timeline"
	middlewarePkg "github.com/erniesg/aidobe-sub002/internal/middleware"
	presetModel "github.com/erniesg/aidobe-sub002/internal/model/preset"
	"github.com/erniesg/aidobe-sub002/internal/service/media"
	narrativeService "github.com/erniesg/aidobe-sub002/internal/service/narrative"
	"github.com/erniesg/aidobe-sub002/internal/service/pipeline"
	"github.com/erniesg/aidobe-sub002/pkg/utils"
)

// NewRouter wires HTTP routes to the engine services.
func NewRouter(cfg *config.Config, presets presetModel.Store, narrativeSvc *narrativeService.Service, pipelineSvc *pipeline.Service, mediaClient *media.Client) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	splitHandler := split.New(presets)
	timelineHandler := timeline.New()
	audioHandler := audio.New(cfg.Engine, mediaClient)
	narrativeHandler := narrative.New(narrativeSvc)
	jobsHandler := jobs.New(pipelineSvc)
	jobsSocketHandler := jobs.NewWebSocketHandler(pipelineSvc)
	presetHandler := preset.New(presets)

	r.Route("/api", func(api chi.Router) {
		splitHandler.RegisterRoutes(api)
		timelineHandler.RegisterRoutes(api)
		audioHandler.RegisterRoutes(api)
		narrativeHandler.RegisterRoutes(api)
		jobsHandler.RegisterRoutes(api)
		jobsSocketHandler.RegisterWebSocketRoutes(api)
		presetHandler.RegisterRoutes(api)
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "segmentation-engine",
		})
	})

	return r
}
