package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/joho/godotenv"

	"github.com/erniesg/aidobe-sub002/internal/config"
	"github.com/erniesg/aidobe-sub002/internal/handler"
	"github.com/erniesg/aidobe-sub002/internal/model/preset"
	"github.com/erniesg/aidobe-sub002/internal/service/media"
	narrativeservice "github.com/erniesg/aidobe-sub002/internal/service/narrative"
	"github.com/erniesg/aidobe-sub002/internal/service/pipeline"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	presetStore := preset.NewMemoryStore(preset.Seed())

	// Ark chat model for the LLM-backed narrative classifier
	var chatModel model.ChatModel
	if cfg.AI.Enabled() {
		chatModel, err = cfg.AI.NewChatModel(ctx)
		if err != nil {
			log.Printf("warning: failed to initialize Ark chat model: %v", err)
			log.Println("continuing with the heuristic narrative classifier only")
			chatModel = nil
		} else {
			log.Println("Ark chat model initialized successfully")
		}
	} else {
		log.Println("Ark credentials not configured, skipping chat model initialization")
	}

	narrativeCfg := narrativeservice.Config{
		Enabled:       cfg.AI.NarrativeLLMEnabled,
		SentenceLimit: cfg.AI.NarrativeSentenceLimit,
	}
	narrativeSvc, err := narrativeservice.NewService(ctx, chatModel, narrativeCfg)
	if err != nil {
		log.Printf("warning: failed to initialize narrative classifier: %v", err)
		narrativeSvc, _ = narrativeservice.NewService(ctx, nil, narrativeCfg)
	}
	switch {
	case narrativeSvc.Enabled():
		log.Println("Narrative classifier service enabled")
	case narrativeCfg.Enabled:
		log.Println("Narrative classifier requested but chat model unavailable, falling back to heuristics")
	default:
		log.Println("Narrative classifier disabled by configuration")
	}

	// Media collaborator client for actual audio slicing
	var mediaClient *media.Client
	if cfg.Media.Enabled() {
		mediaClient = media.NewClient(media.Options{
			BaseURL:    cfg.Media.BaseURL,
			APIKey:     cfg.Media.APIKey,
			Timeout:    time.Duration(cfg.Media.TimeoutSeconds) * time.Second,
			MaxRetries: cfg.Media.MaxRetries,
			Backoff:    time.Duration(cfg.Media.BackoffSeconds * float64(time.Second)),
		})
		log.Println("Media collaborator client initialized successfully")
	} else {
		log.Println("Media collaborator not configured, audio segments stay metadata-only")
	}

	pipelineSvc := pipeline.NewService(cfg.Engine, presetStore, narrativeSvc, mediaClient)

	router := handler.NewRouter(cfg, presetStore, narrativeSvc, pipelineSvc, mediaClient)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("segmentation engine listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
