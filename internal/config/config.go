package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"

	"github.com/erniesg/aidobe-sub002/internal/analysis/audiomix"
	"github.com/erniesg/aidobe-sub002/internal/analysis/scenetiming"
	"github.com/erniesg/aidobe-sub002/internal/analysis/splitter"
)

// Config aggregates every configurable surface of the service.
type Config struct {
	Server ServerConfig
	AI     AIConfig
	Media  MediaConfig
	Engine EngineConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	media, err := loadMediaConfig()
	if err != nil {
		return nil, err
	}

	engine, err := loadEngineConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Media: media, Engine: engine}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" as-is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the chat model used for narrative classification.
type AIConfig struct {
	APIKey                 string
	AccessKey              string
	SecretKey              string
	Model                  string
	BaseURL                string
	Region                 string
	Temperature            *float64
	TopP                   *float64
	MaxTokens              *int
	NarrativeLLMEnabled    bool
	NarrativeSentenceLimit int
}

// Enabled reports whether the required model credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds a model instance from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials missing: provide ARK_API_KEY + ARK_MODEL, or the AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	narrativeEnabled, err := parseBoolEnv("AI_NARRATIVE_LLM_ENABLED", false)
	if err != nil {
		return AIConfig{}, err
	}

	sentenceLimit := 40
	if limitOverride, err := parseOptionalIntEnv("AI_NARRATIVE_SENTENCE_LIMIT"); err != nil {
		return AIConfig{}, err
	} else if limitOverride != nil {
		if *limitOverride < 1 {
			sentenceLimit = 1
		} else {
			sentenceLimit = *limitOverride
		}
	}

	return AIConfig{
		APIKey:                 strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:              strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:              strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:                  strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:                getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:                 getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature:            temperature,
		TopP:                   topP,
		MaxTokens:              maxTokens,
		NarrativeLLMEnabled:    narrativeEnabled,
		NarrativeSentenceLimit: sentenceLimit,
	}, nil
}

// MediaConfig describes the external media-processing collaborator that
// performs the actual audio slicing.
type MediaConfig struct {
	BaseURL        string
	APIKey         string
	TimeoutSeconds int
	MaxRetries     int
	BackoffSeconds float64
}

// Enabled reports whether a collaborator endpoint is configured.
func (c MediaConfig) Enabled() bool {
	return c.BaseURL != ""
}

func loadMediaConfig() (MediaConfig, error) {
	timeout, err := parseOptionalIntEnv("MEDIA_TIMEOUT")
	if err != nil {
		return MediaConfig{}, err
	}
	timeoutSeconds := 30
	if timeout != nil {
		timeoutSeconds = *timeout
	}

	retries, err := parseOptionalIntEnv("MEDIA_MAX_RETRIES")
	if err != nil {
		return MediaConfig{}, err
	}
	maxRetries := 2
	if retries != nil {
		maxRetries = *retries
	}

	backoff, err := parseOptionalFloatEnv("MEDIA_RETRY_BACKOFF")
	if err != nil {
		return MediaConfig{}, err
	}
	backoffSeconds := 0.5
	if backoff != nil {
		backoffSeconds = *backoff
	}

	return MediaConfig{
		BaseURL:        strings.TrimSpace(os.Getenv("MEDIA_BASE_URL")),
		APIKey:         strings.TrimSpace(os.Getenv("MEDIA_API_KEY")),
		TimeoutSeconds: timeoutSeconds,
		MaxRetries:     maxRetries,
		BackoffSeconds: backoffSeconds,
	}, nil
}

// EngineConfig carries the request defaults of the timeline engine. Every
// field can be overridden per request or per preset; these are the values
// used when neither names one.
type EngineConfig struct {
	AvatarCharLimit       int
	DefaultTargetDuration float64
	VoiceVolume           float64
	MusicVolume           float64
	DuckingEnabled        bool
	DuckingReduction      float64
	MusicFadeSeconds      float64
	MinSceneSeconds       float64
	MaxSceneSeconds       float64
}

func loadEngineConfig() (EngineConfig, error) {
	ducking, err := parseBoolEnv("ENGINE_DUCKING", true)
	if err != nil {
		return EngineConfig{}, err
	}

	avatarLimit := splitter.AvatarCharLimit
	if limit, err := parseOptionalIntEnv("ENGINE_AVATAR_CHAR_LIMIT"); err != nil {
		return EngineConfig{}, err
	} else if limit != nil {
		if *limit < 1 {
			return EngineConfig{}, fmt.Errorf("ENGINE_AVATAR_CHAR_LIMIT must be positive, got %d", *limit)
		}
		avatarLimit = *limit
	}

	target, err := floatEnvDefault("ENGINE_TARGET_DURATION", 30)
	if err != nil {
		return EngineConfig{}, err
	}
	voice, err := floatEnvDefault("ENGINE_VOICE_VOLUME", 1.0)
	if err != nil {
		return EngineConfig{}, err
	}
	music, err := floatEnvDefault("ENGINE_MUSIC_VOLUME", 0.08)
	if err != nil {
		return EngineConfig{}, err
	}
	reduction, err := floatEnvDefault("ENGINE_DUCKING_REDUCTION", audiomix.DuckingReduction)
	if err != nil {
		return EngineConfig{}, err
	}
	musicFade, err := floatEnvDefault("ENGINE_MUSIC_FADE_SECONDS", 2.0)
	if err != nil {
		return EngineConfig{}, err
	}
	minScene, err := floatEnvDefault("ENGINE_MIN_SCENE_SECONDS", scenetiming.MinValidSceneSeconds)
	if err != nil {
		return EngineConfig{}, err
	}
	maxScene, err := floatEnvDefault("ENGINE_MAX_SCENE_SECONDS", scenetiming.MaxValidSceneSeconds)
	if err != nil {
		return EngineConfig{}, err
	}

	return EngineConfig{
		AvatarCharLimit:       avatarLimit,
		DefaultTargetDuration: target,
		VoiceVolume:           voice,
		MusicVolume:           music,
		DuckingEnabled:        ducking,
		DuckingReduction:      reduction,
		MusicFadeSeconds:      musicFade,
		MinSceneSeconds:       minScene,
		MaxSceneSeconds:       maxScene,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func floatEnvDefault(key string, defaultValue float64) (float64, error) {
	val, err := parseOptionalFloatEnv(key)
	if err != nil {
		return 0, err
	}
	if val == nil {
		return defaultValue, nil
	}
	return *val, nil
}
