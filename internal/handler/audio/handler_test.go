package audio

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/erniesg/aidobe-sub002/internal/analysis/audiomix"
	"github.com/erniesg/aidobe-sub002/internal/config"
	"github.com/erniesg/aidobe-sub002/internal/model/timeline"
	"github.com/erniesg/aidobe-sub002/internal/service/media"
)

func testEngine() config.EngineConfig {
	return config.EngineConfig{
		AvatarCharLimit:       250,
		DefaultTargetDuration: 30,
		VoiceVolume:           1.0,
		MusicVolume:           0.08,
		DuckingEnabled:        true,
		DuckingReduction:      0.6,
		MusicFadeSeconds:      2.0,
		MinSceneSeconds:       1.0,
		MaxSceneSeconds:       30.0,
	}
}

func setupRouter(mediaClient *media.Client) *chi.Mux {
	r := chi.NewRouter()
	New(testEngine(), mediaClient).RegisterRoutes(r)
	return r
}

func postJSON(t *testing.T, r *chi.Mux, path string, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decodeInto(t *testing.T, resp *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(resp.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func halfSecondTimings(count int) []timeline.WordTiming {
	timings := make([]timeline.WordTiming, count)
	for i := range timings {
		timings[i] = timeline.WordTiming{
			Word:      "word",
			StartTime: float64(i) * 0.5,
			EndTime:   float64(i+1) * 0.5,
		}
	}
	return timings
}

func TestLevelsExplicitDucking(t *testing.T) {
	r := setupRouter(nil)

	resp := postJSON(t, r, "/audio/levels", map[string]any{
		"voiceVolume":    1.0,
		"musicVolume":    0.5,
		"duckingEnabled": true,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var result struct {
		VoiceLevel       float64 `json:"voiceLevel"`
		MusicLevel       float64 `json:"musicLevel"`
		MusicFadeSeconds float64 `json:"musicFadeSeconds"`
	}
	decodeInto(t, resp, &result)

	// Full voice ducks the music by the whole 0.6 reduction: 0.5 * 0.4.
	if !approx(result.VoiceLevel, 1.0) || !approx(result.MusicLevel, 0.2) {
		t.Fatalf("unexpected levels: voice %v, music %v", result.VoiceLevel, result.MusicLevel)
	}
	if !approx(result.MusicFadeSeconds, 2.0) {
		t.Fatalf("expected fade 2.0, got %v", result.MusicFadeSeconds)
	}
}

func TestLevelsEngineDefaults(t *testing.T) {
	r := setupRouter(nil)

	resp := postJSON(t, r, "/audio/levels", map[string]any{})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var result struct {
		VoiceLevel float64 `json:"voiceLevel"`
		MusicLevel float64 `json:"musicLevel"`
	}
	decodeInto(t, resp, &result)

	if !approx(result.VoiceLevel, 1.0) {
		t.Fatalf("expected default voice 1.0, got %v", result.VoiceLevel)
	}
	if !approx(result.MusicLevel, 0.032) {
		t.Fatalf("expected ducked default music 0.032, got %v", result.MusicLevel)
	}
}

func TestSegmentsBuildsBatch(t *testing.T) {
	r := setupRouter(nil)

	resp := postJSON(t, r, "/audio/segments", map[string]any{
		"wordTimings": halfSecondTimings(11),
		"ranges": []map[string]any{
			{"sceneId": "scene_1", "startTime": 0, "endTime": 2.5, "purpose": "avatar"},
			{"sceneId": "scene_2", "startTime": 2.5, "endTime": 5.5, "purpose": "avatar"},
			{"sceneId": "scene_3", "startTime": 6, "endTime": 6, "purpose": "regular"},
		},
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var result struct {
		Segments      []timeline.AudioSegment `json:"segments"`
		TotalDuration float64                 `json:"totalDuration"`
		Failures      []map[string]string     `json:"failures"`
	}
	decodeInto(t, resp, &result)

	if len(result.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(result.Segments))
	}
	if !approx(result.TotalDuration, 5.5) {
		t.Fatalf("expected total 5.5, got %v", result.TotalDuration)
	}
	if len(result.Failures) != 1 || result.Failures[0]["sceneId"] != "scene_3" {
		t.Fatalf("unexpected failures: %+v", result.Failures)
	}

	first := result.Segments[0]
	if !approx(first.Duration, 2.5) || len(first.WordTimings) != 5 {
		t.Fatalf("unexpected first segment: %+v", first)
	}
	// Word timings come back rebased to the segment's own clock.
	if !approx(first.WordTimings[0].StartTime, 0) {
		t.Fatalf("timings not rebased: %+v", first.WordTimings[0])
	}
}

func TestSegmentsRequireRanges(t *testing.T) {
	r := setupRouter(nil)

	resp := postJSON(t, r, "/audio/segments", map[string]any{})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestSyncValidatesClipDurations(t *testing.T) {
	r := setupRouter(nil)

	resp := postJSON(t, r, "/audio/sync", map[string]any{
		"actualDurations":   []float64{2.0, 3.1},
		"expectedDurations": []float64{2.0, 3.0},
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var result struct {
		Validation audiomix.SyncReport `json:"validation"`
	}
	decodeInto(t, resp, &result)

	if result.Validation.IsSynced {
		t.Fatal("expected mismatch report")
	}
	if len(result.Validation.Mismatches) != 1 || result.Validation.Mismatches[0].ClipIndex != 1 {
		t.Fatalf("unexpected mismatches: %+v", result.Validation.Mismatches)
	}
	if !approx(result.Validation.TotalDifference, 0.1) {
		t.Fatalf("expected total difference 0.1, got %v", result.Validation.TotalDifference)
	}
}

func TestSyncCountMismatch(t *testing.T) {
	r := setupRouter(nil)

	resp := postJSON(t, r, "/audio/sync", map[string]any{
		"actualDurations":   []float64{1},
		"expectedDurations": []float64{1, 2},
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestSyncRecommendsTrim(t *testing.T) {
	r := setupRouter(nil)

	resp := postJSON(t, r, "/audio/sync", map[string]any{
		"videoDuration": 35,
		"audioDuration": 30,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var result struct {
		Recommendation audiomix.SyncRecommendation `json:"recommendation"`
	}
	decodeInto(t, resp, &result)

	if result.Recommendation.Strategy != audiomix.SyncTrim {
		t.Fatalf("expected trim, got %s", result.Recommendation.Strategy)
	}
	if result.Recommendation.Confidence != audiomix.ConfidenceHigh {
		t.Fatalf("expected high confidence for a 5s gap, got %s", result.Recommendation.Confidence)
	}
}

func TestSyncMeasuresDurationThroughCollaborator(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/duration" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]float64{"duration": 30})
	}))
	defer server.Close()

	client := media.NewClient(media.Options{BaseURL: server.URL})
	r := setupRouter(client)

	resp := postJSON(t, r, "/audio/sync", map[string]any{
		"videoDuration": 65,
		"audioUrl":      "https://cdn.example.com/track.mp3",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var result struct {
		Recommendation audiomix.SyncRecommendation `json:"recommendation"`
	}
	decodeInto(t, resp, &result)

	// 65s of video over 30s of measured audio crosses the 2x ratio.
	if result.Recommendation.Strategy != audiomix.SyncSpeedAdjustment {
		t.Fatalf("expected speed_adjustment, got %s", result.Recommendation.Strategy)
	}
}

func TestSyncRequiresDurationWithoutCollaborator(t *testing.T) {
	r := setupRouter(nil)

	resp := postJSON(t, r, "/audio/sync", map[string]any{
		"videoDuration": 10,
		"audioUrl":      "https://cdn.example.com/track.mp3",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestSyncRejectsMissingAudio(t *testing.T) {
	r := setupRouter(nil)

	resp := postJSON(t, r, "/audio/sync", map[string]any{"videoDuration": 10})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
