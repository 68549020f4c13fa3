package scenetiming

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/erniesg/aidobe-sub002/internal/model/timeline"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAllocateProportionalWordCounts(t *testing.T) {
	segments := []timeline.ScriptSegment{
		{Role: timeline.RoleHook, Text: "One tiny chip changed everything"},
		{Role: timeline.RoleBody, Text: "It packs a billion transistors into silicon beyond all rivals"},
		{Role: timeline.RoleConclusion, Text: "The future fits on fingertips"},
	}

	scenes, err := Allocate(segments, 20, nil)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if len(scenes) != 3 {
		t.Fatalf("expected 3 scenes, got %d", len(scenes))
	}

	wantDurations := []float64{5, 10, 5}
	cursor := 0.0
	for i, scene := range scenes {
		if !approx(scene.Duration, wantDurations[i]) {
			t.Errorf("scene %d duration = %v, want %v", i, scene.Duration, wantDurations[i])
		}
		if !approx(scene.StartTime, cursor) {
			t.Errorf("scene %d starts at %v, want %v", i, scene.StartTime, cursor)
		}
		if !approx(scene.EndTime, scene.StartTime+scene.Duration) {
			t.Errorf("scene %d end %v does not match start+duration", i, scene.EndTime)
		}
		cursor = scene.EndTime
	}
	if !approx(scenes[0].FadeIn, EdgeFadeSeconds) || !approx(scenes[2].FadeOut, EdgeFadeSeconds) {
		t.Errorf("edge fades missing: first fadeIn=%v last fadeOut=%v", scenes[0].FadeIn, scenes[2].FadeOut)
	}
	if scenes[1].FadeIn != 0 || scenes[1].FadeOut != 0 {
		t.Errorf("middle scene should not fade, got in=%v out=%v", scenes[1].FadeIn, scenes[1].FadeOut)
	}
}

func TestAllocateClampsExtremeShares(t *testing.T) {
	segments := []timeline.ScriptSegment{
		{Role: timeline.RoleHook, Text: "Go"},
		{Role: timeline.RoleBody, Text: strings.TrimSpace(strings.Repeat("again ", 39))},
	}

	scenes, err := Allocate(segments, 20, nil)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if !approx(scenes[0].Duration, MinAllocatedSceneSeconds) {
		t.Errorf("tiny segment duration = %v, want clamp floor %v", scenes[0].Duration, MinAllocatedSceneSeconds)
	}
	if !approx(scenes[1].Duration, MaxAllocatedSceneSeconds) {
		t.Errorf("huge segment duration = %v, want clamp ceiling %v", scenes[1].Duration, MaxAllocatedSceneSeconds)
	}
	if !approx(scenes[1].StartTime, scenes[0].EndTime) {
		t.Errorf("scenes not chained after clamping: %v vs %v", scenes[1].StartTime, scenes[0].EndTime)
	}
}

func TestAllocateUsesSpeakingRateWhenTimingsAlign(t *testing.T) {
	segments := []timeline.ScriptSegment{
		{Role: timeline.RoleHook, Text: "alpha beta"},
		{Role: timeline.RoleBody, Text: "gamma delta"},
	}
	timings := []timeline.WordTiming{
		{Word: "alpha", StartTime: 0, EndTime: 0.5},
		{Word: "beta", StartTime: 0.5, EndTime: 1.0},
		{Word: "gamma", StartTime: 1.0, EndTime: 2.5},
		{Word: "delta", StartTime: 2.5, EndTime: 4.0},
	}

	scenes, err := Allocate(segments, 10, timings)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	// Spoken spans are 1.0s and 1.5s, so the split is 4s and 6s.
	if !approx(scenes[0].Duration, 4) || !approx(scenes[1].Duration, 6) {
		t.Errorf("durations = %v, %v, want 4, 6", scenes[0].Duration, scenes[1].Duration)
	}
}

func TestAllocateFallsBackOnShortTimings(t *testing.T) {
	segments := []timeline.ScriptSegment{
		{Role: timeline.RoleHook, Text: "alpha beta"},
		{Role: timeline.RoleBody, Text: "gamma delta"},
	}
	timings := []timeline.WordTiming{
		{Word: "alpha", StartTime: 0, EndTime: 0.5},
		{Word: "beta", StartTime: 0.5, EndTime: 1.0},
	}

	scenes, err := Allocate(segments, 8, timings)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if !approx(scenes[0].Duration, 4) || !approx(scenes[1].Duration, 4) {
		t.Errorf("word-count fallback durations = %v, %v, want 4, 4", scenes[0].Duration, scenes[1].Duration)
	}
}

func TestAllocateRejectsBadInput(t *testing.T) {
	if _, err := Allocate(nil, 10, nil); !errors.Is(err, ErrNoSegments) {
		t.Errorf("nil segments: got %v, want ErrNoSegments", err)
	}
	segments := []timeline.ScriptSegment{{Role: timeline.RoleHook, Text: "hello there"}}
	if _, err := Allocate(segments, 0, nil); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("zero target: got %v, want ErrInvalidTarget", err)
	}
	blank := []timeline.ScriptSegment{{Role: timeline.RoleHook, Text: "   "}}
	if _, err := Allocate(blank, 10, nil); !errors.Is(err, ErrNoWords) {
		t.Errorf("blank segments: got %v, want ErrNoWords", err)
	}
}

func TestValidateSequence(t *testing.T) {
	clean := PlanFromDurations([]float64{3, 4, 3})
	if report := ValidateSequence(clean); !report.Valid {
		t.Fatalf("clean plan flagged: %v", report.Issues)
	}

	bad := []timeline.SceneTiming{
		timeline.NewSceneTiming(0, 0.5, 0, 0),
		timeline.NewSceneTiming(0.5, 5, 0, 0),
		timeline.NewSceneTiming(5.0, 3, 0, 0),
	}
	report := ValidateSequence(bad)
	if report.Valid {
		t.Fatal("expected violations")
	}
	if len(report.Issues) != 2 {
		t.Fatalf("expected 2 issues (short duration, overlap), got %d: %v", len(report.Issues), report.Issues)
	}
}

func TestRescaleScalesAndRechains(t *testing.T) {
	scenes := PlanFromDurations([]float64{4, 6})

	rescaled, err := Rescale(scenes, 5, 0)
	if err != nil {
		t.Fatalf("Rescale failed: %v", err)
	}
	if !approx(rescaled[0].Duration, 2) || !approx(rescaled[1].Duration, 3) {
		t.Errorf("durations = %v, %v, want 2, 3", rescaled[0].Duration, rescaled[1].Duration)
	}
	if !approx(rescaled[1].EndTime, 5) {
		t.Errorf("timeline ends at %v, want 5", rescaled[1].EndTime)
	}
	if !approx(rescaled[0].FadeIn, EdgeFadeSeconds) || !approx(rescaled[1].FadeOut, EdgeFadeSeconds) {
		t.Error("fades lost during rescale")
	}
}

func TestRescaleMinFloorCanOvershootTarget(t *testing.T) {
	scenes := PlanFromDurations([]float64{2, 8})

	rescaled, err := Rescale(scenes, 2.5, 1)
	if err != nil {
		t.Fatalf("Rescale failed: %v", err)
	}
	if !approx(rescaled[0].Duration, 1) {
		t.Errorf("floored duration = %v, want 1", rescaled[0].Duration)
	}
	if !approx(rescaled[1].EndTime, 3) {
		t.Errorf("timeline ends at %v, want 3 (floor overshoots 2.5)", rescaled[1].EndTime)
	}
}

func TestRescaleRejectsBadInput(t *testing.T) {
	if _, err := Rescale(nil, 10, 0); !errors.Is(err, ErrNoScenes) {
		t.Errorf("empty plan: got %v, want ErrNoScenes", err)
	}
	scenes := PlanFromDurations([]float64{5})
	if _, err := Rescale(scenes, 0, 0); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("zero target: got %v, want ErrInvalidTarget", err)
	}
	flat := []timeline.SceneTiming{{}}
	if _, err := Rescale(flat, 10, 0); !errors.Is(err, ErrZeroTimeline) {
		t.Errorf("zero-length timeline: got %v, want ErrZeroTimeline", err)
	}
}

func TestEnforceTotalDurationLandsExactly(t *testing.T) {
	scenes := PlanFromDurations([]float64{2, 3, 5})

	adjusted, err := EnforceTotalDuration(scenes, 7)
	if err != nil {
		t.Fatalf("EnforceTotalDuration failed: %v", err)
	}
	want := []float64{1.4, 2.1, 3.5}
	cursor := 0.0
	for i, scene := range adjusted {
		if !approx(scene.Duration, want[i]) {
			t.Errorf("scene %d duration = %v, want %v", i, scene.Duration, want[i])
		}
		if !approx(scene.StartTime, cursor) {
			t.Errorf("scene %d starts at %v, want %v", i, scene.StartTime, cursor)
		}
		cursor = scene.EndTime
	}
	if !approx(adjusted[2].EndTime, 7) {
		t.Errorf("timeline ends at %v, want exactly 7", adjusted[2].EndTime)
	}
}

func TestEnforceTotalDurationKeepsMatchingPlan(t *testing.T) {
	scenes := PlanFromDurations([]float64{2, 3})

	adjusted, err := EnforceTotalDuration(scenes, 5)
	if err != nil {
		t.Fatalf("EnforceTotalDuration failed: %v", err)
	}
	for i := range scenes {
		if adjusted[i] != scenes[i] {
			t.Errorf("scene %d changed: %+v vs %+v", i, adjusted[i], scenes[i])
		}
	}
}
