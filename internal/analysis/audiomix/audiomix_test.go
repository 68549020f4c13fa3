package audiomix

import (
	"errors"
	"math"
	"testing"

	"github.com/erniesg/aidobe-sub002/internal/model/timeline"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestBuildSegmentRebasesContainedWords(t *testing.T) {
	r := timeline.AudioExtractionRange{
		SceneID:   "scene-1",
		StartTime: 1.0,
		EndTime:   3.0,
		Purpose:   timeline.PurposeAvatar,
		Text:      "keeps only fully contained words",
	}
	timings := []timeline.WordTiming{
		{Word: "straddles", StartTime: 0.5, EndTime: 1.2},
		{Word: "inside", StartTime: 1.2, EndTime: 1.8},
		{Word: "too", StartTime: 1.9, EndTime: 2.4},
		{Word: "overflow", StartTime: 2.8, EndTime: 3.3},
	}

	segment, err := BuildSegment(r, timings)
	if err != nil {
		t.Fatalf("BuildSegment failed: %v", err)
	}
	if len(segment.WordTimings) != 2 {
		t.Fatalf("got %d words, want 2 (boundary words dropped)", len(segment.WordTimings))
	}
	first := segment.WordTimings[0]
	if first.Word != "inside" || !approx(first.StartTime, 0.2) || !approx(first.EndTime, 0.8) {
		t.Errorf("first word = %+v, want inside rebased to 0.2..0.8", first)
	}
	second := segment.WordTimings[1]
	if !approx(second.StartTime, 0.9) || !approx(second.EndTime, 1.4) {
		t.Errorf("second word = %+v, want rebased to 0.9..1.4", second)
	}
	if !approx(segment.Duration, 2.0) {
		t.Errorf("duration = %v, want 2.0", segment.Duration)
	}
	if segment.Purpose != timeline.PurposeAvatar || segment.SceneID != "scene-1" {
		t.Errorf("range identity lost: %+v", segment)
	}
}

func TestBuildSegmentRoundsToOneDecimal(t *testing.T) {
	r := timeline.AudioExtractionRange{SceneID: "s", StartTime: 1.0, EndTime: 2.26}
	segment, err := BuildSegment(r, nil)
	if err != nil {
		t.Fatalf("BuildSegment failed: %v", err)
	}
	if segment.Duration != 1.3 {
		t.Errorf("duration = %v, want 1.3", segment.Duration)
	}
}

func TestBuildSegmentRejectsInvalidWindow(t *testing.T) {
	for _, r := range []timeline.AudioExtractionRange{
		{SceneID: "empty", StartTime: 5, EndTime: 5},
		{SceneID: "inverted", StartTime: 6, EndTime: 2},
	} {
		if _, err := BuildSegment(r, nil); !errors.Is(err, ErrInvalidRange) {
			t.Errorf("%s window: got %v, want ErrInvalidRange", r.SceneID, err)
		}
	}
}

func TestValidateRangesFailsFast(t *testing.T) {
	ranges := []timeline.AudioExtractionRange{
		{SceneID: "ok", StartTime: 0, EndTime: 2},
		{SceneID: "bad", StartTime: 3, EndTime: 3},
	}
	if err := ValidateRanges(ranges); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("got %v, want ErrInvalidRange", err)
	}
	if err := ValidateRanges(ranges[:1]); err != nil {
		t.Fatalf("valid batch rejected: %v", err)
	}
}

func TestBuildBatchReportsPerRangeFailures(t *testing.T) {
	ranges := []timeline.AudioExtractionRange{
		{SceneID: "a", StartTime: 0, EndTime: 2, Purpose: timeline.PurposeRegular},
		{SceneID: "b", StartTime: 5, EndTime: 5, Purpose: timeline.PurposeRegular},
		{SceneID: "c", StartTime: 2, EndTime: 4, Purpose: timeline.PurposeAvatar},
	}

	result := BuildBatch(ranges, nil)
	if len(result.Outcomes) != 3 {
		t.Fatalf("got %d outcomes, want one per range", len(result.Outcomes))
	}
	if result.Outcomes[0].Err != nil || result.Outcomes[2].Err != nil {
		t.Errorf("valid ranges errored: %v, %v", result.Outcomes[0].Err, result.Outcomes[2].Err)
	}
	if !errors.Is(result.Outcomes[1].Err, ErrInvalidRange) {
		t.Errorf("outcome for b = %v, want ErrInvalidRange", result.Outcomes[1].Err)
	}
	if len(result.Segments) != 2 {
		t.Errorf("got %d segments, want 2 successful builds", len(result.Segments))
	}
	if !approx(result.TotalDuration, 4) {
		t.Errorf("total duration = %v, want 4", result.TotalDuration)
	}
}

func TestBuildBatchTotalIsMaxEndNotSum(t *testing.T) {
	// Avatar and regular ranges may cover the same window, so the batch
	// total is the furthest end time rather than a sum of lengths.
	ranges := []timeline.AudioExtractionRange{
		{SceneID: "full", StartTime: 0, EndTime: 10, Purpose: timeline.PurposeRegular},
		{SceneID: "avatar", StartTime: 2, EndTime: 6, Purpose: timeline.PurposeAvatar},
	}

	result := BuildBatch(ranges, nil)
	if !approx(result.TotalDuration, 10) {
		t.Fatalf("total duration = %v, want 10", result.TotalDuration)
	}
}

func TestComputeLevelsDucksAgainstFullVoice(t *testing.T) {
	levels := ComputeLevels(1.0, 0.5, true)
	if !approx(levels.VoiceLevel, 1.0) {
		t.Errorf("voice = %v, want 1.0", levels.VoiceLevel)
	}
	if !approx(levels.MusicLevel, 0.2) {
		t.Errorf("music = %v, want 0.2 (60%% duck at full voice)", levels.MusicLevel)
	}
}

func TestComputeLevelsClampsInputs(t *testing.T) {
	levels := ComputeLevels(1.5, -0.3, false)
	if levels.VoiceLevel != 1 || levels.MusicLevel != 0 {
		t.Errorf("levels = %+v, want clamped to 1 and 0", levels)
	}

	levels = ComputeLevels(2.0, 0.8, true)
	if !approx(levels.MusicLevel, 0.32) {
		t.Errorf("music = %v, want 0.32 (voice clamped before ducking)", levels.MusicLevel)
	}
}

func TestComputeLevelsSkipsDucking(t *testing.T) {
	if levels := ComputeLevels(0.9, 0.5, false); !approx(levels.MusicLevel, 0.5) {
		t.Errorf("ducking disabled but music = %v", levels.MusicLevel)
	}
	if levels := ComputeLevels(0, 0.5, true); !approx(levels.MusicLevel, 0.5) {
		t.Errorf("silent voice but music = %v", levels.MusicLevel)
	}
}

func TestRecommendSync(t *testing.T) {
	cases := []struct {
		name       string
		video      float64
		audio      float64
		strategy   SyncStrategy
		confidence SyncConfidence
	}{
		{"matching", 10, 10, SyncNoChange, ConfidenceMedium},
		{"far too long", 30, 10, SyncSpeedAdjustment, ConfidenceHigh},
		{"slightly long", 10.5, 10, SyncTrim, ConfidenceMedium},
		{"clearly long", 12, 10, SyncTrim, ConfidenceHigh},
		{"slightly short", 9.5, 10, SyncExtend, ConfidenceMedium},
		{"clearly short", 8, 10, SyncExtend, ConfidenceHigh},
	}
	for _, tc := range cases {
		rec, err := RecommendSync(tc.video, tc.audio)
		if err != nil {
			t.Fatalf("%s: RecommendSync failed: %v", tc.name, err)
		}
		if rec.Strategy != tc.strategy {
			t.Errorf("%s: strategy = %s, want %s", tc.name, rec.Strategy, tc.strategy)
		}
		if rec.Confidence != tc.confidence {
			t.Errorf("%s: confidence = %s, want %s", tc.name, rec.Confidence, tc.confidence)
		}
		if !approx(rec.Difference, tc.video-tc.audio) {
			t.Errorf("%s: difference = %v", tc.name, rec.Difference)
		}
	}
}

func TestRecommendSyncRejectsNonPositiveAudio(t *testing.T) {
	if _, err := RecommendSync(10, 0); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("got %v, want ErrInvalidDuration", err)
	}
}

func TestValidateSync(t *testing.T) {
	report, err := ValidateSync([]float64{2, 3, 5.5}, []float64{2, 3, 5})
	if err != nil {
		t.Fatalf("ValidateSync failed: %v", err)
	}
	if report.IsSynced {
		t.Fatal("expected a mismatch report")
	}
	if len(report.Mismatches) != 1 || report.Mismatches[0].ClipIndex != 2 {
		t.Fatalf("mismatches = %+v, want clip 2 only", report.Mismatches)
	}
	if !approx(report.Mismatches[0].Difference, 0.5) {
		t.Errorf("difference = %v, want 0.5", report.Mismatches[0].Difference)
	}
	if !approx(report.TotalActual, 10.5) || !approx(report.TotalExpected, 10) || !approx(report.TotalDifference, 0.5) {
		t.Errorf("totals = %v/%v/%v", report.TotalActual, report.TotalExpected, report.TotalDifference)
	}

	report, err = ValidateSync([]float64{2, 3}, []float64{2, 3})
	if err != nil || !report.IsSynced {
		t.Errorf("aligned clips reported unsynced: %+v, %v", report, err)
	}
}

func TestValidateSyncRejectsCountMismatch(t *testing.T) {
	if _, err := ValidateSync([]float64{1}, []float64{1, 2}); !errors.Is(err, ErrCountMismatch) {
		t.Fatalf("got %v, want ErrCountMismatch", err)
	}
}
