package narrative

import (
	"context"
	"strings"
	"testing"

	"github.com/erniesg/aidobe-sub002/internal/model/timeline"
)

const batteryScript = "What if your phone could last a week? Batteries improved slowly for years. So if you want longer life, dim the screen."

func newDisabledService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(context.Background(), nil, Config{Enabled: true})
	if err != nil {
		t.Fatalf("NewService err: %v", err)
	}
	return svc
}

func TestServiceDisabledWithoutModel(t *testing.T) {
	svc := newDisabledService(t)
	if svc.Enabled() {
		t.Fatal("service enabled without a chat model")
	}
}

func TestSegmentEmptyScript(t *testing.T) {
	svc := newDisabledService(t)

	result := svc.Segment(context.Background(), "   ")
	if result.Source != "heuristic" || result.Reason != "empty script" {
		t.Fatalf("unexpected segmentation: %+v", result)
	}
	if len(result.Segments) != 0 {
		t.Fatalf("expected no segments, got %+v", result.Segments)
	}
}

func TestSegmentFallsBackWithoutModel(t *testing.T) {
	svc := newDisabledService(t)

	result := svc.Segment(context.Background(), batteryScript)
	if result.Source != "heuristic" {
		t.Fatalf("expected heuristic source, got %q", result.Source)
	}
	if !coversScript(result.Segments, batteryScript) {
		t.Fatalf("segments do not cover the script: %+v", result.Segments)
	}
	// Hook, body and conclusion were all found, so the read is graded at
	// the higher fallback confidence.
	if result.Confidence != 0.55 {
		t.Fatalf("expected confidence 0.55, got %v", result.Confidence)
	}
}

func TestSegmentSingleRoleScoresLow(t *testing.T) {
	svc := newDisabledService(t)

	result := svc.Segment(context.Background(), "Grab attention fast.")
	if len(result.Segments) != 1 {
		t.Fatalf("expected one segment, got %+v", result.Segments)
	}
	if result.Confidence != 0.3 {
		t.Fatalf("expected confidence 0.3, got %v", result.Confidence)
	}
}

func TestParseClassifierOutputExtractsEmbeddedJSON(t *testing.T) {
	content := "```json\n{\"segments\":[{\"role\":\"hook\",\"text\":\"Hi there.\"}],\"confidence\":0.8,\"reason\":\"clear hook\"}\n```"

	payload, err := parseClassifierOutput(content)
	if err != nil {
		t.Fatalf("parseClassifierOutput err: %v", err)
	}
	if len(payload.Segments) != 1 || payload.Segments[0].Role != "hook" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.Confidence != 0.8 {
		t.Fatalf("expected confidence 0.8, got %v", payload.Confidence)
	}
}

func TestParseClassifierOutputRejectsProse(t *testing.T) {
	if _, err := parseClassifierOutput("the script opens with a question"); err == nil {
		t.Fatal("expected error for output without json")
	}
}

func TestConvertSegmentsRejectsBadInput(t *testing.T) {
	if _, ok := convertSegments([]payloadSegment{{Role: "punchline", Text: "Hi."}}); ok {
		t.Fatal("unknown role accepted")
	}
	if _, ok := convertSegments([]payloadSegment{{Role: "hook", Text: "  "}}); ok {
		t.Fatal("blank text accepted")
	}
	if _, ok := convertSegments(nil); ok {
		t.Fatal("empty answer accepted")
	}
}

func TestCoversScriptIgnoresSpacing(t *testing.T) {
	segments := []timeline.ScriptSegment{
		{Role: timeline.RoleHook, Text: "What if your phone could  last a week?"},
		{Role: timeline.RoleBody, Text: "Batteries improved slowly for years. So if you want longer life, dim the screen."},
	}
	if !coversScript(segments, batteryScript) {
		t.Fatal("whitespace differences rejected")
	}

	segments[1].Text = "Batteries improved slowly."
	if coversScript(segments, batteryScript) {
		t.Fatal("dropped words accepted")
	}
}

func TestFormatSentencesNumbersAndLimits(t *testing.T) {
	formatted := formatSentences(batteryScript, 2)
	lines := strings.Split(formatted, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), formatted)
	}
	if !strings.HasPrefix(lines[0], "1. What if") || !strings.HasPrefix(lines[1], "2. ") {
		t.Fatalf("unexpected numbering: %q", formatted)
	}
}

func TestParseRoleNormalizes(t *testing.T) {
	if role, ok := parseRole(" CONCLUSION "); !ok || role != timeline.RoleConclusion {
		t.Fatalf("parseRole = %v, %v", role, ok)
	}
	if _, ok := parseRole("punchline"); ok {
		t.Fatal("unknown role accepted")
	}
}
