package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	analysis "github.com/erniesg/aidobe-sub002/internal/analysis/narrative"
	"github.com/erniesg/aidobe-sub002/internal/analysis/splitter"
	"github.com/erniesg/aidobe-sub002/internal/model/timeline"
)

// Config controls the narrative segmentation service.
type Config struct {
	Enabled       bool
	SentenceLimit int
}

// Segmentation is a role-tagged reading of a narration script, with the
// source that produced it.
type Segmentation struct {
	Segments   []timeline.ScriptSegment
	Source     string
	Confidence float32
	Reason     string
}

// Service segments scripts with a chat model when one is configured and
// falls back to the keyword heuristic whenever the model is missing, fails,
// or answers with segments that do not cover the script.
type Service struct {
	enabled       bool
	classifier    compose.Runnable[map[string]any, *schema.Message]
	fallback      func(script string) []timeline.ScriptSegment
	sentenceLimit int
}

// NewService creates the segmentation service. chatModel may be shared with
// other LLM-backed services.
func NewService(ctx context.Context, chatModel model.ChatModel, cfg Config) (*Service, error) {
	sentenceLimit := cfg.SentenceLimit
	if sentenceLimit <= 0 {
		sentenceLimit = 40
	}

	svc := &Service{
		enabled:       cfg.Enabled && chatModel != nil,
		fallback:      analysis.Segment,
		sentenceLimit: sentenceLimit,
	}

	if !svc.enabled {
		return svc, nil
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(narrativeSystemPrompt),
		schema.UserMessage(narrativeUserPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile narrative classifier chain: %w", err)
	}

	svc.classifier = runnable
	return svc, nil
}

// Enabled reports whether the LLM path is available.
func (s *Service) Enabled() bool {
	return s != nil && s.enabled && s.classifier != nil
}

// Segment produces the role-tagged segments for a script. The result always
// covers the script in order; answers that drop or invent text are discarded
// in favor of the heuristic.
func (s *Service) Segment(ctx context.Context, script string) Segmentation {
	trimmed := strings.TrimSpace(script)
	if trimmed == "" {
		return Segmentation{Source: "heuristic", Confidence: 1, Reason: "empty script"}
	}

	if !s.Enabled() {
		return s.fallbackSegmentation(trimmed)
	}

	input := map[string]any{
		"script":    trimmed,
		"sentences": formatSentences(trimmed, s.sentenceLimit),
	}

	msg, err := s.classifier.Invoke(ctx, input)
	if err != nil {
		log.Printf("[narrative] classifier invoke failed, use fallback: %v", err)
		return s.fallbackSegmentation(trimmed)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return s.fallbackSegmentation(trimmed)
	}

	payload, err := parseClassifierOutput(msg.Content)
	if err != nil {
		log.Printf("[narrative] classifier output parse failed, use fallback: %v", err)
		return s.fallbackSegmentation(trimmed)
	}

	segments, ok := convertSegments(payload.Segments)
	if !ok || !coversScript(segments, trimmed) {
		log.Printf("[narrative] classifier answer does not cover the script, use fallback")
		return s.fallbackSegmentation(trimmed)
	}

	confidence := payload.Confidence
	if confidence <= 0 {
		confidence = 0.6
	}
	if confidence > 1 {
		confidence = 1
	}

	return Segmentation{
		Segments:   segments,
		Source:     "llm",
		Confidence: confidence,
		Reason:     strings.TrimSpace(payload.Reason),
	}
}

func (s *Service) fallbackSegmentation(script string) Segmentation {
	segments := s.fallback(script)

	// Confidence follows the structure found: a multi-role read scores
	// 0.55, a single-role lump 0.3.
	confidence := float32(0.3)
	if countRoles(segments) > 1 {
		confidence = 0.55
	}

	return Segmentation{
		Segments:   segments,
		Source:     "heuristic",
		Confidence: confidence,
		Reason:     "fallback",
	}
}

func countRoles(segments []timeline.ScriptSegment) int {
	roles := make(map[timeline.SegmentRole]struct{}, len(segments))
	for _, seg := range segments {
		roles[seg.Role] = struct{}{}
	}
	return len(roles)
}

// parseClassifierOutput pulls the JSON object out of the model's reply.
func parseClassifierOutput(content string) (*classifierPayload, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("missing json object")
	}

	payload := &classifierPayload{}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func convertSegments(raw []payloadSegment) ([]timeline.ScriptSegment, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	segments := make([]timeline.ScriptSegment, 0, len(raw))
	for _, item := range raw {
		role, ok := parseRole(item.Role)
		if !ok {
			return nil, false
		}
		text := strings.TrimSpace(item.Text)
		if text == "" {
			return nil, false
		}
		segments = append(segments, timeline.ScriptSegment{Role: role, Text: text})
	}
	return segments, true
}

// coversScript verifies the segments reproduce the script in order, allowing
// only whitespace differences.
func coversScript(segments []timeline.ScriptSegment, script string) bool {
	parts := make([]string, len(segments))
	for i, seg := range segments {
		parts[i] = seg.Text
	}
	return normalizeSpace(strings.Join(parts, " ")) == normalizeSpace(script)
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func formatSentences(script string, limit int) string {
	sentences := splitter.Sentences(script)
	if limit < 1 {
		limit = 1
	}
	if len(sentences) > limit {
		sentences = sentences[:limit]
	}

	var builder strings.Builder
	for i, sentence := range sentences {
		fmt.Fprintf(&builder, "%d. %s", i+1, sentence)
		if i < len(sentences)-1 {
			builder.WriteString("\n")
		}
	}
	return builder.String()
}

func parseRole(raw string) (timeline.SegmentRole, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "hook":
		return timeline.RoleHook, true
	case "conflict":
		return timeline.RoleConflict, true
	case "body":
		return timeline.RoleBody, true
	case "conclusion":
		return timeline.RoleConclusion, true
	default:
		return "", false
	}
}

type classifierPayload struct {
	Segments   []payloadSegment `json:"segments"`
	Confidence float32          `json:"confidence"`
	Reason     string           `json:"reason"`
}

type payloadSegment struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

const narrativeSystemPrompt = "You are a short-video script editor. Read the narration script and divide it into ordered story segments.\nOutput requirements: return exactly one JSON object with fields: segments (array of {role, text}, role one of hook/conflict/body/conclusion), confidence (number between 0 and 1), reason (one short sentence). The segment texts must reproduce the script in order, word for word, with nothing added and nothing dropped. No other text."

const narrativeUserPrompt = "Script:\n{script}\n\nSentences in order:\n{sentences}\n\nReturn the JSON object."
