// Package narrative assigns story roles to the sentences of a narration
// script. The keyword heuristic here is the always-available baseline; the
// LLM-backed classifier in the service layer defers to it whenever the model
// is unavailable or answers badly.
package narrative

import (
	"strings"

	"github.com/erniesg/aidobe-sub002/internal/analysis/splitter"
	"github.com/erniesg/aidobe-sub002/internal/model/timeline"
)

// Decision carries one sentence's classification and the combined signal
// score behind it. A zero score means nothing fired and the sentence
// defaulted to body.
type Decision struct {
	Role  timeline.SegmentRole
	Score int
}

var keywordBuckets = map[timeline.SegmentRole][]string{
	timeline.RoleHook: {
		"what if", "imagine", "did you know", "here is why", "here's why", "the secret",
		"nobody tells you", "you won't believe", "stop scrolling", "this one trick",
		"the real reason", "everyone gets this wrong", "in just",
	},
	timeline.RoleConflict: {
		"but ", "however", "problem", "until", "the catch", "here's the thing",
		"turns out", "except", "unfortunately", "struggle", "goes wrong", "falls apart",
		"won't work", "the hard part",
	},
	timeline.RoleConclusion: {
		"so if", "that's why", "in the end", "bottom line", "remember", "the takeaway",
		"now you know", "follow for", "subscribe", "like and", "see you", "next time",
	},
}

const (
	keywordWeight   = 3
	positionBoost   = 2
	questionBoost   = 2
	hookWindowRatio = 0.34
)

// Segment splits a narration script into ordered role-tagged segments.
// Adjacent sentences sharing a role collapse into one segment, so the
// output covers the script in order without repeating roles back to back.
func Segment(script string) []timeline.ScriptSegment {
	sentences := splitter.Sentences(script)
	if len(sentences) == 0 {
		return nil
	}

	segments := []timeline.ScriptSegment{}
	for i, sentence := range sentences {
		decision := classifySentence(sentence, i, len(sentences))
		if n := len(segments); n > 0 && segments[n-1].Role == decision.Role {
			segments[n-1].Text += " " + sentence
			continue
		}
		segments = append(segments, timeline.ScriptSegment{Role: decision.Role, Text: sentence})
	}
	return segments
}

// Classify exposes the per-sentence decisions behind Segment, paired with
// the sentence list they apply to.
func Classify(script string) ([]string, []Decision) {
	sentences := splitter.Sentences(script)
	decisions := make([]Decision, len(sentences))
	for i, sentence := range sentences {
		decisions[i] = classifySentence(sentence, i, len(sentences))
	}
	return sentences, decisions
}

func classifySentence(sentence string, index, total int) Decision {
	normalized := strings.TrimSpace(strings.ToLower(sentence))
	if normalized == "" {
		return Decision{Role: timeline.RoleBody}
	}

	scores := make(map[timeline.SegmentRole]int)
	for role, keywords := range keywordBuckets {
		for _, word := range keywords {
			if strings.Contains(normalized, word) {
				scores[role] += keywordWeight
			}
		}
	}

	// Position is a weaker signal than wording but breaks most ties: early
	// questions read as hooks, openers lean hook, closers lean conclusion.
	if index == 0 {
		scores[timeline.RoleHook] += positionBoost
	}
	if index == total-1 && total > 1 {
		scores[timeline.RoleConclusion] += positionBoost
	}
	if strings.Contains(sentence, "?") && float64(index) < float64(total)*hookWindowRatio {
		scores[timeline.RoleHook] += questionBoost
	}

	best := timeline.RoleBody
	bestScore := 0
	for _, role := range []timeline.SegmentRole{
		timeline.RoleHook, timeline.RoleConflict, timeline.RoleConclusion,
	} {
		if scores[role] > bestScore {
			bestScore = scores[role]
			best = role
		}
	}

	if bestScore == 0 {
		return Decision{Role: timeline.RoleBody}
	}
	return Decision{Role: best, Score: bestScore}
}
