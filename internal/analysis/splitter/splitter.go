// Package splitter partitions a narration transcript and its word-level
// timing data into bounded chunks. The strategies are a closed set so that
// dispatch stays exhaustive at compile time instead of hanging off string
// keys.
package splitter

import (
	"fmt"
	"unicode/utf8"

	"github.com/erniesg/aidobe-sub002/internal/model/timeline"
)

// AvatarCharLimit is the hard per-segment character limit accepted by the
// avatar renderer.
const AvatarCharLimit = 250

// Strategy selects one splitting algorithm. The implementations below are
// the complete set.
type Strategy interface {
	strategyName() string
}

// SentenceStrategy cuts at sentence-terminal punctuation only.
type SentenceStrategy struct{}

// CharacterLimitStrategy packs sentences greedily under a hard character
// ceiling, degrading to word packing and finally character slicing.
type CharacterLimitStrategy struct {
	MaxChars int
}

// TimeSegmentStrategy bounds each chunk by wall-clock duration.
type TimeSegmentStrategy struct {
	MaxDuration float64 // seconds
}

// AvatarStrategy prefers sentence groupings but guarantees the avatar
// renderer's character limit. MaxChars of 0 means AvatarCharLimit.
type AvatarStrategy struct {
	MaxChars int
}

func (SentenceStrategy) strategyName() string       { return "sentence" }
func (CharacterLimitStrategy) strategyName() string { return "character_limit" }
func (TimeSegmentStrategy) strategyName() string    { return "time_segment" }
func (AvatarStrategy) strategyName() string         { return "avatar_composite" }

var (
	_ Strategy = SentenceStrategy{}
	_ Strategy = CharacterLimitStrategy{}
	_ Strategy = TimeSegmentStrategy{}
	_ Strategy = AvatarStrategy{}
)

// Split runs the selected strategy over the transcript and its timings.
func Split(transcript string, timings []timeline.WordTiming, strategy Strategy) (*timeline.SplitResult, error) {
	switch s := strategy.(type) {
	case SentenceStrategy:
		return SplitBySentences(transcript, timings)
	case CharacterLimitStrategy:
		return SplitByCharacterLimit(transcript, timings, s.MaxChars)
	case TimeSegmentStrategy:
		return SplitByDuration(transcript, timings, s.MaxDuration)
	case AvatarStrategy:
		return SplitForAvatar(transcript, timings, s.MaxChars)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownStrategy, strategy)
	}
}

// charLen counts characters, not bytes; the renderer limits are character
// limits.
func charLen(s string) int {
	return utf8.RuneCountInString(s)
}

func buildResult(chunks []timeline.TranscriptChunk, strategy, transcript string) *timeline.SplitResult {
	totalChars := 0
	for _, chunk := range chunks {
		totalChars += charLen(chunk.Text)
	}

	average := 0.0
	if len(chunks) > 0 {
		average = float64(totalChars) / float64(len(chunks))
	}

	return &timeline.SplitResult{
		Chunks:      chunks,
		TotalChunks: len(chunks),
		Metadata: timeline.SplitMetadata{
			SplitStrategy:    strategy,
			AverageChunkSize: average,
			TotalChunks:      len(chunks),
			OriginalLength:   charLen(transcript),
		},
	}
}

// timingWindow slices count entries starting at from, clamped to the array
// bounds so callers can walk token counts that drift past the alignment.
func timingWindow(timings []timeline.WordTiming, from, count int) []timeline.WordTiming {
	if from >= len(timings) || from < 0 {
		return nil
	}
	end := from + count
	if end > len(timings) {
		end = len(timings)
	}
	return timings[from:end]
}
