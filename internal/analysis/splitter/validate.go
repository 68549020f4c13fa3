package splitter

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/erniesg/aidobe-sub002/internal/model/timeline"
)

var (
	ErrEmptyTranscript   = errors.New("transcript is empty")
	ErrInvalidLimit      = errors.New("split limit must be positive")
	ErrWordCountMismatch = errors.New("transcript and word timings disagree")
	ErrUnknownStrategy   = errors.New("unknown split strategy")
)

// Validate gates every bounded splitting entry point: the transcript must be
// non-empty, the limit positive, and the transcript word count must agree
// with the timing count within tolerance.
func Validate(transcript string, timings []timeline.WordTiming, limit float64) error {
	if limit <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidLimit, limit)
	}
	return ValidateTranscript(transcript, timings)
}

// ValidateTranscript checks transcript shape against its timings. The word
// count tolerance max(2, floor(0.2*words)) absorbs minor transcription and
// formatting drift without masking genuinely mismatched inputs.
func ValidateTranscript(transcript string, timings []timeline.WordTiming) error {
	if strings.TrimSpace(transcript) == "" {
		return ErrEmptyTranscript
	}

	words := countWords(transcript)
	tolerance := wordCountTolerance(words)
	diff := words - len(timings)
	if diff < 0 {
		diff = -diff
	}
	if diff > tolerance {
		return fmt.Errorf("%w: %d transcript words vs %d timings (tolerance %d)",
			ErrWordCountMismatch, words, len(timings), tolerance)
	}
	return nil
}

func wordCountTolerance(words int) int {
	tolerance := int(math.Floor(0.2 * float64(words)))
	if tolerance < 2 {
		tolerance = 2
	}
	return tolerance
}

// countWords counts whitespace-delimited words after stripping punctuation.
func countWords(text string) int {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return -1
		}
		return r
	}, text)
	return len(strings.Fields(stripped))
}
