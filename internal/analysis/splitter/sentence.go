package splitter

import (
	"strings"
	"unicode"

	"github.com/erniesg/aidobe-sub002/internal/model/timeline"
)

// SplitBySentences emits one chunk per sentence regardless of length,
// consuming the parallel prefix of timings for each sentence by whitespace
// token count.
func SplitBySentences(transcript string, timings []timeline.WordTiming) (*timeline.SplitResult, error) {
	if err := ValidateTranscript(transcript, timings); err != nil {
		return nil, err
	}

	sentences := splitSentences(transcript)
	chunks := make([]timeline.TranscriptChunk, 0, len(sentences))
	idx := 0 // next unconsumed entry in the global timings array
	for _, sentence := range sentences {
		tokens := len(strings.Fields(sentence))
		chunks = append(chunks, timeline.NewChunk(sentence, timingWindow(timings, idx, tokens), len(chunks)))
		idx += tokens
	}

	return buildResult(chunks, SentenceStrategy{}.strategyName(), transcript), nil
}

// Sentences exposes the sentence boundaries the sentence strategy splits
// on, for callers that need the text alone without timing bookkeeping.
func Sentences(text string) []string {
	return splitSentences(text)
}

// splitSentences cuts at runs of sentence-terminal punctuation followed by
// whitespace. Trailing text without terminal punctuation is still one
// sentence, so any input yields at least one.
func splitSentences(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	var sentences []string
	var current strings.Builder
	runes := []rune(trimmed)
	for i := 0; i < len(runes); i++ {
		current.WriteRune(runes[i])
		if !isSentenceTerminal(runes[i]) {
			continue
		}
		for i+1 < len(runes) && isSentenceTerminal(runes[i+1]) {
			i++
			current.WriteRune(runes[i])
		}
		if i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
			for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				i++
			}
		}
	}
	if tail := strings.TrimSpace(current.String()); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

func isSentenceTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
