package splitter

import (
	"strings"

	"github.com/erniesg/aidobe-sub002/internal/model/timeline"
)

// SplitByCharacterLimit packs sentences greedily so no chunk exceeds
// maxChars. A sentence that alone exceeds the limit degrades to greedy word
// packing; a single word over the limit degrades to fixed-size character
// slices. Timing alignment rides on a running index into the global timings
// array, so every chunk carries the slice it actually covers.
func SplitByCharacterLimit(transcript string, timings []timeline.WordTiming, maxChars int) (*timeline.SplitResult, error) {
	if err := Validate(transcript, timings, float64(maxChars)); err != nil {
		return nil, err
	}

	var (
		chunks     []timeline.TranscriptChunk
		current    string
		chunkStart int // timing index where the current chunk began
		idx        int // timing index of the next unconsumed word
	)

	flush := func() {
		if current == "" {
			return
		}
		chunks = append(chunks, timeline.NewChunk(current, timingWindow(timings, chunkStart, idx-chunkStart), len(chunks)))
		current = ""
	}

	accept := func(text string, tokenCount int) {
		if current == "" {
			chunkStart = idx
			current = text
		} else {
			current = current + " " + text
		}
		idx += tokenCount
	}

	for _, sentence := range splitSentences(transcript) {
		tokens := strings.Fields(sentence)

		if charLen(sentence) <= maxChars {
			if current != "" && charLen(current)+1+charLen(sentence) > maxChars {
				flush()
			}
			accept(sentence, len(tokens))
			continue
		}

		// The sentence alone exceeds the limit: pack its words greedily.
		// The word-pack remainder flushes before sentence packing resumes,
		// so a chunk never mixes a sentence fragment with the next whole
		// sentence.
		flush()
		for _, word := range tokens {
			if charLen(word) > maxChars {
				flush()
				wordTiming := timingWindow(timings, idx, 1)
				for _, piece := range sliceWord(word, maxChars) {
					chunks = append(chunks, timeline.NewChunk(piece, wordTiming, len(chunks)))
				}
				idx++
				continue
			}
			if current != "" && charLen(current)+1+charLen(word) > maxChars {
				flush()
			}
			accept(word, 1)
		}
		flush()
	}
	flush()

	return buildResult(chunks, CharacterLimitStrategy{}.strategyName(), transcript), nil
}

// sliceWord cuts a pathological over-limit word into maxChars-sized pieces.
func sliceWord(word string, maxChars int) []string {
	runes := []rune(word)
	pieces := make([]string, 0, (len(runes)+maxChars-1)/maxChars)
	for start := 0; start < len(runes); start += maxChars {
		end := start + maxChars
		if end > len(runes) {
			end = len(runes)
		}
		pieces = append(pieces, string(runes[start:end]))
	}
	return pieces
}
