package splitter

import (
	"strings"

	"github.com/erniesg/aidobe-sub002/internal/model/timeline"
)

// SplitByDuration walks transcript words in lockstep with their timings,
// accumulating words while the running segment stays within maxDuration
// seconds. A word with no corresponding timing entry is skipped.
func SplitByDuration(transcript string, timings []timeline.WordTiming, maxDuration float64) (*timeline.SplitResult, error) {
	if err := Validate(transcript, timings, maxDuration); err != nil {
		return nil, err
	}

	var (
		chunks       []timeline.TranscriptChunk
		currentWords []string
		chunkStart   int     // timing index of the first word in the segment
		segmentStart float64 // anchor time of the segment
	)

	words := strings.Fields(transcript)
	for i, word := range words {
		if i >= len(timings) {
			continue
		}
		t := timings[i]

		if len(currentWords) == 0 {
			chunkStart = i
			segmentStart = t.StartTime
		} else if t.EndTime-segmentStart > maxDuration {
			chunks = append(chunks, timeline.NewChunk(strings.Join(currentWords, " "), timings[chunkStart:i], len(chunks)))
			currentWords = nil
			chunkStart = i
			segmentStart = t.StartTime
		}
		currentWords = append(currentWords, word)
	}

	if len(currentWords) > 0 {
		end := chunkStart + len(currentWords)
		if end > len(timings) {
			end = len(timings)
		}
		chunks = append(chunks, timeline.NewChunk(strings.Join(currentWords, " "), timings[chunkStart:end], len(chunks)))
	}

	return buildResult(chunks, TimeSegmentStrategy{}.strategyName(), transcript), nil
}
