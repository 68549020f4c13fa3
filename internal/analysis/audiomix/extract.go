// Package audiomix covers the audio side of the timeline engine: extraction
// range bookkeeping, mix level computation, and sync strategy advice. The
// actual slicing and transcoding belongs to the media collaborator; this
// package only prepares and interprets the metadata around that call.
package audiomix

import (
	"errors"
	"fmt"
	"math"

	"github.com/erniesg/aidobe-sub002/internal/model/timeline"
)

var ErrInvalidRange = errors.New("invalid extraction range")

// ValidateRanges rejects a batch whose ranges include an empty or inverted
// window, before any collaborator work is issued. Callers that prefer
// per-range outcomes use BuildBatch instead.
func ValidateRanges(ranges []timeline.AudioExtractionRange) error {
	for i, r := range ranges {
		if r.StartTime >= r.EndTime {
			return fmt.Errorf("%w: range %d (%s) spans %v..%v", ErrInvalidRange, i, r.SceneID, r.StartTime, r.EndTime)
		}
	}
	return nil
}

// BuildSegment derives the timing metadata for one extraction range: the
// word timings strictly contained in the window, rebased so the segment's
// own timeline starts at zero, and the window length rounded to one decimal.
// Words that straddle a boundary are dropped, not truncated.
func BuildSegment(r timeline.AudioExtractionRange, timings []timeline.WordTiming) (timeline.AudioSegment, error) {
	if r.StartTime >= r.EndTime {
		return timeline.AudioSegment{}, fmt.Errorf("%w: %s spans %v..%v", ErrInvalidRange, r.SceneID, r.StartTime, r.EndTime)
	}

	contained := []timeline.WordTiming{}
	for _, t := range timings {
		if t.StartTime >= r.StartTime && t.EndTime <= r.EndTime {
			rebased := t
			rebased.StartTime -= r.StartTime
			rebased.EndTime -= r.StartTime
			contained = append(contained, rebased)
		}
	}

	return timeline.AudioSegment{
		SceneID:     r.SceneID,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		Duration:    RoundDuration(r.EndTime - r.StartTime),
		Purpose:     r.Purpose,
		Text:        r.Text,
		WordTimings: contained,
	}, nil
}

// RoundDuration applies the one-decimal precision used for segment durations.
func RoundDuration(seconds float64) float64 {
	return math.Round(seconds*10) / 10
}

// RangeOutcome pairs one requested range with the segment built for it, or
// with the error that kept it from being built.
type RangeOutcome struct {
	SceneID string
	Segment timeline.AudioSegment
	Err     error
}

// BatchResult is the outcome of deriving a whole batch of extraction ranges.
// Segments holds the successful builds in input order; Outcomes covers every
// requested range so one bad window never hides the rest of the batch.
// TotalDuration is the maximum end time across the successful ranges, not
// their sum, since ranges for different purposes may overlap.
type BatchResult struct {
	Outcomes      []RangeOutcome
	Segments      []timeline.AudioSegment
	TotalDuration float64
}

// BuildBatch derives segments for every range, collecting per-range errors
// instead of aborting the batch.
func BuildBatch(ranges []timeline.AudioExtractionRange, timings []timeline.WordTiming) BatchResult {
	result := BatchResult{
		Outcomes: make([]RangeOutcome, 0, len(ranges)),
		Segments: make([]timeline.AudioSegment, 0, len(ranges)),
	}
	for _, r := range ranges {
		segment, err := BuildSegment(r, timings)
		if err != nil {
			result.Outcomes = append(result.Outcomes, RangeOutcome{SceneID: r.SceneID, Err: err})
			continue
		}
		result.Outcomes = append(result.Outcomes, RangeOutcome{SceneID: r.SceneID, Segment: segment})
		result.Segments = append(result.Segments, segment)
		if r.EndTime > result.TotalDuration {
			result.TotalDuration = r.EndTime
		}
	}
	return result
}
