package audiomix

import (
	"errors"
	"fmt"
	"math"
)

// Audio is the master clock of an assembled video, so sync always means
// bringing the visuals to the audio's length, never the reverse.

// SyncStrategy names how a visual track should be brought to length.
type SyncStrategy string

const (
	SyncNoChange        SyncStrategy = "no_change"
	SyncSpeedAdjustment SyncStrategy = "speed_adjustment"
	SyncTrim            SyncStrategy = "trim"
	SyncExtend          SyncStrategy = "extend"
)

// SyncConfidence grades how clear-cut a recommendation is.
type SyncConfidence string

const (
	ConfidenceHigh   SyncConfidence = "high"
	ConfidenceMedium SyncConfidence = "medium"
)

const syncTolerance = 0.001

var (
	ErrInvalidDuration = errors.New("audio duration must be positive")
	ErrCountMismatch   = errors.New("clip count does not match segment count")
)

// SyncRecommendation advises one strategy for closing the gap between a
// video's current length and its audio.
type SyncRecommendation struct {
	Strategy      SyncStrategy   `json:"recommendedStrategy"`
	Reason        string         `json:"reason"`
	DurationRatio float64        `json:"durationRatio"`
	Difference    float64        `json:"differenceSeconds"`
	Confidence    SyncConfidence `json:"confidence"`
}

// RecommendSync picks a strategy from the duration gap: none when the
// durations already agree, a speed change when the video runs more than
// twice the audio, otherwise a trim or an extension. Gaps above one second
// make the recommendation high confidence.
func RecommendSync(videoDuration, audioDuration float64) (SyncRecommendation, error) {
	if audioDuration <= 0 {
		return SyncRecommendation{}, fmt.Errorf("%w: got %v", ErrInvalidDuration, audioDuration)
	}

	ratio := videoDuration / audioDuration
	difference := videoDuration - audioDuration
	rec := SyncRecommendation{DurationRatio: ratio, Difference: difference}

	switch {
	case math.Abs(difference) <= syncTolerance:
		rec.Strategy = SyncNoChange
		rec.Reason = "durations already match within tolerance"
	case ratio > 2.0:
		rec.Strategy = SyncSpeedAdjustment
		rec.Reason = "video runs far past the audio, speed adjustment recommended"
	case difference > 0:
		rec.Strategy = SyncTrim
		rec.Reason = "video longer than audio, trimming recommended"
	default:
		rec.Strategy = SyncExtend
		rec.Reason = "video shorter than audio, extension recommended"
	}

	rec.Confidence = ConfidenceMedium
	if math.Abs(difference) > 1.0 {
		rec.Confidence = ConfidenceHigh
	}
	return rec, nil
}

// DurationMismatch is one clip whose length strays from its audio segment.
type DurationMismatch struct {
	ClipIndex  int     `json:"clipIndex"`
	Actual     float64 `json:"actualDuration"`
	Expected   float64 `json:"expectedDuration"`
	Difference float64 `json:"difference"`
}

// SyncReport summarizes how a set of visual durations lines up against the
// audio segments they must match.
type SyncReport struct {
	IsSynced        bool               `json:"isSynced"`
	Mismatches      []DurationMismatch `json:"mismatches"`
	TotalActual     float64            `json:"totalActualDuration"`
	TotalExpected   float64            `json:"totalExpectedDuration"`
	TotalDifference float64            `json:"totalDifference"`
}

// ValidateSync compares per-clip durations against the expected audio
// durations, index by index.
func ValidateSync(actual, expected []float64) (SyncReport, error) {
	if len(actual) != len(expected) {
		return SyncReport{}, fmt.Errorf("%w: %d clips, %d segments", ErrCountMismatch, len(actual), len(expected))
	}

	report := SyncReport{Mismatches: []DurationMismatch{}}
	for i := range actual {
		report.TotalActual += actual[i]
		report.TotalExpected += expected[i]
		if math.Abs(actual[i]-expected[i]) > syncTolerance {
			report.Mismatches = append(report.Mismatches, DurationMismatch{
				ClipIndex:  i,
				Actual:     actual[i],
				Expected:   expected[i],
				Difference: actual[i] - expected[i],
			})
		}
	}
	report.IsSynced = len(report.Mismatches) == 0
	report.TotalDifference = report.TotalActual - report.TotalExpected
	return report, nil
}
