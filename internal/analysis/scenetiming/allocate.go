// Package scenetiming converts narration segments into a continuous scene
// timeline: proportional allocation against a target duration, rescaling,
// continuity validation and repair, and raw duration distribution.
package scenetiming

import (
	"errors"
	"fmt"
	"strings"

	"github.com/erniesg/aidobe-sub002/internal/model/timeline"
)

// Three distinct duration ranges apply at different stages. Allocation works
// with a conservative clamp; a finished plan is validated against looser
// bounds; the schema-level range lives with the SceneTiming type.
const (
	MinAllocatedSceneSeconds = 2.0
	MaxAllocatedSceneSeconds = 15.0

	MinValidSceneSeconds = 1.0
	MaxValidSceneSeconds = 30.0

	// EdgeFadeSeconds is applied to the first scene's fade-in and the last
	// scene's fade-out.
	EdgeFadeSeconds = 0.5

	// ContinuityTolerance absorbs float drift in timing comparisons.
	ContinuityTolerance = 0.001

	// MinTrimmedSceneSeconds is the floor left behind by an overlap trim.
	MinTrimmedSceneSeconds = 0.1
)

var (
	ErrNoSegments    = errors.New("no narration segments")
	ErrNoWords       = errors.New("narration segments contain no words")
	ErrInvalidTarget = errors.New("target duration must be positive")
	ErrZeroTimeline  = errors.New("timeline has no measurable duration")
	ErrNoScenes      = errors.New("no scenes to adjust")
	ErrInvalidCount  = errors.New("scene count must be positive")
	ErrBadWeights    = errors.New("scene weights must be positive")
)

// Allocate turns ordered narration segments into a chained scene timeline.
// Each segment's share of targetDuration follows its share of the narration,
// clamped to the allocation bounds; scenes start where the previous one
// ends. Full-track timings, when supplied, refine the shares via observed
// speaking rate; the proportional allocation against targetDuration remains
// the governing bound either way.
func Allocate(segments []timeline.ScriptSegment, targetDuration float64, timings []timeline.WordTiming) ([]timeline.SceneTiming, error) {
	if len(segments) == 0 {
		return nil, ErrNoSegments
	}
	if targetDuration <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidTarget, targetDuration)
	}

	weights := segmentWeights(segments, timings)
	if weights == nil {
		return nil, ErrNoWords
	}
	totalWeight := 0.0
	for _, w := range weights {
		totalWeight += w
	}

	scenes := make([]timeline.SceneTiming, len(segments))
	cursor := 0.0
	for i := range segments {
		duration := clampSeconds(weights[i]/totalWeight*targetDuration, MinAllocatedSceneSeconds, MaxAllocatedSceneSeconds)

		fadeIn, fadeOut := 0.0, 0.0
		if i == 0 {
			fadeIn = EdgeFadeSeconds
		}
		if i == len(segments)-1 {
			fadeOut = EdgeFadeSeconds
		}

		scenes[i] = timeline.NewSceneTiming(cursor, duration, fadeIn, fadeOut)
		cursor = scenes[i].EndTime
	}
	return scenes, nil
}

// segmentWeights derives one proportional weight per segment: the observed
// spoken duration of the segment's timing slice when the full-track timings
// line up with the narration, plain word counts otherwise. Returns nil when
// no segment carries any words.
func segmentWeights(segments []timeline.ScriptSegment, timings []timeline.WordTiming) []float64 {
	counts := make([]int, len(segments))
	totalWords := 0
	for i, seg := range segments {
		counts[i] = len(strings.Fields(seg.Text))
		totalWords += counts[i]
	}
	if totalWords == 0 {
		return nil
	}

	if len(timings) >= totalWords {
		weights := make([]float64, len(segments))
		idx := 0
		usable := true
		for i, count := range counts {
			span := timeline.SpanSeconds(timings[idx : idx+count])
			if span <= 0 {
				usable = false
				break
			}
			weights[i] = span
			idx += count
		}
		if usable {
			return weights
		}
	}

	weights := make([]float64, len(segments))
	for i, count := range counts {
		weights[i] = float64(count)
	}
	return weights
}

// SequenceReport flags timing invariant violations in a scene plan. An
// invalid plan is still a plan; callers decide whether to repair it.
type SequenceReport struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues,omitempty"`
}

// ValidateSequence checks adjacent non-overlap and the permissive duration
// bounds. Violations come back as an issue list, never an error.
func ValidateSequence(scenes []timeline.SceneTiming) SequenceReport {
	var issues []string
	for i, scene := range scenes {
		if scene.Duration < MinValidSceneSeconds || scene.Duration > MaxValidSceneSeconds {
			issues = append(issues, fmt.Sprintf("scene %d duration %.2fs outside [%.0f, %.0f]",
				i, scene.Duration, MinValidSceneSeconds, MaxValidSceneSeconds))
		}
		if i+1 < len(scenes) && scene.EndTime > scenes[i+1].StartTime+ContinuityTolerance {
			issues = append(issues, fmt.Sprintf("scene %d overlaps scene %d", i, i+1))
		}
	}
	return SequenceReport{Valid: len(issues) == 0, Issues: issues}
}

func clampSeconds(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
