package scenetiming

import (
	"fmt"
	"math"

	"github.com/erniesg/aidobe-sub002/internal/model/timeline"
)

// Rescale stretches or compresses a scene plan to hit targetDuration. Every
// duration is multiplied by target/current and floored at minDuration, then
// the chain is rebuilt from zero so scenes stay contiguous. When the floor
// kicks in the result can exceed the target; use EnforceTotalDuration when
// the total must land exactly.
func Rescale(scenes []timeline.SceneTiming, targetDuration, minDuration float64) ([]timeline.SceneTiming, error) {
	if len(scenes) == 0 {
		return nil, ErrNoScenes
	}
	if targetDuration <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidTarget, targetDuration)
	}
	currentTotal := scenes[len(scenes)-1].EndTime
	if currentTotal <= 0 {
		return nil, fmt.Errorf("%w: end of last scene is %v", ErrZeroTimeline, currentTotal)
	}
	if minDuration <= 0 {
		minDuration = MinValidSceneSeconds
	}

	scale := targetDuration / currentTotal
	rescaled := make([]timeline.SceneTiming, len(scenes))
	cursor := 0.0
	for i, scene := range scenes {
		duration := scene.Duration * scale
		if duration < minDuration {
			duration = minDuration
		}
		rescaled[i] = timeline.NewSceneTiming(cursor, duration, scene.FadeIn, scene.FadeOut)
		cursor = rescaled[i].EndTime
	}
	return rescaled, nil
}

// EnforceTotalDuration scales a plan so its summed durations equal
// targetDuration exactly, absorbing the residual float error into the last
// scene. Unlike Rescale it applies no per-scene floor.
func EnforceTotalDuration(scenes []timeline.SceneTiming, targetDuration float64) ([]timeline.SceneTiming, error) {
	if len(scenes) == 0 {
		return nil, ErrNoScenes
	}
	if targetDuration <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidTarget, targetDuration)
	}
	currentTotal := 0.0
	for _, scene := range scenes {
		currentTotal += scene.Duration
	}
	if currentTotal <= 0 {
		return nil, fmt.Errorf("%w: summed durations are %v", ErrZeroTimeline, currentTotal)
	}

	adjusted := make([]timeline.SceneTiming, len(scenes))
	if math.Abs(currentTotal-targetDuration) < ContinuityTolerance {
		copy(adjusted, scenes)
		return adjusted, nil
	}

	factor := targetDuration / currentTotal
	cursor := 0.0
	for i, scene := range scenes {
		adjusted[i] = timeline.NewSceneTiming(cursor, scene.Duration*factor, scene.FadeIn, scene.FadeOut)
		cursor = adjusted[i].EndTime
	}
	if math.Abs(cursor-targetDuration) > ContinuityTolerance {
		last := &adjusted[len(adjusted)-1]
		last.Duration += targetDuration - cursor
		last.EndTime = last.StartTime + last.Duration
	}
	return adjusted, nil
}
