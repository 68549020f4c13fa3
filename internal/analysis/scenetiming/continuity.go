package scenetiming

import (
	"errors"
	"fmt"

	"github.com/erniesg/aidobe-sub002/internal/model/timeline"
)

// ErrMalformedScene reports scene data that is internally inconsistent, as
// opposed to scenes that merely fail to line up with their neighbors.
var ErrMalformedScene = errors.New("malformed scene")

// Gap is dead air between two adjacent scenes.
type Gap struct {
	AfterScene int     `json:"afterScene"`
	GapStart   float64 `json:"gapStart"`
	GapEnd     float64 `json:"gapEnd"`
	Duration   float64 `json:"gapDuration"`
}

// Overlap is a stretch of timeline claimed by two adjacent scenes at once.
type Overlap struct {
	FirstScene   int     `json:"firstScene"`
	SecondScene  int     `json:"secondScene"`
	OverlapStart float64 `json:"overlapStart"`
	OverlapEnd   float64 `json:"overlapEnd"`
	Duration     float64 `json:"overlapDuration"`
}

// ContinuityReport is the outcome of a continuity check over a scene plan.
type ContinuityReport struct {
	IsValid       bool      `json:"isValid"`
	Gaps          []Gap     `json:"gaps"`
	Overlaps      []Overlap `json:"overlaps"`
	TotalDuration float64   `json:"totalDuration"`
	Message       string    `json:"message"`
}

// ValidateContinuity checks that adjacent scenes meet within
// ContinuityTolerance and reports every gap and overlap found. Scenes that
// are internally inconsistent (end before start, duration not matching the
// boundaries, negative start) are an error rather than a report entry.
func ValidateContinuity(scenes []timeline.SceneTiming) (ContinuityReport, error) {
	if err := checkSceneData(scenes); err != nil {
		return ContinuityReport{}, err
	}

	switch len(scenes) {
	case 0:
		return ContinuityReport{IsValid: true, Gaps: []Gap{}, Overlaps: []Overlap{}, Message: "No scenes to validate"}, nil
	case 1:
		return ContinuityReport{
			IsValid:       true,
			Gaps:          []Gap{},
			Overlaps:      []Overlap{},
			TotalDuration: scenes[0].Duration,
			Message:       "Single scene has no continuity issues",
		}, nil
	}

	gaps, overlaps := detectIssues(scenes)
	report := ContinuityReport{
		IsValid:       len(gaps) == 0 && len(overlaps) == 0,
		Gaps:          gaps,
		Overlaps:      overlaps,
		TotalDuration: scenes[len(scenes)-1].EndTime - scenes[0].StartTime,
	}
	if report.IsValid {
		report.Message = "Valid continuity"
	} else {
		report.Message = fmt.Sprintf("%d gaps, %d overlaps detected", len(gaps), len(overlaps))
	}
	return report, nil
}

func detectIssues(scenes []timeline.SceneTiming) ([]Gap, []Overlap) {
	gaps := []Gap{}
	overlaps := []Overlap{}
	for i := 0; i < len(scenes)-1; i++ {
		current, next := scenes[i], scenes[i+1]
		diff := next.StartTime - current.EndTime
		switch {
		case diff > ContinuityTolerance:
			gaps = append(gaps, Gap{
				AfterScene: i,
				GapStart:   current.EndTime,
				GapEnd:     next.StartTime,
				Duration:   diff,
			})
		case diff < -ContinuityTolerance:
			overlaps = append(overlaps, Overlap{
				FirstScene:   i,
				SecondScene:  i + 1,
				OverlapStart: next.StartTime,
				OverlapEnd:   current.EndTime,
				Duration:     -diff,
			})
		}
	}
	return gaps, overlaps
}

// FixGapsExtendPrevious closes each gap by stretching the scene before it
// forward to the next scene's start. When minSceneDuration is positive, a
// gap-filling scene that still falls short of it is extended to the minimum
// and every later scene is shifted to make room.
func FixGapsExtendPrevious(scenes []timeline.SceneTiming, minSceneDuration float64) []timeline.SceneTiming {
	if len(scenes) == 0 {
		return scenes
	}
	fixed := cloneScenes(scenes)
	for i := 0; i < len(fixed)-1; i++ {
		gap := fixed[i+1].StartTime - fixed[i].EndTime
		if gap <= ContinuityTolerance {
			continue
		}
		fixed[i].EndTime = fixed[i+1].StartTime
		fixed[i].Duration = fixed[i].EndTime - fixed[i].StartTime

		if minSceneDuration > 0 && fixed[i].Duration < minSceneDuration {
			needed := minSceneDuration - fixed[i].Duration
			fixed[i].EndTime += needed
			fixed[i].Duration = minSceneDuration
			for j := i + 1; j < len(fixed); j++ {
				fixed[j].StartTime += needed
				fixed[j].EndTime += needed
			}
		}
	}
	return fixed
}

// FixGapsShiftFollowing closes each gap by pulling the later scene back so it
// starts where the previous one ends. Durations are preserved; the sequential
// walk lets one shift cascade through the rest of the plan.
func FixGapsShiftFollowing(scenes []timeline.SceneTiming) []timeline.SceneTiming {
	if len(scenes) == 0 {
		return scenes
	}
	fixed := cloneScenes(scenes)
	for i := 1; i < len(fixed); i++ {
		gap := fixed[i].StartTime - fixed[i-1].EndTime
		if gap <= ContinuityTolerance {
			continue
		}
		fixed[i].StartTime -= gap
		fixed[i].EndTime -= gap
	}
	return fixed
}

// FixOverlapsTrimPrevious resolves each overlap by cutting the earlier scene
// at the later scene's start. A trimmed scene keeps at least
// MinTrimmedSceneSeconds, which can leave a sliver of overlap behind when
// two scenes are nested that deeply.
func FixOverlapsTrimPrevious(scenes []timeline.SceneTiming) []timeline.SceneTiming {
	if len(scenes) == 0 {
		return scenes
	}
	fixed := cloneScenes(scenes)
	for i := 0; i < len(fixed)-1; i++ {
		if fixed[i].EndTime <= fixed[i+1].StartTime {
			continue
		}
		fixed[i].EndTime = fixed[i+1].StartTime
		fixed[i].Duration = fixed[i].EndTime - fixed[i].StartTime
		if fixed[i].Duration <= 0 {
			fixed[i].Duration = MinTrimmedSceneSeconds
			fixed[i].EndTime = fixed[i].StartTime + fixed[i].Duration
		}
	}
	return fixed
}

// FixAll repairs a plan in one pass: trim overlaps, then extend scenes over
// the remaining gaps. If that combination still leaves issues it falls back
// to shifting scenes over the gaps of the original plan and trimming again.
func FixAll(scenes []timeline.SceneTiming, minSceneDuration float64) ([]timeline.SceneTiming, error) {
	if len(scenes) == 0 {
		return scenes, nil
	}
	if err := checkSceneData(scenes); err != nil {
		return nil, err
	}

	fixed := FixGapsExtendPrevious(FixOverlapsTrimPrevious(scenes), minSceneDuration)
	gaps, overlaps := detectIssues(fixed)
	if len(gaps) > 0 || len(overlaps) > 0 {
		fixed = FixOverlapsTrimPrevious(FixGapsShiftFollowing(scenes))
	}
	return fixed, nil
}

func checkSceneData(scenes []timeline.SceneTiming) error {
	for i, scene := range scenes {
		if scene.EndTime <= scene.StartTime {
			return fmt.Errorf("%w: scene %d ends at %v, before its start %v", ErrMalformedScene, i, scene.EndTime, scene.StartTime)
		}
		if diff := scene.EndTime - scene.StartTime - scene.Duration; diff > ContinuityTolerance || diff < -ContinuityTolerance {
			return fmt.Errorf("%w: scene %d duration %v does not match boundaries %v", ErrMalformedScene, i, scene.Duration, scene.EndTime-scene.StartTime)
		}
		if scene.StartTime < 0 || scene.Duration <= 0 {
			return fmt.Errorf("%w: scene %d has negative start or non-positive duration", ErrMalformedScene, i)
		}
	}
	return nil
}

func cloneScenes(scenes []timeline.SceneTiming) []timeline.SceneTiming {
	return append([]timeline.SceneTiming(nil), scenes...)
}
