package timeline

// Schema-level bounds for a single scene. The allocator works with its own
// tighter clamp and validates against a looser pair; the three ranges are
// intentionally distinct and each lives next to the code that applies it.
const (
	MinSceneSeconds = 0.5
	MaxSceneSeconds = 30.0
)

// SceneTiming is one time-bounded unit of a video timeline.
type SceneTiming struct {
	StartTime float64 `json:"startTime"` // seconds
	Duration  float64 `json:"duration"`  // seconds
	EndTime   float64 `json:"endTime"`   // always StartTime + Duration
	FadeIn    float64 `json:"fadeIn"`    // 0.0-2.0
	FadeOut   float64 `json:"fadeOut"`   // 0.0-2.0
}

// NewSceneTiming recomputes EndTime from the other two fields so stored
// values can never drift.
func NewSceneTiming(start, duration, fadeIn, fadeOut float64) SceneTiming {
	return SceneTiming{
		StartTime: start,
		Duration:  duration,
		EndTime:   start + duration,
		FadeIn:    fadeIn,
		FadeOut:   fadeOut,
	}
}

// SegmentRole classifies a narration segment's function inside the script.
type SegmentRole string

const (
	RoleHook       SegmentRole = "hook"
	RoleConflict   SegmentRole = "conflict"
	RoleBody       SegmentRole = "body"
	RoleConclusion SegmentRole = "conclusion"
)

// ScriptSegment is one ordered unit of narration feeding the scene allocator.
type ScriptSegment struct {
	Role SegmentRole `json:"role"`
	Text string      `json:"text"`
}
