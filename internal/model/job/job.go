package job

import (
	"time"

	"github.com/erniesg/aidobe-sub002/internal/analysis/scenetiming"
	"github.com/erniesg/aidobe-sub002/internal/model/timeline"
)

// Status tracks a job through its lifecycle.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Stage names the pipeline phase a progress event reports.
type Stage string

const (
	StageValidating Stage = "validating"
	StageSegmenting Stage = "segmenting"
	StageSplitting  Stage = "splitting"
	StageAllocating Stage = "allocating"
	StageExtracting Stage = "extracting"
	StageCompleted  Stage = "completed"
)

// Fraction maps a stage onto overall pipeline progress.
func (s Stage) Fraction() float64 {
	switch s {
	case StageValidating:
		return 0.1
	case StageSegmenting:
		return 0.25
	case StageSplitting:
		return 0.4
	case StageAllocating:
		return 0.6
	case StageExtracting:
		return 0.8
	case StageCompleted:
		return 1.0
	default:
		return 0
	}
}

// ProgressEvent is one update pushed to job subscribers.
type ProgressEvent struct {
	JobID     string    `json:"jobId"`
	Stage     Stage     `json:"stage"`
	Progress  float64   `json:"progress"` // 0.0-1.0
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Request is everything one pipeline run needs up front. Optional fields
// override the preset named by PresetID; nil means "use the preset value".
type Request struct {
	Transcript     string                 `json:"transcript"`
	WordTimings    []timeline.WordTiming  `json:"wordTimings"`
	TargetDuration float64                `json:"targetDuration,omitempty"` // seconds
	AudioURL       string                 `json:"audioUrl,omitempty"`
	PresetID       string                 `json:"presetId,omitempty"`
	VoiceVolume    *float64               `json:"voiceVolume,omitempty"`
	MusicVolume    *float64               `json:"musicVolume,omitempty"`
	DuckingEnabled *bool                  `json:"duckingEnabled,omitempty"`
}

// Result bundles every artifact of a completed run.
type Result struct {
	Segments           []timeline.ScriptSegment     `json:"segments"`
	Split              *timeline.SplitResult        `json:"split"`
	Scenes             []timeline.SceneTiming       `json:"scenes"`
	Continuity         scenetiming.ContinuityReport `json:"continuity"`
	AudioSegments      []timeline.AudioSegment      `json:"audioSegments"`
	TotalAudioDuration float64                      `json:"totalAudioDuration"`
	Levels             timeline.MixLevels           `json:"levels"`
}

// Job is one pipeline run and its observable state, event history included.
type Job struct {
	ID        string          `json:"id"`
	Status    Status          `json:"status"`
	Request   Request         `json:"request"`
	Result    *Result         `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	Events    []ProgressEvent `json:"events,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	StartedAt *time.Time      `json:"startedAt,omitempty"`
	EndedAt   *time.Time      `json:"endedAt,omitempty"`
}
