package timeline

// ExtractionPurpose tags what a sub-range of the master track is for.
type ExtractionPurpose string

const (
	PurposeAvatar  ExtractionPurpose = "avatar"
	PurposeRegular ExtractionPurpose = "regular"
)

// AudioExtractionRange names one target sub-window of the full audio track.
type AudioExtractionRange struct {
	SceneID   string            `json:"sceneId"`
	StartTime float64           `json:"startTime"` // seconds, in the master track
	EndTime   float64           `json:"endTime"`   // seconds, in the master track
	Purpose   ExtractionPurpose `json:"purpose"`
	Text      string            `json:"text,omitempty"`
}

// AudioSegment is the derived descriptor for one extracted range. Its word
// timings are rebased so the segment's own timeline starts at zero; Duration
// is rounded to one decimal place.
type AudioSegment struct {
	SceneID     string            `json:"sceneId"`
	StartTime   float64           `json:"startTime"` // seconds, in the master track
	EndTime     float64           `json:"endTime"`   // seconds, in the master track
	Duration    float64           `json:"duration"`  // seconds, one decimal
	Purpose     ExtractionPurpose `json:"purpose"`
	Text        string            `json:"text,omitempty"`
	AudioURL    string            `json:"audioUrl,omitempty"`
	WordTimings []WordTiming      `json:"wordTimings"`
}

// MixLevels carries the final per-layer playback levels for one mix decision.
type MixLevels struct {
	VoiceLevel float64 `json:"voiceLevel"` // 0.0-1.0
	MusicLevel float64 `json:"musicLevel"` // 0.0-1.0
}
