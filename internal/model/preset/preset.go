package preset

// Preset bundles the tunable rendering constants one video style uses, so
// callers can name a style instead of repeating a dozen knobs per request.
type Preset struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Description       string  `json:"description,omitempty"`
	TargetDuration    float64 `json:"targetDuration"` // seconds
	AvatarCharLimit   int     `json:"avatarCharLimit"`
	MaxChunkChars     int     `json:"maxChunkChars"`
	MaxSegmentSeconds float64 `json:"maxSegmentSeconds"`
	MinSceneSeconds   float64 `json:"minSceneSeconds"`
	MaxSceneSeconds   float64 `json:"maxSceneSeconds"`
	EdgeFadeSeconds   float64 `json:"edgeFadeSeconds"`
	VoiceVolume       float64 `json:"voiceVolume"`
	MusicVolume       float64 `json:"musicVolume"`
	DuckingEnabled    bool    `json:"duckingEnabled"`
}

// Seed provides the default presets for the common short-video formats.
func Seed() []Preset {
	return []Preset{
		{
			ID:                "shorts-avatar",
			Name:              "Shorts with avatar",
			Description:       "Vertical short with a talking avatar over b-roll, tight pacing.",
			TargetDuration:    30,
			AvatarCharLimit:   250,
			MaxChunkChars:     120,
			MaxSegmentSeconds: 6,
			MinSceneSeconds:   1,
			MaxSceneSeconds:   8,
			EdgeFadeSeconds:   0.5,
			VoiceVolume:       1.0,
			MusicVolume:       0.08,
			DuckingEnabled:    true,
		},
		{
			ID:                "explainer",
			Name:              "Explainer",
			Description:       "Sixty second explainer with longer scenes and room to breathe.",
			TargetDuration:    60,
			AvatarCharLimit:   250,
			MaxChunkChars:     180,
			MaxSegmentSeconds: 10,
			MinSceneSeconds:   2,
			MaxSceneSeconds:   15,
			EdgeFadeSeconds:   0.5,
			VoiceVolume:       1.0,
			MusicVolume:       0.15,
			DuckingEnabled:    true,
		},
		{
			ID:                "narration-only",
			Name:              "Narration only",
			Description:       "Voice-over cut with no avatar and music left untouched.",
			TargetDuration:    45,
			AvatarCharLimit:   250,
			MaxChunkChars:     160,
			MaxSegmentSeconds: 8,
			MinSceneSeconds:   1.5,
			MaxSceneSeconds:   12,
			EdgeFadeSeconds:   0.5,
			VoiceVolume:       1.0,
			MusicVolume:       0.2,
			DuckingEnabled:    false,
		},
	}
}
