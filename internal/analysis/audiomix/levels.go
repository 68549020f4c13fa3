package audiomix

import "github.com/erniesg/aidobe-sub002/internal/model/timeline"

// DuckingReduction is the maximum share of the music level surrendered to
// the voice layer, reached when the voice plays at full volume.
const DuckingReduction = 0.6

// ComputeLevels resolves playback levels for the voice and music layers of
// one mix decision. Both inputs are clamped to [0, 1]. With ducking enabled
// and any voice present, the music is attenuated linearly with the voice
// level, up to DuckingReduction at full voice.
func ComputeLevels(voiceVolume, musicVolume float64, duckingEnabled bool) timeline.MixLevels {
	return ComputeLevelsReduced(voiceVolume, musicVolume, duckingEnabled, DuckingReduction)
}

// ComputeLevelsReduced is ComputeLevels with a caller-supplied reduction
// factor, for deployments that tune the duck depth. The factor is clamped
// to [0, 1] like the volumes.
func ComputeLevelsReduced(voiceVolume, musicVolume float64, duckingEnabled bool, reduction float64) timeline.MixLevels {
	voice := clamp01(voiceVolume)
	music := clamp01(musicVolume)
	if duckingEnabled && voice > 0 {
		music *= 1 - voice*clamp01(reduction)
	}
	return timeline.MixLevels{VoiceLevel: voice, MusicLevel: music}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
