package timeline

// WordTiming is one aligned word inside an audio track, produced by an
// external transcription or TTS-alignment step and treated as immutable here.
type WordTiming struct {
	Word       string  `json:"word"`
	StartTime  float64 `json:"startTime"` // seconds
	EndTime    float64 `json:"endTime"`   // seconds
	Confidence float64 `json:"confidence,omitempty"` // 0.0-1.0
}

// SpanSeconds returns the covered duration of an ordered timing sequence,
// measured from the first word's start to the last word's end.
func SpanSeconds(timings []WordTiming) float64 {
	if len(timings) == 0 {
		return 0
	}
	return timings[len(timings)-1].EndTime - timings[0].StartTime
}
