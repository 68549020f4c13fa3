package timeline

import "strings"

// TranscriptChunk is a contiguous run of transcript text bounded by a
// splitting strategy, carrying the word timings that fall inside it.
// StartTime and EndTime are always derived from the timings, never set
// independently.
type TranscriptChunk struct {
	Text        string       `json:"text"`
	StartTime   float64      `json:"startTime"` // seconds
	EndTime     float64      `json:"endTime"`   // seconds
	WordTimings []WordTiming `json:"wordTimings"`
	ChunkIndex  int          `json:"chunkIndex"`
}

// NewChunk builds a chunk from trimmed text and its timing slice. The time
// window comes from the first and last timing; both are 0 when no timings
// accompany the text. Index ordering is the caller's responsibility.
func NewChunk(text string, timings []WordTiming, index int) TranscriptChunk {
	chunk := TranscriptChunk{
		Text:        strings.TrimSpace(text),
		WordTimings: timings,
		ChunkIndex:  index,
	}
	if len(timings) > 0 {
		chunk.StartTime = timings[0].StartTime
		chunk.EndTime = timings[len(timings)-1].EndTime
	}
	return chunk
}

// SplitMetadata summarizes one splitting run.
type SplitMetadata struct {
	SplitStrategy    string  `json:"splitStrategy"`
	AverageChunkSize float64 `json:"averageChunkSize"`
	TotalChunks      int     `json:"totalChunks"`
	OriginalLength   int     `json:"originalLength"`
}

// SplitResult is the output of every splitting strategy.
type SplitResult struct {
	Chunks      []TranscriptChunk `json:"chunks"`
	TotalChunks int               `json:"totalChunks"`
	Metadata    SplitMetadata     `json:"metadata"`
}
