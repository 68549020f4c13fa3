package splitter

import "github.com/erniesg/aidobe-sub002/internal/model/timeline"

// SplitForAvatar first tries a plain sentence split; when every sentence
// already fits the limit, natural sentence groupings win. Otherwise the
// attempt is discarded and the character-limit split guarantees the ceiling.
// maxChars of 0 falls back to AvatarCharLimit.
func SplitForAvatar(transcript string, timings []timeline.WordTiming, maxChars int) (*timeline.SplitResult, error) {
	if maxChars <= 0 {
		maxChars = AvatarCharLimit
	}

	bySentence, err := SplitBySentences(transcript, timings)
	if err != nil {
		return nil, err
	}

	fits := true
	for _, chunk := range bySentence.Chunks {
		if charLen(chunk.Text) > maxChars {
			fits = false
			break
		}
	}
	if fits {
		bySentence.Metadata.SplitStrategy = AvatarStrategy{}.strategyName()
		return bySentence, nil
	}

	byLimit, err := SplitByCharacterLimit(transcript, timings, maxChars)
	if err != nil {
		return nil, err
	}
	byLimit.Metadata.SplitStrategy = AvatarStrategy{}.strategyName()
	return byLimit, nil
}
