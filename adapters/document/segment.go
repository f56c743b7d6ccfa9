package document

import (
	"strings"

	"gostatcheck/domain/core"
	"gostatcheck/internal/errors"
)

// Segment splits text into windows of at most maxWords words, each starting
// maxWords-overlap words after the previous one, so a result that straddles a
// boundary appears whole in at least one window.
func Segment(text string, maxWords, overlap int) ([]string, error) {
	if maxWords < 1 || overlap < 0 || overlap >= maxWords {
		return nil, errors.ConfigInvalid("segmentation needs 0 <= overlap < max words")
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, core.ErrNoSegments
	}

	step := maxWords - overlap
	segments := make([]string, 0, len(words)/step+1)
	for start := 0; start < len(words); start += step {
		end := min(start+maxWords, len(words))
		segments = append(segments, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return segments, nil
}
