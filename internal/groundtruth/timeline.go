package groundtruth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kdimtricp/cuetrainer/internal/ai"
)

var ErrInvalidTimeline = errors.New("invalid timeline")

// ReadTimeline decodes a hand-curated timeline in the analyze output shape.
// Live clock times are derived again from broadcast_start_time, so a file
// with stale or missing clocks still yields a consistent timeline.
func ReadTimeline(r io.Reader) (*Timeline, error) {
	var in Timeline
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTimeline, err)
	}

	videoID := strings.TrimSpace(in.VideoID)
	if videoID == "" {
		return nil, fmt.Errorf("%w: video_id is required", ErrInvalidTimeline)
	}
	if in.DurationSeconds < 0 {
		return nil, fmt.Errorf("%w: negative duration", ErrInvalidTimeline)
	}

	candidates := make([]ai.EventCandidate, 0, len(in.Events))
	for i, e := range in.Events {
		if strings.TrimSpace(e.Attribute) == "" {
			return nil, fmt.Errorf("%w: event %d has no attribute", ErrInvalidTimeline, i)
		}
		if e.TimestampSeconds < 0 {
			return nil, fmt.Errorf("%w: event %d has a negative timestamp", ErrInvalidTimeline, i)
		}
		candidates = append(candidates, ai.EventCandidate{
			Attribute:        strings.TrimSpace(e.Attribute),
			TimestampSeconds: e.TimestampSeconds,
			ClueDescription:  e.ClueDescription,
			Confidence:       e.Confidence,
		})
	}

	return Assemble(videoID, in.BroadcastStartTime, candidates, in.DurationSeconds)
}
