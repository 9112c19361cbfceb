package groundtruth

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/kdimtricp/cuetrainer/internal/ai"
)

var ErrInvalidBroadcastTime = errors.New("invalid broadcast start time")

// LiveClockLayout renders broadcast wall-clock time with millisecond precision.
const LiveClockLayout = "15:04:05.000"

type Event struct {
	Attribute        string  `json:"attribute"`
	TimestampSeconds float64 `json:"timestamp_seconds"`
	LiveClockTime    string  `json:"live_clock_time"`
	ClueDescription  string  `json:"clue_description"`
	Confidence       float64 `json:"confidence_score"`
}

type Timeline struct {
	VideoID            string  `json:"video_id"`
	DurationSeconds    float64 `json:"duration_seconds"`
	BroadcastStartTime string  `json:"broadcast_start_time"`
	Events             []Event `json:"events"`
}

var broadcastLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.DateOnly,
}

// ParseBroadcastStart accepts the ISO-8601 date-time forms a browser or a
// shell user is likely to send. Times without a zone are kept as wall clock.
func ParseBroadcastStart(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidBroadcastTime)
	}
	for _, layout := range broadcastLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidBroadcastTime, s)
}

// LiveClock maps a video-relative offset onto the broadcast clock. The offset
// is resolved to whole microseconds before formatting; the millisecond field
// is truncated, not rounded.
func LiveClock(start time.Time, offsetSeconds float64) string {
	offset := time.Duration(math.Round(offsetSeconds*1e6)) * time.Microsecond
	return start.Add(offset).Format(LiveClockLayout)
}

// Assemble stamps every candidate with its live clock time and orders the
// result by video timestamp. Candidates sharing a timestamp keep their input
// order.
func Assemble(videoID, broadcastStart string, candidates []ai.EventCandidate, durationSeconds float64) (*Timeline, error) {
	start, err := ParseBroadcastStart(broadcastStart)
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(candidates))
	for _, c := range candidates {
		events = append(events, Event{
			Attribute:        c.Attribute,
			TimestampSeconds: c.TimestampSeconds,
			LiveClockTime:    LiveClock(start, c.TimestampSeconds),
			ClueDescription:  c.ClueDescription,
			Confidence:       c.Confidence,
		})
	}

	slices.SortStableFunc(events, func(a, b Event) int {
		switch {
		case a.TimestampSeconds < b.TimestampSeconds:
			return -1
		case a.TimestampSeconds > b.TimestampSeconds:
			return 1
		}
		return 0
	})

	return &Timeline{
		VideoID:            videoID,
		DurationSeconds:    durationSeconds,
		BroadcastStartTime: broadcastStart,
		Events:             events,
	}, nil
}
