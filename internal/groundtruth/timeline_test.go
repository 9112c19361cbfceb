package groundtruth

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestReadTimeline(t *testing.T) {
	input := `{
		"video_id": "super_bowl_2026",
		"duration_seconds": 320,
		"broadcast_start_time": "2026-02-08T15:30:00",
		"events": [
			{"attribute": "End of game", "timestamp_seconds": 190, "clue_description": "final whistle"},
			{"attribute": "Broadcaster Logo", "timestamp_seconds": 5, "live_clock_time": "99:99:99.000", "clue_description": "logo"},
			{"attribute": " Start of 3rd Quarter ", "timestamp_seconds": 102}
		]
	}`

	timeline, err := ReadTimeline(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if timeline.VideoID != "super_bowl_2026" || timeline.DurationSeconds != 320 {
		t.Errorf("unexpected metadata: %+v", timeline)
	}

	want := []Event{
		{Attribute: "Broadcaster Logo", TimestampSeconds: 5, LiveClockTime: "15:30:05.000", ClueDescription: "logo"},
		{Attribute: "Start of 3rd Quarter", TimestampSeconds: 102, LiveClockTime: "15:31:42.000"},
		{Attribute: "End of game", TimestampSeconds: 190, LiveClockTime: "15:33:10.000", ClueDescription: "final whistle"},
	}
	if !reflect.DeepEqual(timeline.Events, want) {
		t.Errorf("unexpected events:\n got %+v\nwant %+v", timeline.Events, want)
	}
}

func TestReadTimeline_NoEvents(t *testing.T) {
	timeline, err := ReadTimeline(strings.NewReader(`{"video_id": "clip", "broadcast_start_time": "2026-02-11T19:00:00"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if timeline.Events == nil || len(timeline.Events) != 0 {
		t.Errorf("expected an empty, non-nil event list, got %#v", timeline.Events)
	}
}

func TestReadTimeline_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"not json", `events:`, ErrInvalidTimeline},
		{"missing video id", `{"broadcast_start_time": "2026-02-11T19:00:00"}`, ErrInvalidTimeline},
		{"negative duration", `{"video_id": "clip", "duration_seconds": -1, "broadcast_start_time": "2026-02-11T19:00:00"}`, ErrInvalidTimeline},
		{"event without attribute", `{"video_id": "clip", "broadcast_start_time": "2026-02-11T19:00:00", "events": [{"timestamp_seconds": 1}]}`, ErrInvalidTimeline},
		{"negative timestamp", `{"video_id": "clip", "broadcast_start_time": "2026-02-11T19:00:00", "events": [{"attribute": "Logo", "timestamp_seconds": -2}]}`, ErrInvalidTimeline},
		{"bad broadcast start", `{"video_id": "clip", "broadcast_start_time": "yesterday"}`, ErrInvalidBroadcastTime},
		{"missing broadcast start", `{"video_id": "clip"}`, ErrInvalidBroadcastTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadTimeline(strings.NewReader(tt.input)); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
