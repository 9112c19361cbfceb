package scoring

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestClassify(t *testing.T) {
	tests := []struct {
		diffMs float64
		want   Accuracy
	}{
		{0, Perfect},
		{999.999, Perfect},
		{1000, Perfect},
		{1000.001, Acceptable},
		{2000, Acceptable},
		{2000.001, Miss},
		{5000, Miss},
		{5000.001, FalsePositive},
		{60000, FalsePositive},
		{-1500, Acceptable},
	}

	for _, tt := range tests {
		if got := Classify(tt.diffMs); got != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.diffMs, got, tt.want)
		}
	}
}

func TestClassify_Monotonic(t *testing.T) {
	rank := map[Accuracy]int{Perfect: 0, Acceptable: 1, Miss: 2, FalsePositive: 3}

	prev := rank[Classify(0)]
	for ms := 0.0; ms <= 8000; ms += 0.5 {
		r := rank[Classify(ms)]
		if r < prev {
			t.Fatalf("tier got stricter at %vms", ms)
		}
		prev = r
	}
}

func TestFindNearest(t *testing.T) {
	events := []Event{
		{ID: "a", TimestampSeconds: 10},
		{ID: "b", TimestampSeconds: 14},
		{ID: "c", TimestampSeconds: 30},
	}

	tests := []struct {
		name string
		user float64
		want int
	}{
		{"closest wins", 13, 1},
		{"exact", 30, 2},
		{"equidistant picks first", 12, 0},
		{"edge of radius", 35, 2},
		{"outside radius", 20.5, -1},
		{"before everything", 4.9, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindNearest(events, tt.user); got != tt.want {
				t.Errorf("FindNearest(%v) = %d, want %d", tt.user, got, tt.want)
			}
		})
	}

	if got := FindNearest(nil, 3); got != -1 {
		t.Errorf("expected -1 for no events, got %d", got)
	}
}

func TestScore_PerfectClick(t *testing.T) {
	events := []Event{{ID: "gt-1", Attribute: "Main Logo", TimestampSeconds: 10.0, LiveClockTime: "19:00:10.000"}}

	v := Score(events, "Main Logo", 10.4)
	if v.Accuracy != Perfect {
		t.Errorf("expected perfect, got %s", v.Accuracy)
	}
	if !approx(v.TimeDifferenceMs, 400) {
		t.Errorf("expected 400ms, got %v", v.TimeDifferenceMs)
	}
	if v.Match == nil || v.Match.ID != "gt-1" {
		t.Errorf("expected match gt-1, got %+v", v.Match)
	}
	if v.Outcome != OutcomeMatched {
		t.Errorf("expected matched outcome, got %s", v.Outcome)
	}
	if v.Feedback != "Perfect timing! You were within 1 second." {
		t.Errorf("unexpected feedback %q", v.Feedback)
	}
}

func TestScore_NothingNearby(t *testing.T) {
	events := []Event{{ID: "gt-1", Attribute: "Main Logo", TimestampSeconds: 2.0}}

	v := Score(events, "Main Logo", 13.0)
	if v.Accuracy != FalsePositive {
		t.Errorf("expected false_positive, got %s", v.Accuracy)
	}
	if v.TimeDifferenceMs != 0 {
		t.Errorf("expected 0ms, got %v", v.TimeDifferenceMs)
	}
	if v.Match != nil {
		t.Errorf("expected no match, got %+v", v.Match)
	}
	if v.Outcome != OutcomeUnexpected {
		t.Errorf("expected unexpected outcome, got %s", v.Outcome)
	}
	if v.Feedback != "'Main Logo' was not expected here." {
		t.Errorf("unexpected feedback %q", v.Feedback)
	}
}

func TestScore_Boundaries(t *testing.T) {
	events := []Event{{ID: "gt", Attribute: "Copyright", TimestampSeconds: 10}}

	tests := []struct {
		name    string
		user    float64
		want    Accuracy
		outcome Outcome
	}{
		{"one second late", 11, Perfect, OutcomeMatched},
		{"two seconds early", 8, Acceptable, OutcomeMatched},
		{"five seconds late", 15, Miss, OutcomeMatched},
		{"just past the radius", 15.000001, FalsePositive, OutcomeUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Score(events, "Copyright", tt.user)
			if v.Accuracy != tt.want || v.Outcome != tt.outcome {
				t.Errorf("Score(%v) = %s/%s, want %s/%s", tt.user, v.Accuracy, v.Outcome, tt.want, tt.outcome)
			}
		})
	}
}

func TestScore_IgnoresOtherAttributes(t *testing.T) {
	events := []Event{
		{ID: "logo", Attribute: "Main Logo", TimestampSeconds: 10},
		{ID: "copy", Attribute: "Copyright", TimestampSeconds: 12},
	}

	v := Score(events, "Copyright", 10)
	if v.Match == nil || v.Match.ID != "copy" {
		t.Fatalf("expected copyright match, got %+v", v.Match)
	}
	if v.Accuracy != Acceptable {
		t.Errorf("expected acceptable, got %s", v.Accuracy)
	}

	if v := Score(events, "Scoreboard", 10); v.Outcome != OutcomeUnexpected {
		t.Errorf("expected unexpected outcome for unknown attribute, got %s", v.Outcome)
	}
}

func TestScore_TieBreak(t *testing.T) {
	events := []Event{
		{ID: "first", Attribute: "Main Logo", TimestampSeconds: 8},
		{ID: "second", Attribute: "Main Logo", TimestampSeconds: 12},
	}

	v := Score(events, "Main Logo", 10)
	if v.Match == nil || v.Match.ID != "first" {
		t.Errorf("expected the first-listed event, got %+v", v.Match)
	}
}

func TestFeedback(t *testing.T) {
	tests := []struct {
		accuracy Accuracy
		signed   float64
		want     string
	}{
		{Perfect, -0.5, "Perfect timing! You were within 1 second."},
		{Acceptable, 1.5, "Good timing! You were within 2 seconds."},
		{Miss, 3, "Missed! You were 3.00 seconds late."},
		{Miss, -4.25, "Missed! You were 4.25 seconds early."},
		{FalsePositive, -6, "Wrong timing! You were 6.00 seconds early."},
		{FalsePositive, 7.5, "Wrong timing! You were 7.50 seconds late."},
	}

	for _, tt := range tests {
		if got := Feedback(tt.accuracy, tt.signed); got != tt.want {
			t.Errorf("Feedback(%s, %v) = %q, want %q", tt.accuracy, tt.signed, got, tt.want)
		}
	}
}
