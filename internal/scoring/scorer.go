package scoring

import (
	"fmt"
	"math"
)

type Accuracy string

const (
	Perfect       Accuracy = "perfect"
	Acceptable    Accuracy = "acceptable"
	Miss          Accuracy = "miss"
	FalsePositive Accuracy = "false_positive"
)

// Outcome separates the two ways an attempt can end up false_positive:
// nothing of that attribute near the click, or a match past the miss tier.
type Outcome string

const (
	OutcomeMatched    Outcome = "matched"
	OutcomeUnexpected Outcome = "unexpected"
)

const (
	PerfectToleranceMs    = 1000.0
	AcceptableToleranceMs = 2000.0
	MissToleranceMs       = 5000.0

	// AdmissionRadiusSeconds bounds how far a ground-truth event may be from
	// the click and still count as the event the user meant.
	AdmissionRadiusSeconds = 5.0
)

// Event is the slice of a ground-truth row the matcher needs.
type Event struct {
	ID               string
	Attribute        string
	TimestampSeconds float64
	LiveClockTime    string
	ClueDescription  string
}

// Verdict is the scored attempt. SignedDifferenceSeconds is user minus ground
// truth, so a positive value means the click was late.
type Verdict struct {
	Accuracy                Accuracy
	Outcome                 Outcome
	TimeDifferenceMs        float64
	SignedDifferenceSeconds float64
	Match                   *Event
	Feedback                string
}

// Classify maps an absolute difference in milliseconds onto an accuracy tier.
// Upper bounds are inclusive.
func Classify(diffMs float64) Accuracy {
	diffMs = math.Abs(diffMs)
	switch {
	case diffMs <= PerfectToleranceMs:
		return Perfect
	case diffMs <= AcceptableToleranceMs:
		return Acceptable
	case diffMs <= MissToleranceMs:
		return Miss
	default:
		return FalsePositive
	}
}

// FindNearest returns the index of the event closest to userTimestamp within
// the admission radius, or -1. The first of equally close events wins.
func FindNearest(events []Event, userTimestamp float64) int {
	best := -1
	minDiff := math.Inf(1)
	for i, e := range events {
		diff := math.Abs(e.TimestampSeconds - userTimestamp)
		if diff < minDiff && diff <= AdmissionRadiusSeconds {
			minDiff = diff
			best = i
		}
	}
	return best
}

// Score matches a click against the ground truth of one video. Events with a
// different attribute are ignored, so callers may pass the full timeline.
func Score(events []Event, attribute string, userTimestamp float64) Verdict {
	candidates := make([]Event, 0, len(events))
	for _, e := range events {
		if e.Attribute == attribute {
			candidates = append(candidates, e)
		}
	}

	idx := FindNearest(candidates, userTimestamp)
	if idx < 0 {
		return Verdict{
			Accuracy: FalsePositive,
			Outcome:  OutcomeUnexpected,
			Feedback: fmt.Sprintf("'%s' was not expected here.", attribute),
		}
	}

	match := candidates[idx]
	signed := userTimestamp - match.TimestampSeconds
	diffMs := math.Abs(signed) * 1000
	accuracy := Classify(diffMs)

	return Verdict{
		Accuracy:                accuracy,
		Outcome:                 OutcomeMatched,
		TimeDifferenceMs:        diffMs,
		SignedDifferenceSeconds: signed,
		Match:                   &match,
		Feedback:                Feedback(accuracy, signed),
	}
}

// Feedback is the message shown to the trainee for a matched attempt.
func Feedback(accuracy Accuracy, signedSeconds float64) string {
	direction := "early"
	if signedSeconds > 0 {
		direction = "late"
	}

	switch accuracy {
	case Perfect:
		return "Perfect timing! You were within 1 second."
	case Acceptable:
		return "Good timing! You were within 2 seconds."
	case Miss:
		return fmt.Sprintf("Missed! You were %.2f seconds %s.", math.Abs(signedSeconds), direction)
	default:
		return fmt.Sprintf("Wrong timing! You were %.2f seconds %s.", math.Abs(signedSeconds), direction)
	}
}
