package models

import (
	"time"

	"github.com/google/uuid"
)

// UserAttempt is one scored click. It is written once and never updated.
// GroundTruthEventID is empty when nothing matched.
type UserAttempt struct {
	ID                   string    `json:"id"`
	SessionID            string    `json:"session_id"`
	Attribute            string    `json:"attribute"`
	UserTimestampSeconds float64   `json:"user_timestamp_seconds"`
	UserLiveClockTime    string    `json:"user_live_clock_time"`
	GroundTruthEventID   string    `json:"ground_truth_event_id,omitempty"`
	TimeDifferenceMs     float64   `json:"time_difference_ms"`
	AccuracyLevel        string    `json:"accuracy_level"`
	Outcome              string    `json:"outcome"`
	Feedback             string    `json:"ai_feedback"`
	CreatedAt            time.Time `json:"created_at"`
}

func NewUserAttempt(sessionID, attribute string, userTimestamp float64, userClock string) *UserAttempt {
	return &UserAttempt{
		ID:                   uuid.New().String(),
		SessionID:            sessionID,
		Attribute:            attribute,
		UserTimestampSeconds: userTimestamp,
		UserLiveClockTime:    userClock,
		CreatedAt:            time.Now().UTC(),
	}
}
