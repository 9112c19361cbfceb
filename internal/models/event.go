package models

import (
	"time"

	"github.com/google/uuid"
)

type GroundTruthEvent struct {
	ID               string    `json:"id"`
	VideoID          string    `json:"video_id"`
	Attribute        string    `json:"attribute"`
	TimestampSeconds float64   `json:"timestamp_seconds"`
	LiveClockTime    string    `json:"live_clock_time"`
	ClueDescription  string    `json:"clue_description"`
	Confidence       float64   `json:"confidence_score"`
	CreatedAt        time.Time `json:"created_at"`
}

func NewGroundTruthEvent(videoID, attribute string, timestampSeconds float64, liveClock, clue string, confidence float64) *GroundTruthEvent {
	return &GroundTruthEvent{
		ID:               uuid.New().String(),
		VideoID:          videoID,
		Attribute:        attribute,
		TimestampSeconds: timestampSeconds,
		LiveClockTime:    liveClock,
		ClueDescription:  clue,
		Confidence:       confidence,
		CreatedAt:        time.Now().UTC(),
	}
}
