package models

import (
	"time"
)

// Video is a training clip. ID is the stable video identifier (the file stem
// for analyzed uploads), not a generated key.
type Video struct {
	ID                 string    `json:"video_id"`
	Title              string    `json:"title"`
	FilePath           string    `json:"file_path"`
	DurationSeconds    float64   `json:"duration_seconds"`
	BroadcastStartTime string    `json:"broadcast_start_time"`
	CreatedAt          time.Time `json:"created_at"`
}

func NewVideo(id, title, filePath string, durationSeconds float64, broadcastStartTime string) *Video {
	return &Video{
		ID:                 id,
		Title:              title,
		FilePath:           filePath,
		DurationSeconds:    durationSeconds,
		BroadcastStartTime: broadcastStartTime,
		CreatedAt:          time.Now().UTC(),
	}
}
