package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SessionInProgress = "in_progress"
	SessionCompleted  = "completed"
	SessionAbandoned  = "abandoned"
)

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUser(username, email string) *User {
	return &User{
		ID:        uuid.New().String(),
		Username:  username,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
}

type TrainingSession struct {
	ID          string     `json:"session_id"`
	UserID      string     `json:"user_id"`
	VideoID     string     `json:"video_id"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func NewTrainingSession(userID, videoID string) *TrainingSession {
	return &TrainingSession{
		ID:        uuid.New().String(),
		UserID:    userID,
		VideoID:   videoID,
		Status:    SessionInProgress,
		StartedAt: time.Now().UTC(),
	}
}
