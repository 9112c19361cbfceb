package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kdimtricp/cuetrainer/internal/models"
)

type AttemptRepository struct {
	db *DB
}

func NewAttemptRepository(db *DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

func (r *AttemptRepository) CreateAttempt(ctx context.Context, a *models.UserAttempt) (string, error) {
	_, err := r.db.exec(ctx, `
		INSERT INTO user_attempts (
			id, session_id, attribute, user_timestamp_seconds, user_live_clock_time,
			ground_truth_event_id, time_difference_ms, accuracy_level, outcome,
			ai_feedback, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.SessionID,
		a.Attribute,
		a.UserTimestampSeconds,
		a.UserLiveClockTime,
		nullString(a.GroundTruthEventID),
		a.TimeDifferenceMs,
		a.AccuracyLevel,
		a.Outcome,
		a.Feedback,
		a.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create attempt: %w", err)
	}
	return a.ID, nil
}

func (r *AttemptRepository) ListBySession(ctx context.Context, sessionID string) ([]models.UserAttempt, error) {
	rows, err := r.db.query(ctx, `
		SELECT id, session_id, attribute, user_timestamp_seconds, user_live_clock_time,
			ground_truth_event_id, time_difference_ms, accuracy_level, outcome,
			ai_feedback, created_at
		FROM user_attempts
		WHERE session_id = ?
		ORDER BY created_at, id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	defer rows.Close()

	attempts := []models.UserAttempt{}
	for rows.Next() {
		var a models.UserAttempt
		var eventID sql.NullString
		if err := rows.Scan(
			&a.ID,
			&a.SessionID,
			&a.Attribute,
			&a.UserTimestampSeconds,
			&a.UserLiveClockTime,
			&eventID,
			&a.TimeDifferenceMs,
			&a.AccuracyLevel,
			&a.Outcome,
			&a.Feedback,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		a.GroundTruthEventID = eventID.String
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
