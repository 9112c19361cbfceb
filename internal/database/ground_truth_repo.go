package database

import (
	"context"
	"fmt"

	"github.com/kdimtricp/cuetrainer/internal/models"
)

type GroundTruthRepository struct {
	db *DB
}

func NewGroundTruthRepository(db *DB) *GroundTruthRepository {
	return &GroundTruthRepository{db: db}
}

const eventColumns = `id, video_id, attribute, timestamp_seconds, live_clock_time, clue_description, confidence_score, created_at`

// ReplaceGroundTruth swaps the whole timeline of a video in one transaction.
// Events keep the order they are given in for equal timestamps.
func (r *GroundTruthRepository) ReplaceGroundTruth(ctx context.Context, videoID string, events []*models.GroundTruthEvent) (int, error) {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		r.db.Rebind(`DELETE FROM ground_truth_events WHERE video_id = ?`), videoID,
	); err != nil {
		return 0, fmt.Errorf("failed to delete ground truth: %w", err)
	}

	insert := r.db.Rebind(`
		INSERT INTO ground_truth_events (` + eventColumns + `, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range events {
		e.VideoID = videoID
		if _, err := stmt.ExecContext(ctx,
			e.ID,
			e.VideoID,
			e.Attribute,
			e.TimestampSeconds,
			e.LiveClockTime,
			e.ClueDescription,
			e.Confidence,
			e.CreatedAt,
			i,
		); err != nil {
			return 0, fmt.Errorf("failed to insert ground truth event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit ground truth: %w", err)
	}
	return len(events), nil
}

// QueryGroundTruth returns a video's events in timeline order. An empty
// attribute returns every event.
func (r *GroundTruthRepository) QueryGroundTruth(ctx context.Context, videoID, attribute string) ([]models.GroundTruthEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM ground_truth_events WHERE video_id = ?`
	args := []any{videoID}
	if attribute != "" {
		query += ` AND attribute = ?`
		args = append(args, attribute)
	}
	query += ` ORDER BY timestamp_seconds, seq`

	rows, err := r.db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ground truth: %w", err)
	}
	defer rows.Close()

	events := []models.GroundTruthEvent{}
	for rows.Next() {
		var e models.GroundTruthEvent
		if err := rows.Scan(
			&e.ID,
			&e.VideoID,
			&e.Attribute,
			&e.TimestampSeconds,
			&e.LiveClockTime,
			&e.ClueDescription,
			&e.Confidence,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ground truth event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ListAttributes returns the distinct attributes of a video, ordered by
// first appearance.
func (r *GroundTruthRepository) ListAttributes(ctx context.Context, videoID string) ([]string, error) {
	rows, err := r.db.query(ctx, `
		SELECT attribute FROM ground_truth_events
		WHERE video_id = ?
		GROUP BY attribute
		ORDER BY MIN(timestamp_seconds), attribute`, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attributes: %w", err)
	}
	defer rows.Close()

	attributes := []string{}
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("failed to scan attribute: %w", err)
		}
		attributes = append(attributes, a)
	}
	return attributes, rows.Err()
}
