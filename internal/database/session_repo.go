package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kdimtricp/cuetrainer/internal/models"
)

type SessionRepository struct {
	db *DB
}

func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.db.queryRow(ctx,
		`SELECT id, username, email, created_at FROM users WHERE email = ?`, email,
	).Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// GetOrCreateUser returns the user registered under email, creating it with
// username on first sight.
func (r *SessionRepository) GetOrCreateUser(ctx context.Context, email, username string) (*models.User, error) {
	user := models.NewUser(username, email)
	_, err := r.db.exec(ctx, `
		INSERT INTO users (id, username, email, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (email) DO NOTHING`,
		user.ID, user.Username, user.Email, user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return r.GetUserByEmail(ctx, email)
}

func (r *SessionRepository) CreateSession(ctx context.Context, session *models.TrainingSession) error {
	_, err := r.db.exec(ctx, `
		INSERT INTO training_sessions (id, user_id, video_id, status, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		session.VideoID,
		session.Status,
		session.StartedAt,
		nullTime(session.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

const sessionColumns = `id, user_id, video_id, status, started_at, completed_at`

func (r *SessionRepository) GetSession(ctx context.Context, id string) (*models.TrainingSession, error) {
	row := r.db.queryRow(ctx, `SELECT `+sessionColumns+` FROM training_sessions WHERE id = ?`, id)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// ListSessionsByUser returns the user's sessions, newest first.
func (r *SessionRepository) ListSessionsByUser(ctx context.Context, userID string) ([]models.TrainingSession, error) {
	rows, err := r.db.query(ctx,
		`SELECT `+sessionColumns+` FROM training_sessions WHERE user_id = ? ORDER BY started_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.TrainingSession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

func scanSession(row rowScanner) (*models.TrainingSession, error) {
	var s models.TrainingSession
	var completed sql.NullTime
	if err := row.Scan(&s.ID, &s.UserID, &s.VideoID, &s.Status, &s.StartedAt, &completed); err != nil {
		return nil, err
	}
	if completed.Valid {
		s.CompletedAt = &completed.Time
	}
	return &s, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
