package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kdimtricp/cuetrainer/internal/models"
)

type VideoRepository struct {
	db *DB
}

func NewVideoRepository(db *DB) *VideoRepository {
	return &VideoRepository{db: db}
}

const videoColumns = `id, title, file_path, duration_seconds, broadcast_start_time, created_at`

// UpsertVideo inserts the video or refreshes its metadata. created_at is kept
// from the first insert.
func (r *VideoRepository) UpsertVideo(ctx context.Context, video *models.Video) error {
	query := `
		INSERT INTO videos (` + videoColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			file_path = EXCLUDED.file_path,
			duration_seconds = EXCLUDED.duration_seconds,
			broadcast_start_time = EXCLUDED.broadcast_start_time`

	_, err := r.db.exec(ctx, query,
		video.ID,
		video.Title,
		video.FilePath,
		video.DurationSeconds,
		video.BroadcastStartTime,
		video.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert video: %w", err)
	}
	return nil
}

func (r *VideoRepository) GetVideoByID(ctx context.Context, id string) (*models.Video, error) {
	row := r.db.queryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = ?`, id)
	video, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("video %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return video, nil
}

// FirstVideo returns the oldest stored video.
func (r *VideoRepository) FirstVideo(ctx context.Context) (*models.Video, error) {
	row := r.db.queryRow(ctx, `SELECT `+videoColumns+` FROM videos ORDER BY created_at, id LIMIT 1`)
	video, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no videos: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get first video: %w", err)
	}
	return video, nil
}

func (r *VideoRepository) ListVideos(ctx context.Context) ([]models.Video, error) {
	rows, err := r.db.query(ctx, `SELECT `+videoColumns+` FROM videos ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	videos := []models.Video{}
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, *video)
	}
	return videos, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVideo(row rowScanner) (*models.Video, error) {
	var v models.Video
	err := row.Scan(
		&v.ID,
		&v.Title,
		&v.FilePath,
		&v.DurationSeconds,
		&v.BroadcastStartTime,
		&v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
