package database

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/kdimtricp/cuetrainer/internal/models"
)

func setupTestDB(t *testing.T) (*DB, func()) {
	t.Helper()

	config := Config{
		Type:       TypeSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "cuetrainer_test.db"),
	}

	db, err := NewDB(config)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	migrator := NewMigrator(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if _, err := migrator.Run(context.Background()); err != nil {
		db.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return db, cleanup
}

func seedVideo(t *testing.T, db *DB, id string) *models.Video {
	t.Helper()
	video := models.NewVideo(id, "Video "+id, id+".mp4", 600, "2026-02-11T19:00:00")
	if err := NewVideoRepository(db).UpsertVideo(context.Background(), video); err != nil {
		t.Fatalf("Failed to seed video: %v", err)
	}
	// created_at ordering needs distinct values on fast machines
	time.Sleep(2 * time.Millisecond)
	return video
}
