package database

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
)

func TestMigrator_RunIsIdempotent(t *testing.T) {
	db, err := NewDB(Config{Type: TypeSQLite, SQLitePath: filepath.Join(t.TempDir(), "m.db")})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	migrator := NewMigrator(db, slog.New(slog.NewTextHandler(io.Discard, nil)))

	status, err := migrator.Status(ctx)
	if err != nil {
		t.Fatalf("Failed to get status: %v", err)
	}
	if len(status) == 0 {
		t.Fatal("Expected embedded migrations")
	}
	for _, s := range status {
		if s.Applied {
			t.Errorf("Migration %s should be pending", s.Name)
		}
	}

	applied, err := migrator.Run(ctx)
	if err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	if applied != len(status) {
		t.Errorf("Expected %d migrations applied, got %d", len(status), applied)
	}

	applied, err = migrator.Run(ctx)
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if applied != 0 {
		t.Errorf("Expected no pending migrations on second run, got %d", applied)
	}

	status, err = migrator.Status(ctx)
	if err != nil {
		t.Fatalf("Failed to get status: %v", err)
	}
	for _, s := range status {
		if !s.Applied || s.AppliedAt == nil {
			t.Errorf("Migration %s should be applied", s.Name)
		}
	}
}

func TestLoadMigrations_Ordered(t *testing.T) {
	migrator := NewMigrator(&DB{dbType: TypeSQLite}, nil)

	migrations, err := migrator.LoadMigrations()
	if err != nil {
		t.Fatalf("Failed to load migrations: %v", err)
	}
	for i := 1; i < len(migrations); i++ {
		if migrations[i-1].Version >= migrations[i].Version {
			t.Errorf("Migrations out of order: %s before %s", migrations[i-1].Name, migrations[i].Name)
		}
	}
	if migrations[0].Version != "001" {
		t.Errorf("Expected first migration 001, got %s", migrations[0].Version)
	}
}

func TestRebind(t *testing.T) {
	query := "SELECT * FROM t WHERE a = ? AND b = ? LIMIT ?"

	sqlite := &DB{dbType: TypeSQLite}
	if got := sqlite.Rebind(query); got != query {
		t.Errorf("sqlite query should be unchanged, got %q", got)
	}

	pg := &DB{dbType: TypePostgres}
	want := "SELECT * FROM t WHERE a = $1 AND b = $2 LIMIT $3"
	if got := pg.Rebind(query); got != want {
		t.Errorf("Rebind() = %q, want %q", got, want)
	}
}

func TestNewDB_UnsupportedType(t *testing.T) {
	if _, err := NewDB(Config{Type: "oracle"}); err == nil {
		t.Error("Expected error for unsupported database type")
	}
}
