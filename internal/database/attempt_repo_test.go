package database

import (
	"context"
	"testing"

	"github.com/kdimtricp/cuetrainer/internal/models"
)

func TestAttemptRepository(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	seedVideo(t, db, "clip")

	sessions := NewSessionRepository(db)
	user, err := sessions.GetOrCreateUser(ctx, "ana@example.com", "ana")
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	session := models.NewTrainingSession(user.ID, "clip")
	if err := sessions.CreateSession(ctx, session); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	event := models.NewGroundTruthEvent("clip", "Main Logo", 10, "19:00:10.000", "bug", 0.9)
	truth := NewGroundTruthRepository(db)
	if _, err := truth.ReplaceGroundTruth(ctx, "clip", []*models.GroundTruthEvent{event}); err != nil {
		t.Fatalf("Failed to save ground truth: %v", err)
	}

	repo := NewAttemptRepository(db)

	matched := models.NewUserAttempt(session.ID, "Main Logo", 10.4, "19:00:10.400")
	matched.GroundTruthEventID = event.ID
	matched.TimeDifferenceMs = 400
	matched.AccuracyLevel = "perfect"
	matched.Outcome = "matched"
	matched.Feedback = "Perfect timing! You were within 1 second."

	unmatched := models.NewUserAttempt(session.ID, "Copyright", 30, "19:00:30.000")
	unmatched.AccuracyLevel = "false_positive"
	unmatched.Outcome = "unexpected"
	unmatched.Feedback = "'Copyright' was not expected here."

	for _, a := range []*models.UserAttempt{matched, unmatched} {
		id, err := repo.CreateAttempt(ctx, a)
		if err != nil {
			t.Fatalf("Failed to create attempt: %v", err)
		}
		if id != a.ID {
			t.Errorf("Expected id %s, got %s", a.ID, id)
		}
	}

	attempts, err := repo.ListBySession(ctx, session.ID)
	if err != nil {
		t.Fatalf("Failed to list attempts: %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("Expected 2 attempts, got %d", len(attempts))
	}

	byID := map[string]models.UserAttempt{}
	for _, a := range attempts {
		byID[a.ID] = a
	}
	if got := byID[matched.ID]; got.GroundTruthEventID != event.ID || got.TimeDifferenceMs != 400 {
		t.Errorf("Unexpected matched attempt: %+v", got)
	}
	if got := byID[unmatched.ID]; got.GroundTruthEventID != "" || got.Outcome != "unexpected" {
		t.Errorf("Unexpected unmatched attempt: %+v", got)
	}

	// A rerun of the analysis detaches earlier attempts instead of failing.
	if _, err := truth.ReplaceGroundTruth(ctx, "clip", nil); err != nil {
		t.Fatalf("Failed to clear ground truth: %v", err)
	}
	attempts, err = repo.ListBySession(ctx, session.ID)
	if err != nil {
		t.Fatalf("Failed to list attempts: %v", err)
	}
	for _, a := range attempts {
		if a.GroundTruthEventID != "" {
			t.Errorf("Expected attempt %s to be detached, got %s", a.ID, a.GroundTruthEventID)
		}
	}
}
