package localstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/vibeloghq/vibelog/internal/journal"
)

func TestPersistAndReload(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	svc := journal.NewService(store)
	sess, err := svc.StartSession(ctx, 1, "local work")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.EndSession(ctx, 1, sess.SessionID); err != nil {
		t.Fatalf("end: %v", err)
	}
	if _, err := svc.CreateIdea(ctx, 1, "offline idea", nil); err != nil {
		t.Fatalf("idea: %v", err)
	}
	if _, err := svc.CreateBlocker(ctx, 1, "no network"); err != nil {
		t.Fatalf("blocker: %v", err)
	}

	// a fresh Store sees everything the first one wrote
	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	sessions, _ := reopened.ListSessions(ctx, 1)
	ideas, _ := reopened.ListIdeas(ctx, 1)
	blockers, _ := reopened.ListBlockers(ctx, 1)
	if len(sessions) != 1 || len(ideas) != 1 || len(blockers) != 1 {
		t.Fatalf("reload sizes: %d/%d/%d", len(sessions), len(ideas), len(blockers))
	}
	if sessions[0].SessionID != sess.SessionID || sessions[0].Status != journal.SessionCompleted {
		t.Fatalf("session not persisted faithfully: %+v", sessions[0])
	}
}

func TestLegacyIdeasMigratedOnce(t *testing.T) {
	dir := t.TempDir()

	legacy := []string{"first old idea", "second old idea"}
	data, _ := json.Marshal(legacy)
	if err := os.WriteFile(filepath.Join(dir, "ideas.json"), data, 0o644); err != nil {
		t.Fatalf("seed legacy blob: %v", err)
	}

	store, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ideas, _ := store.ListIdeas(context.Background(), 0)
	if len(ideas) != 2 {
		t.Fatalf("expected 2 migrated ideas, got %d", len(ideas))
	}
	for i, idea := range ideas {
		if idea.IdeaID == "" {
			t.Fatalf("migrated idea %d has no id", i)
		}
		if idea.CreatedAt.IsZero() {
			t.Fatalf("migrated idea %d has no timestamp", i)
		}
		if idea.Content != legacy[i] {
			t.Fatalf("migrated content = %q, want %q", idea.Content, legacy[i])
		}
	}

	// the blob is rewritten in the new shape; reopening keeps the same ids
	again, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	ideas2, _ := again.ListIdeas(context.Background(), 0)
	if len(ideas2) != 2 {
		t.Fatalf("migration not idempotent: %d ideas", len(ideas2))
	}
	if ideas2[0].IdeaID != ideas[0].IdeaID {
		t.Fatalf("migration ran twice: ids regenerated")
	}
}

func TestCorruptRecordSkippedNotFatal(t *testing.T) {
	dir := t.TempDir()

	blob := `[
		{"id":"good","goal":"ok","start_time":"2025-06-10T09:00:00Z","end_time":"2025-06-10T10:00:00Z","status":"completed","created_at":"2025-06-10T09:00:00Z","updated_at":"2025-06-10T10:00:00Z"},
		{"id":"bad","goal":"broken clock","start_time":"not-a-timestamp","status":"completed"}
	]`
	if err := os.WriteFile(filepath.Join(dir, "sessions.json"), []byte(blob), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	store, err := Open(dir)
	if err != nil {
		t.Fatalf("open should not fail on a bad record: %v", err)
	}
	sessions, _ := store.ListSessions(context.Background(), 0)
	if len(sessions) != 1 || sessions[0].SessionID != "good" {
		t.Fatalf("expected only the good record, got %+v", sessions)
	}
}

func TestCorruptBlobStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "blockers.json"), []byte("{truncated"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	blockers, _ := store.ListBlockers(context.Background(), 0)
	if len(blockers) != 0 {
		t.Fatalf("expected empty blockers, got %d", len(blockers))
	}
}

func TestFailedSaveLeavesNotFound(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	err = store.SaveSession(context.Background(), &journal.Session{SessionID: "ghost"})
	if err != journal.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
