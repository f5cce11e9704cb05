package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// named shared-cache memory DB: safe across the pool, isolated per test
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Session{}, &Idea{}, &Blocker{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(NewRepo(openTestDB(t)))
}

func TestStartSession_RejectsSecondActive(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.StartSession(ctx, 1, "fix bug")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if first.Status != SessionActive {
		t.Fatalf("expected active, got %s", first.Status)
	}

	_, err = svc.StartSession(ctx, 1, "second goal")
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	// the existing active session is untouched
	got, err := svc.store.SessionByID(ctx, 1, first.SessionID)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got.Status != SessionActive || !got.StartTime.Equal(first.StartTime) {
		t.Fatalf("active session mutated: status=%s", got.Status)
	}

	// a different user is unaffected
	if _, err := svc.StartSession(ctx, 2, "other user"); err != nil {
		t.Fatalf("start for user 2: %v", err)
	}
}

func TestStartSession_EmptyGoalRejected(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.StartSession(context.Background(), 1, "   "); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEndSession_SetsEndAndStatus(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	sess, err := svc.StartSession(ctx, 1, "fix bug")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	ended, err := svc.EndSession(ctx, 1, sess.SessionID)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if ended.Status != SessionCompleted {
		t.Fatalf("expected completed, got %s", ended.Status)
	}
	if ended.EndTime == nil {
		t.Fatalf("expected end time to be set")
	}
	if ended.EndTime.Before(ended.StartTime) {
		t.Fatalf("end %v before start %v", ended.EndTime, ended.StartTime)
	}

	// ending twice is rejected
	if _, err := svc.EndSession(ctx, 1, sess.SessionID); !IsValidation(err) {
		t.Fatalf("expected validation error on double end, got %v", err)
	}
}

func TestResumeSession_ReentersActive(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	sess, _ := svc.StartSession(ctx, 1, "fix bug")
	if _, err := svc.EndSession(ctx, 1, sess.SessionID); err != nil {
		t.Fatalf("end: %v", err)
	}

	resumed, err := svc.ResumeSession(ctx, 1, sess.SessionID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.Status != SessionActive || resumed.EndTime != nil {
		t.Fatalf("expected active with nil end, got status=%s end=%v", resumed.Status, resumed.EndTime)
	}

	// resume keeps the same record, not a copy
	if resumed.SessionID != sess.SessionID {
		t.Fatalf("resume created a new session id")
	}

	// another completed session cannot be resumed while one is active
	other, _ := svc.StartSession(ctx, 2, "unused")
	_ = other
	if _, err := svc.ResumeSession(ctx, 1, sess.SessionID); !IsValidation(err) {
		t.Fatalf("expected validation error resuming while active, got %v", err)
	}
}

func TestSingleActiveInvariantAcrossLifecycle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assertAtMostOneActive := func() {
		t.Helper()
		sessions, err := svc.ListSessions(ctx, 1)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		active := 0
		for _, s := range sessions {
			if s.Status == SessionActive {
				active++
			}
		}
		if active > 1 {
			t.Fatalf("%d active sessions", active)
		}
	}

	a, _ := svc.StartSession(ctx, 1, "a")
	assertAtMostOneActive()
	_, _ = svc.EndSession(ctx, 1, a.SessionID)
	assertAtMostOneActive()
	b, _ := svc.StartSession(ctx, 1, "b")
	assertAtMostOneActive()
	_, _ = svc.ResumeSession(ctx, 1, a.SessionID) // rejected: b active
	assertAtMostOneActive()
	_, _ = svc.EndSession(ctx, 1, b.SessionID)
	_, _ = svc.ResumeSession(ctx, 1, a.SessionID)
	assertAtMostOneActive()
}

func TestCreateIdea_ContentOrImagesRequired(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateIdea(ctx, 1, "  ", nil); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	// image-only idea is allowed
	idea, err := svc.CreateIdea(ctx, 1, "", []string{"data:image/png;base64,AAAA"})
	if err != nil {
		t.Fatalf("image-only idea: %v", err)
	}
	if len(idea.Images) != 1 {
		t.Fatalf("expected 1 image, got %d", len(idea.Images))
	}
}

func TestCreateIdea_OversizedImageRejected(t *testing.T) {
	svc := newTestService(t)
	big := make([]byte, MaxImageBytes+1)
	if _, err := svc.CreateIdea(context.Background(), 1, "x", []string{string(big)}); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateIdea_KeepsImagesWhenNoneSupplied(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	idea, err := svc.CreateIdea(ctx, 1, "note", []string{"img1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.UpdateIdea(ctx, 1, idea.IdeaID, "edited note", nil)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Content != "edited note" {
		t.Fatalf("content not updated: %q", updated.Content)
	}
	if len(updated.Images) != 1 || updated.Images[0] != "img1" {
		t.Fatalf("images clobbered: %v", updated.Images)
	}

	replaced, err := svc.UpdateIdea(ctx, 1, idea.IdeaID, "edited note", []string{"img2", "img3"})
	if err != nil {
		t.Fatalf("replace images: %v", err)
	}
	if len(replaced.Images) != 2 {
		t.Fatalf("expected replaced images, got %v", replaced.Images)
	}
}

func TestResolveBlocker(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	b, err := svc.CreateBlocker(ctx, 1, "X")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.Status != BlockerOpen || b.Solution != nil || b.ResolvedAt != nil {
		t.Fatalf("unexpected initial blocker state: %+v", b)
	}

	if _, err := svc.ResolveBlocker(ctx, 1, b.BlockerID, "  "); !IsValidation(err) {
		t.Fatalf("expected validation error for empty solution, got %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	resolved, err := svc.ResolveBlocker(ctx, 1, b.BlockerID, "Y")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Status != BlockerResolved {
		t.Fatalf("expected resolved, got %s", resolved.Status)
	}
	if resolved.Solution == nil || *resolved.Solution != "Y" {
		t.Fatalf("solution not stored")
	}
	if resolved.ResolvedAt == nil || resolved.ResolvedAt.Before(resolved.CreatedAt) {
		t.Fatalf("resolved_at missing or before created_at")
	}

	// resolving twice is rejected
	if _, err := svc.ResolveBlocker(ctx, 1, b.BlockerID, "Z"); !IsValidation(err) {
		t.Fatalf("expected validation error on double resolve, got %v", err)
	}
}

func TestOwnershipBoundary(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	sess, _ := svc.StartSession(ctx, 1, "private")
	if _, err := svc.EndSession(ctx, 2, sess.SessionID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign session, got %v", err)
	}
}
