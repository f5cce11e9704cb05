package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/vibeloghq/vibelog/internal/journal"
)

func ts(y int, mo time.Month, d, h, m int) time.Time {
	return time.Date(y, mo, d, h, m, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }
func strPtr(s string) *string    { return &s }

func sampleData() ([]journal.Session, []journal.Blocker, []journal.Idea) {
	sessions := []journal.Session{
		{
			SessionID: "s-1", UserID: 1, Goal: "fix bug",
			StartTime: ts(2025, 6, 10, 9, 0), EndTime: ptr(ts(2025, 6, 10, 10, 30)),
			Status: journal.SessionCompleted,
		},
		{
			SessionID: "s-2", UserID: 1, Goal: "still going",
			StartTime: ts(2025, 6, 11, 9, 0), Status: journal.SessionActive,
		},
	}
	blockers := []journal.Blocker{
		{
			BlockerID: "b-1", UserID: 1, Problem: "flaky test",
			Solution: strPtr("pin the seed"), Status: journal.BlockerResolved,
			CreatedAt: ts(2025, 6, 9, 9, 0), ResolvedAt: ptr(ts(2025, 6, 9, 11, 0)),
		},
		{
			BlockerID: "b-2", UserID: 1, Problem: "mystery crash",
			Status: journal.BlockerOpen, CreatedAt: ts(2025, 6, 10, 9, 0),
		},
	}
	ideas := []journal.Idea{
		{IdeaID: "i-1", UserID: 1, Content: "ship it", CreatedAt: ts(2025, 6, 8, 9, 0)},
		{IdeaID: "i-2", UserID: 1, Images: journal.ImageList{"img"}, CreatedAt: ts(2025, 6, 9, 9, 0)},
	}
	return sessions, blockers, ideas
}

func TestJSONRoundTrip(t *testing.T) {
	sessions, blockers, ideas := sampleData()
	exportedAt := ts(2025, 6, 12, 8, 0)

	first, err := JSON(sessions, blockers, ideas, exportedAt)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	dump, err := Import(first)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(dump.Sessions) != 2 || len(dump.Blockers) != 2 || len(dump.Ideas) != 2 {
		t.Fatalf("collection sizes changed: %d/%d/%d", len(dump.Sessions), len(dump.Blockers), len(dump.Ideas))
	}
	if dump.Sessions[0].SessionID != "s-1" || dump.Ideas[1].IdeaID != "i-2" {
		t.Fatalf("ids or order changed")
	}
	if dump.Blockers[0].Solution == nil || *dump.Blockers[0].Solution != "pin the seed" {
		t.Fatalf("solution lost in round trip")
	}

	// exporting the imported collections is byte-identical
	second, err := JSON(dump.Sessions, dump.Blockers, dump.Ideas, dump.ExportedAt)
	if err != nil {
		t.Fatalf("re-export: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("round trip not byte-equal:\n%s\n---\n%s", first, second)
	}
}

func TestImportRejectsCorruptBlob(t *testing.T) {
	if _, err := Import([]byte("{not json")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestMarkdownDocument(t *testing.T) {
	sessions, blockers, ideas := sampleData()
	out := Markdown(sessions, blockers, ideas, ts(2025, 6, 12, 8, 0), time.UTC)

	for _, want := range []string{
		"# VibeLog Export",
		"Exported 2025-06-12",
		"- Sessions: 1 (1h 30m total)", // active session excluded from count
		"- Ideas: 2",
		"- Blockers: 2",
		"## Sessions",
		"- 2025-06-10 | fix bug (1h 30m)",
		"## Resolved Blockers",
		"- flaky test (solved: pin the seed)",
		"## Open Blockers",
		"- mystery crash",
		"## Ideas",
		"- 2025-06-08 | ship it",
		"- 2025-06-09 | (1 images)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "still going") {
		t.Fatalf("active session leaked into session list")
	}
}

func TestFilename(t *testing.T) {
	now := ts(2025, 6, 12, 8, 0)
	if got := Filename(FormatMarkdown, now, time.UTC); got != "vibelog-export-2025-06-12.md" {
		t.Fatalf("filename = %q", got)
	}
	if got := Filename(FormatJSON, now, time.UTC); got != "vibelog-export-2025-06-12.json" {
		t.Fatalf("filename = %q", got)
	}
}
