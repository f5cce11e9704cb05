package report

import (
	"strings"
	"testing"
	"time"

	"github.com/vibeloghq/vibelog/internal/journal"
)

func ts(y int, mo time.Month, d, h, m int) time.Time {
	return time.Date(y, mo, d, h, m, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func completed(goal string, start, end time.Time) journal.Session {
	return journal.Session{
		SessionID: goal,
		Goal:      goal,
		StartTime: start,
		EndTime:   ptr(end),
		Status:    journal.SessionCompleted,
	}
}

func TestWindow(t *testing.T) {
	now := ts(2025, 6, 10, 15, 30)

	start, end := Window(ScopeWeekly, now, time.UTC)
	if !start.Equal(ts(2025, 6, 3, 0, 0)) {
		t.Fatalf("weekly start = %v", start)
	}
	if !end.Equal(now) {
		t.Fatalf("weekly end = %v, want now", end)
	}

	start, _ = Window(ScopeMonthly, now, time.UTC)
	if !start.Equal(ts(2025, 5, 10, 0, 0)) {
		t.Fatalf("monthly start = %v", start)
	}
}

func TestBuild_WindowRestriction(t *testing.T) {
	now := ts(2025, 6, 10, 15, 0)

	sessions := []journal.Session{
		completed("in-window", ts(2025, 6, 8, 9, 0), ts(2025, 6, 8, 10, 0)),
		completed("too-old", ts(2025, 5, 1, 9, 0), ts(2025, 5, 1, 10, 0)),
		{SessionID: "active", Goal: "wip", StartTime: ts(2025, 6, 9, 9, 0), Status: journal.SessionActive},
	}
	ideas := []journal.Idea{
		{IdeaID: "i1", CreatedAt: ts(2025, 6, 9, 9, 0)},
		{IdeaID: "i-old", CreatedAt: ts(2025, 4, 9, 9, 0)},
	}
	blockers := []journal.Blocker{
		{BlockerID: "b-res", CreatedAt: ts(2025, 6, 7, 9, 0), Status: journal.BlockerResolved,
			Solution: strPtr("fixed"), ResolvedAt: ptr(ts(2025, 6, 7, 10, 0))},
		{BlockerID: "b-open", CreatedAt: ts(2025, 6, 9, 9, 0), Status: journal.BlockerOpen},
	}

	sum := Build(ScopeWeekly, sessions, ideas, blockers, now, time.UTC)
	if sum.SessionCount != 1 || sum.TotalSeconds != 3600 {
		t.Fatalf("sessions = %d/%ds", sum.SessionCount, sum.TotalSeconds)
	}
	if sum.IdeaCount != 1 {
		t.Fatalf("ideas = %d", sum.IdeaCount)
	}
	if sum.BlockerCount != 2 || sum.ResolvedBlockers != 1 || sum.OpenBlockers != 1 {
		t.Fatalf("blockers = %d (%d/%d)", sum.BlockerCount, sum.ResolvedBlockers, sum.OpenBlockers)
	}
	if len(sum.Sessions) != 1 || sum.Sessions[0].Goal != "in-window" || sum.Sessions[0].Duration != "1h" {
		t.Fatalf("session lines = %+v", sum.Sessions)
	}

	monthly := Build(ScopeMonthly, sessions, ideas, blockers, now, time.UTC)
	if monthly.SessionCount != 1 {
		t.Fatalf("monthly sessions = %d (may 1 is outside a trailing month from jun 10)", monthly.SessionCount)
	}
}

func strPtr(s string) *string { return &s }

func TestBuild_SessionLineOrderIndependentOfInput(t *testing.T) {
	now := ts(2025, 6, 10, 15, 0)
	a := completed("monday work", ts(2025, 6, 9, 9, 0), ts(2025, 6, 9, 10, 0))
	b := completed("sunday work", ts(2025, 6, 8, 9, 0), ts(2025, 6, 8, 9, 30))
	c := completed("tuesday work", ts(2025, 6, 10, 9, 0), ts(2025, 6, 10, 9, 45))

	orders := [][]journal.Session{
		{a, b, c},
		{c, b, a},
		{b, c, a},
	}

	first := RenderMarkdown(Build(ScopeWeekly, orders[0], nil, nil, now, time.UTC))
	for i, sessions := range orders[1:] {
		got := RenderMarkdown(Build(ScopeWeekly, sessions, nil, nil, now, time.UTC))
		if got != first {
			t.Fatalf("input order %d changed rendered bytes:\n%s\nvs\n%s", i+1, got, first)
		}
	}

	sum := Build(ScopeWeekly, orders[1], nil, nil, now, time.UTC)
	wantGoals := []string{"sunday work", "monday work", "tuesday work"}
	for i, want := range wantGoals {
		if sum.Sessions[i].Goal != want {
			t.Fatalf("line %d = %q, want %q (chronological)", i, sum.Sessions[i].Goal, want)
		}
	}
}

func TestRenderMarkdown_Deterministic(t *testing.T) {
	sum := Summary{
		Scope:            ScopeWeekly,
		SessionCount:     2,
		TotalSeconds:     5400,
		IdeaCount:        3,
		BlockerCount:     2,
		ResolvedBlockers: 1,
		OpenBlockers:     1,
		Sessions: []SessionLine{
			{Date: "Jun 8", Goal: "fix bug", Duration: "1h"},
			{Date: "Jun 9", Goal: "write docs", Duration: "30m"},
		},
	}

	first := RenderMarkdown(sum)
	for i := 0; i < 20; i++ {
		if RenderMarkdown(sum) != first {
			t.Fatalf("render not byte-stable on call %d", i)
		}
	}

	if !strings.HasPrefix(first, "# VibeLog Weekly Report\n") {
		t.Fatalf("missing title: %q", first)
	}
	for _, want := range []string{
		"- Sessions: 2 (1h 30m total)",
		"- Ideas: 3",
		"- Blockers: 2 (1 resolved, 1 open)",
		"## Sessions",
		"- Jun 8 | fix bug (1h)",
		"- Jun 9 | write docs (30m)",
	} {
		if !strings.Contains(first, want) {
			t.Fatalf("missing %q in:\n%s", want, first)
		}
	}
}

func TestRenderMarkdown_OmitsEmptySessionList(t *testing.T) {
	out := RenderMarkdown(Summary{Scope: ScopeMonthly})
	if strings.Contains(out, "## Sessions") {
		t.Fatalf("empty session list should omit section:\n%s", out)
	}
	if !strings.HasPrefix(out, "# VibeLog Monthly Report\n") {
		t.Fatalf("wrong title:\n%s", out)
	}
}

func TestScenario_SessionDurationFormatting(t *testing.T) {
	// session ended 125s after start -> "2m" human, "2:05" raw
	s := completed("fix bug", ts(2025, 6, 10, 9, 0), ts(2025, 6, 10, 9, 2).Add(5*time.Second))
	sum := Build(ScopeWeekly, []journal.Session{s}, nil, nil, ts(2025, 6, 10, 12, 0), time.UTC)
	if sum.Sessions[0].Duration != "2m" {
		t.Fatalf("duration = %q, want 2m", sum.Sessions[0].Duration)
	}
}
