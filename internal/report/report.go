// Package report derives textual summaries from the record collections:
// a deterministic Markdown report over a trailing window, and a
// randomized short-form social draft.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vibeloghq/vibelog/internal/journal"
	"github.com/vibeloghq/vibelog/internal/timer"
)

type Scope string

const (
	ScopeWeekly  Scope = "weekly"
	ScopeMonthly Scope = "monthly"
)

// Window returns [start, now] for a scope: weekly is the trailing 7
// days, monthly the trailing calendar month, start normalized to the
// beginning of its day in loc. now itself is included.
func Window(scope Scope, now time.Time, loc *time.Location) (time.Time, time.Time) {
	n := now.In(loc)
	var start time.Time
	if scope == ScopeMonthly {
		start = n.AddDate(0, -1, 0)
	} else {
		start = n.AddDate(0, 0, -7)
	}
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	return start, n
}

type SessionLine struct {
	Date     string `json:"date"`
	Goal     string `json:"goal"`
	Duration string `json:"duration"`
}

type Summary struct {
	Scope            Scope         `json:"scope"`
	SessionCount     int           `json:"session_count"`
	TotalSeconds     int64         `json:"total_seconds"`
	IdeaCount        int           `json:"idea_count"`
	BlockerCount     int           `json:"blocker_count"`
	ResolvedBlockers int           `json:"resolved_blockers"`
	OpenBlockers     int           `json:"open_blockers"`
	Sessions         []SessionLine `json:"sessions"`
}

func within(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// Build restricts each collection to the scope window (sessions by start
// instant, ideas and blockers by creation instant) and computes the
// summary counts. Only completed sessions count. Session lines are
// ordered chronologically here, never inherited from the store.
func Build(scope Scope, sessions []journal.Session, ideas []journal.Idea, blockers []journal.Blocker, now time.Time, loc *time.Location) Summary {
	start, end := Window(scope, now, loc)

	sum := Summary{Scope: scope, Sessions: []SessionLine{}}
	var inWindow []journal.Session
	for _, s := range sessions {
		if s.Status != journal.SessionCompleted || !within(s.StartTime, start, end) {
			continue
		}
		inWindow = append(inWindow, s)
	}
	sort.SliceStable(inWindow, func(i, j int) bool {
		return inWindow[i].StartTime.Before(inWindow[j].StartTime)
	})
	for _, s := range inWindow {
		secs := s.DurationSeconds()
		sum.SessionCount++
		sum.TotalSeconds += secs
		sum.Sessions = append(sum.Sessions, SessionLine{
			Date:     s.StartTime.In(loc).Format("Jan 2"),
			Goal:     s.Goal,
			Duration: timer.FormatHuman(secs),
		})
	}
	for _, i := range ideas {
		if within(i.CreatedAt, start, end) {
			sum.IdeaCount++
		}
	}
	for _, b := range blockers {
		if !within(b.CreatedAt, start, end) {
			continue
		}
		sum.BlockerCount++
		if b.Status == journal.BlockerResolved {
			sum.ResolvedBlockers++
		} else {
			sum.OpenBlockers++
		}
	}
	return sum
}

func scopeTitle(scope Scope) string {
	if scope == ScopeMonthly {
		return "Monthly"
	}
	return "Weekly"
}

// RenderMarkdown produces a byte-stable text block: title, overview
// counts, then the session list when non-empty. Identical summaries
// render identical bytes.
func RenderMarkdown(sum Summary) string {
	lines := []string{
		fmt.Sprintf("# VibeLog %s Report", scopeTitle(sum.Scope)),
		"",
		"## Overview",
		fmt.Sprintf("- Sessions: %d (%s total)", sum.SessionCount, timer.FormatHuman(sum.TotalSeconds)),
		fmt.Sprintf("- Ideas: %d", sum.IdeaCount),
		fmt.Sprintf("- Blockers: %d (%d resolved, %d open)", sum.BlockerCount, sum.ResolvedBlockers, sum.OpenBlockers),
		"",
	}
	if len(sum.Sessions) > 0 {
		lines = append(lines, "## Sessions", "")
		for _, s := range sum.Sessions {
			lines = append(lines, fmt.Sprintf("- %s | %s (%s)", s.Date, s.Goal, s.Duration))
		}
	}
	return strings.Join(lines, "\n")
}
