// Package export produces backup/share artifacts from the full record
// set: a Markdown document and a JSON dump that round-trips through
// Import without loss.
package export

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/vibeloghq/vibelog/internal/journal"
	"github.com/vibeloghq/vibelog/internal/timer"
)

const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Dump is the JSON export shape: a structural copy of the three
// collections with no transformation.
type Dump struct {
	ExportedAt time.Time         `json:"exported_at"`
	Sessions   []journal.Session `json:"sessions"`
	Blockers   []journal.Blocker `json:"blockers"`
	Ideas      []journal.Idea    `json:"ideas"`
}

func JSON(sessions []journal.Session, blockers []journal.Blocker, ideas []journal.Idea, exportedAt time.Time) ([]byte, error) {
	d := Dump{
		ExportedAt: exportedAt,
		Sessions:   sessions,
		Blockers:   blockers,
		Ideas:      ideas,
	}
	if d.Sessions == nil {
		d.Sessions = []journal.Session{}
	}
	if d.Blockers == nil {
		d.Blockers = []journal.Blocker{}
	}
	if d.Ideas == nil {
		d.Ideas = []journal.Idea{}
	}
	return json.MarshalIndent(d, "", "  ")
}

// Import parses a JSON dump back into collections; ids, field values and
// array order are preserved exactly as exported.
func Import(data []byte) (Dump, error) {
	var d Dump
	if err := json.Unmarshal(data, &d); err != nil {
		return Dump{}, fmt.Errorf("parse export: %w", err)
	}
	return d, nil
}

// Filename stamps the artifact with the export date.
func Filename(format string, now time.Time, loc *time.Location) string {
	ext := "md"
	if format == FormatJSON {
		ext = "json"
	}
	return fmt.Sprintf("vibelog-export-%s.%s", now.In(loc).Format("2006-01-02"), ext)
}

// Markdown renders the full journal as one document: overview stats,
// every completed session, resolved and open blockers, and all ideas.
func Markdown(sessions []journal.Session, blockers []journal.Blocker, ideas []journal.Idea, now time.Time, loc *time.Location) string {
	var completedCount int
	var totalSeconds int64
	for _, s := range sessions {
		if s.Status == journal.SessionCompleted {
			completedCount++
			totalSeconds += s.DurationSeconds()
		}
	}

	lines := []string{
		"# VibeLog Export",
		"",
		fmt.Sprintf("Exported %s", now.In(loc).Format("2006-01-02")),
		"",
		"## Overview",
		fmt.Sprintf("- Sessions: %d (%s total)", completedCount, timer.FormatHuman(totalSeconds)),
		fmt.Sprintf("- Ideas: %d", len(ideas)),
		fmt.Sprintf("- Blockers: %d", len(blockers)),
		"",
	}

	if completedCount > 0 {
		lines = append(lines, "## Sessions", "")
		for _, s := range sessions {
			if s.Status != journal.SessionCompleted {
				continue
			}
			lines = append(lines, fmt.Sprintf("- %s | %s (%s)",
				s.StartTime.In(loc).Format("2006-01-02"), s.Goal, timer.FormatHuman(s.DurationSeconds())))
		}
		lines = append(lines, "")
	}

	var resolved, open []journal.Blocker
	for _, b := range blockers {
		if b.Status == journal.BlockerResolved {
			resolved = append(resolved, b)
		} else {
			open = append(open, b)
		}
	}
	if len(resolved) > 0 {
		lines = append(lines, "## Resolved Blockers", "")
		for _, b := range resolved {
			sol := ""
			if b.Solution != nil {
				sol = *b.Solution
			}
			lines = append(lines, fmt.Sprintf("- %s (solved: %s)", b.Problem, sol))
		}
		lines = append(lines, "")
	}
	if len(open) > 0 {
		lines = append(lines, "## Open Blockers", "")
		for _, b := range open {
			lines = append(lines, fmt.Sprintf("- %s", b.Problem))
		}
		lines = append(lines, "")
	}

	if len(ideas) > 0 {
		lines = append(lines, "## Ideas", "")
		for _, i := range ideas {
			label := i.Content
			if label == "" {
				label = fmt.Sprintf("(%d images)", len(i.Images))
			}
			lines = append(lines, fmt.Sprintf("- %s | %s",
				i.CreatedAt.In(loc).Format("2006-01-02"), label))
		}
	}

	return strings.TrimRight(strings.Join(lines, "\n"), "\n") + "\n"
}
