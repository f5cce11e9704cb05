// Package timeline merges the three record collections into a
// date-grouped, filterable view and derives activity statistics. All
// functions are pure over already-fetched slices; source ordering is
// never trusted.
package timeline

import (
	"log"
	"sort"
	"strings"
	"time"

	"github.com/vibeloghq/vibelog/internal/journal"
	"github.com/vibeloghq/vibelog/internal/timer"
)

type Kind string

const (
	KindSession Kind = "session"
	KindIdea    Kind = "idea"
	KindBlocker Kind = "blocker"
)

// Item is one record on the timeline. OccurredAt is the session start
// instant or the idea/blocker creation instant; a resolved blocker still
// sits on its creation day.
type Item struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	Content    string    `json:"content"`
	OccurredAt time.Time `json:"occurred_at"`
	Images     []string  `json:"images,omitempty"`

	// session meta
	DurationSeconds int64  `json:"duration_seconds,omitempty"`
	Duration        string `json:"duration,omitempty"`

	// blocker meta
	Solution *string `json:"solution,omitempty"`
	Status   string  `json:"status,omitempty"`
}

type Group struct {
	DateKey string `json:"date_key"`
	Items   []Item `json:"items"`
}

// Aggregator buckets records into calendar days of a single location.
// One location is used everywhere (date keys, months, daily stats,
// histogram) so a record never lands on different days in different views.
type Aggregator struct {
	loc  *time.Location
	logf func(format string, args ...any)
}

func New(loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	return &Aggregator{loc: loc, logf: log.Printf}
}

// DateKey returns the "YYYY-MM-DD" calendar-day bucket for t.
func (a *Aggregator) DateKey(t time.Time) string {
	return t.In(a.loc).Format("2006-01-02")
}

// MonthKey returns the "YYYY-MM" bucket for t.
func (a *Aggregator) MonthKey(t time.Time) string {
	return t.In(a.loc).Format("2006-01")
}

// usable reports whether a record timestamp can be bucketed. Zero values
// come from malformed persisted timestamps; they are flagged and skipped
// rather than silently grouped under year 1.
func (a *Aggregator) usable(kind Kind, id string, t time.Time) bool {
	if t.IsZero() {
		a.logf("timeline: skipping %s id=%s: unusable timestamp", kind, id)
		return false
	}
	return true
}

// Build returns groups ordered by date key descending, items within a
// group by occurred-at descending. Sorting is stable, so unchanged input
// always produces identical output. Active sessions are excluded; they
// are presented separately, not as history.
func (a *Aggregator) Build(sessions []journal.Session, ideas []journal.Idea, blockers []journal.Blocker) []Group {
	buckets := make(map[string][]Item)
	add := func(key string, it Item) {
		buckets[key] = append(buckets[key], it)
	}

	for _, s := range sessions {
		if s.Status != journal.SessionCompleted {
			continue
		}
		if !a.usable(KindSession, s.SessionID, s.StartTime) {
			continue
		}
		secs := s.DurationSeconds()
		add(a.DateKey(s.StartTime), Item{
			ID:              s.SessionID,
			Kind:            KindSession,
			Content:         s.Goal,
			OccurredAt:      s.StartTime,
			DurationSeconds: secs,
			Duration:        timer.FormatHuman(secs),
		})
	}

	for _, i := range ideas {
		if !a.usable(KindIdea, i.IdeaID, i.CreatedAt) {
			continue
		}
		add(a.DateKey(i.CreatedAt), Item{
			ID:         i.IdeaID,
			Kind:       KindIdea,
			Content:    i.Content,
			OccurredAt: i.CreatedAt,
			Images:     i.Images,
		})
	}

	for _, b := range blockers {
		if !a.usable(KindBlocker, b.BlockerID, b.CreatedAt) {
			continue
		}
		add(a.DateKey(b.CreatedAt), Item{
			ID:         b.BlockerID,
			Kind:       KindBlocker,
			Content:    b.Problem,
			OccurredAt: b.CreatedAt,
			Solution:   b.Solution,
			Status:     string(b.Status),
		})
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	groups := make([]Group, 0, len(keys))
	for _, k := range keys {
		items := buckets[k]
		sort.SliceStable(items, func(x, y int) bool {
			return items[x].OccurredAt.After(items[y].OccurredAt)
		})
		groups = append(groups, Group{DateKey: k, Items: items})
	}
	return groups
}

// Filters compose by AND; the zero value is the identity.
type Filters struct {
	Type      Kind   // restrict to one kind; empty keeps all
	Month     string // "YYYY-MM" date-key prefix; empty keeps all
	HasImages bool   // keep only items with at least one image
}

func (f Filters) Active() bool {
	return f.Type != "" || f.Month != "" || f.HasImages
}

func (f Filters) keep(dateKey string, it Item) bool {
	if f.Type != "" && it.Kind != f.Type {
		return false
	}
	if f.Month != "" && !strings.HasPrefix(dateKey, f.Month) {
		return false
	}
	if f.HasImages && len(it.Images) == 0 {
		return false
	}
	return true
}

// Filter returns the subset of groups whose items pass all filters.
// Groups left empty are dropped. With no active filters the input is
// returned unchanged.
func (a *Aggregator) Filter(groups []Group, f Filters) []Group {
	if !f.Active() {
		return groups
	}
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		kept := make([]Item, 0, len(g.Items))
		for _, it := range g.Items {
			if f.keep(g.DateKey, it) {
				kept = append(kept, it)
			}
		}
		if len(kept) > 0 {
			out = append(out, Group{DateKey: g.DateKey, Items: kept})
		}
	}
	return out
}

// AvailableMonths lists every distinct month holding at least one
// completed session, idea, or blocker, newest first.
func (a *Aggregator) AvailableMonths(sessions []journal.Session, ideas []journal.Idea, blockers []journal.Blocker) []string {
	set := make(map[string]struct{})
	for _, s := range sessions {
		if s.Status == journal.SessionCompleted && !s.StartTime.IsZero() {
			set[a.MonthKey(s.StartTime)] = struct{}{}
		}
	}
	for _, i := range ideas {
		if !i.CreatedAt.IsZero() {
			set[a.MonthKey(i.CreatedAt)] = struct{}{}
		}
	}
	for _, b := range blockers {
		if !b.CreatedAt.IsZero() {
			set[a.MonthKey(b.CreatedAt)] = struct{}{}
		}
	}

	months := make([]string, 0, len(set))
	for m := range set {
		months = append(months, m)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	return months
}

type DailyStats struct {
	SessionCount       int   `json:"session_count"`
	TotalCodingSeconds int64 `json:"total_coding_seconds"`
	BlockersResolved   int   `json:"blockers_resolved"`
	BlockersCreated    int   `json:"blockers_created"`
}

// Stats for one calendar day. Sessions count toward the day they started.
func (a *Aggregator) DailyStats(sessions []journal.Session, blockers []journal.Blocker, day time.Time) DailyStats {
	key := a.DateKey(day)
	var out DailyStats
	for _, s := range sessions {
		if s.Status != journal.SessionCompleted || s.StartTime.IsZero() {
			continue
		}
		if a.DateKey(s.StartTime) == key {
			out.SessionCount++
			out.TotalCodingSeconds += s.DurationSeconds()
		}
	}
	for _, b := range blockers {
		if !b.CreatedAt.IsZero() && a.DateKey(b.CreatedAt) == key {
			out.BlockersCreated++
		}
		if b.ResolvedAt != nil && a.DateKey(*b.ResolvedAt) == key {
			out.BlockersResolved++
		}
	}
	return out
}

type HistogramDay struct {
	DateKey string `json:"date_key"`
	Count   int    `json:"count"`
	Level   int    `json:"level"`
}

// Level buckets a per-day session count into 5 display severities.
func Level(count int) int {
	switch {
	case count <= 0:
		return 0
	case count == 1:
		return 1
	case count == 2:
		return 2
	case count <= 4:
		return 3
	default:
		return 4
	}
}

// ActivityHistogram returns one entry per calendar day for the trailing
// windowDays ending at today inclusive, dense (zero-count days present).
func (a *Aggregator) ActivityHistogram(sessions []journal.Session, windowDays int, today time.Time) []HistogramDay {
	if windowDays <= 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, s := range sessions {
		if s.Status != journal.SessionCompleted || s.StartTime.IsZero() {
			continue
		}
		counts[a.DateKey(s.StartTime)]++
	}

	t := today.In(a.loc)
	end := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, a.loc)

	out := make([]HistogramDay, 0, windowDays)
	for i := windowDays - 1; i >= 0; i-- {
		day := end.AddDate(0, 0, -i)
		key := day.Format("2006-01-02")
		c := counts[key]
		out = append(out, HistogramDay{DateKey: key, Count: c, Level: Level(c)})
	}
	return out
}

type AllTimeStats struct {
	SessionCount       int   `json:"session_count"`
	TotalCodingSeconds int64 `json:"total_coding_seconds"`
	ActiveDays         int   `json:"active_days"`
	IdeaCount          int   `json:"idea_count"`
	BlockersResolved   int   `json:"blockers_resolved"`
	BlockersOpen       int   `json:"blockers_open"`
}

// AllTime aggregates totals over the whole record set.
func (a *Aggregator) AllTime(sessions []journal.Session, ideas []journal.Idea, blockers []journal.Blocker) AllTimeStats {
	out := AllTimeStats{IdeaCount: len(ideas)}
	for _, s := range sessions {
		if s.Status != journal.SessionCompleted {
			continue
		}
		out.SessionCount++
		out.TotalCodingSeconds += s.DurationSeconds()
	}
	out.ActiveDays = a.ActiveDayCount(sessions)
	for _, b := range blockers {
		if b.Status == journal.BlockerResolved {
			out.BlockersResolved++
		} else {
			out.BlockersOpen++
		}
	}
	return out
}

// ActiveDayCount is the number of distinct days with at least one
// completed session.
func (a *Aggregator) ActiveDayCount(sessions []journal.Session) int {
	days := make(map[string]struct{})
	for _, s := range sessions {
		if s.Status != journal.SessionCompleted || s.StartTime.IsZero() {
			continue
		}
		days[a.DateKey(s.StartTime)] = struct{}{}
	}
	return len(days)
}
