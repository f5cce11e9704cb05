package report

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/vibeloghq/vibelog/internal/timeline"
	"github.com/vibeloghq/vibelog/internal/timer"
)

// Template variation is confined to the title and the closing thought;
// the stats lines between them are deterministic so the interpolated
// numbers always appear verbatim.
var socialTitles = []string{
	"Another day of shipping 🚀",
	"Today's coding log 📟",
	"Progress over perfection 🛠️",
	"Logged off for today ✅",
}

var socialClosings = []string{
	"Small steps, every day.",
	"Back at it tomorrow.",
	"Consistency beats intensity.",
	"One commit at a time.",
}

// Pick chooses an index in [0, n). The default draws from math/rand;
// tests supply a fixed picker.
type Pick func(n int) int

func defaultPick(n int) int { return rand.IntN(n) }

// RenderSocialDraft builds a short-form post from today's numbers and
// the all-time totals. pick may be nil.
func RenderSocialDraft(daily timeline.DailyStats, allTime timeline.AllTimeStats, pick Pick) string {
	if pick == nil {
		pick = defaultPick
	}

	lines := []string{
		socialTitles[pick(len(socialTitles))],
		"",
		fmt.Sprintf("Today: %d sessions, %s of focused coding", daily.SessionCount, timer.FormatHuman(daily.TotalCodingSeconds)),
	}
	if daily.BlockersResolved > 0 {
		lines = append(lines, fmt.Sprintf("Blockers squashed: %d", daily.BlockersResolved))
	}
	lines = append(lines,
		fmt.Sprintf("All time: %d sessions across %d active days", allTime.SessionCount, allTime.ActiveDays),
		"",
		socialClosings[pick(len(socialClosings))],
		"",
		"#buildinpublic #coding",
	)
	return strings.Join(lines, "\n")
}
