package export

import (
	"context"
	"fmt"
	"time"

	"github.com/vibeloghq/vibelog/internal/journal"
)

// Generator fetches a user's collections and renders an export artifact.
// Shared by the synchronous download path and the async worker.
type Generator struct {
	store journal.Store
	loc   *time.Location
}

func NewGenerator(store journal.Store, loc *time.Location) *Generator {
	if loc == nil {
		loc = time.Local
	}
	return &Generator{store: store, loc: loc}
}

func (g *Generator) Generate(ctx context.Context, userID uint64, format string) (string, error) {
	sessions, err := g.store.ListSessions(ctx, userID)
	if err != nil {
		return "", err
	}
	blockers, err := g.store.ListBlockers(ctx, userID)
	if err != nil {
		return "", err
	}
	ideas, err := g.store.ListIdeas(ctx, userID)
	if err != nil {
		return "", err
	}

	switch format {
	case FormatJSON:
		b, err := JSON(sessions, blockers, ideas, time.Now())
		if err != nil {
			return "", err
		}
		return string(b), nil
	case FormatMarkdown:
		return Markdown(sessions, blockers, ideas, time.Now(), g.loc), nil
	default:
		return "", fmt.Errorf("unknown export format %q", format)
	}
}
