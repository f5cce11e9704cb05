package journal

import "context"

// Store persists the three record collections, scoped to a user.
// Implementations: the gorm Repo (hosted/sqlite backend) and the
// file-backed localstore. Writes are atomic-or-failed; List* ordering is
// advisory only, aggregation re-sorts.
type Store interface {
	CreateSession(ctx context.Context, s *Session) error
	SaveSession(ctx context.Context, s *Session) error
	SessionByID(ctx context.Context, userID uint64, sessionID string) (*Session, error)
	// ActiveSession returns (nil, nil) when the user has no active session.
	ActiveSession(ctx context.Context, userID uint64) (*Session, error)
	ListSessions(ctx context.Context, userID uint64) ([]Session, error)

	CreateIdea(ctx context.Context, i *Idea) error
	SaveIdea(ctx context.Context, i *Idea) error
	IdeaByID(ctx context.Context, userID uint64, ideaID string) (*Idea, error)
	ListIdeas(ctx context.Context, userID uint64) ([]Idea, error)

	CreateBlocker(ctx context.Context, b *Blocker) error
	SaveBlocker(ctx context.Context, b *Blocker) error
	BlockerByID(ctx context.Context, userID uint64, blockerID string) (*Blocker, error)
	ListBlockers(ctx context.Context, userID uint64) ([]Blocker, error)
}
