package journal

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxImageBytes is the per-image payload ceiling enforced at ingestion.
const MaxImageBytes = 5 * 1024 * 1024

// Service owns every record mutation. State changes only happen through
// these named operations so the lifecycle invariants stay in one place.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// StartSession creates a new active session. The single-active-session
// invariant is an optimistic pre-check: two near-simultaneous starts
// against a remote store can both pass it. Accepted race, not solved here.
func (s *Service) StartSession(ctx context.Context, userID uint64, goal string) (*Session, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, &ValidationError{Field: "goal", Reason: "must not be empty"}
	}

	active, err := s.store.ActiveSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, &ValidationError{Field: "session", Reason: "another session is already active"}
	}

	sess := &Session{
		SessionID: uuid.NewString(),
		UserID:    userID,
		Goal:      goal,
		StartTime: s.now(),
		Status:    SessionActive,
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// EndSession completes an active session, setting its end instant.
func (s *Service) EndSession(ctx context.Context, userID uint64, sessionID string) (*Session, error) {
	sess, err := s.store.SessionByID(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != SessionActive {
		return nil, &ValidationError{Field: "session", Reason: "not active"}
	}

	end := s.now()
	if end.Before(sess.StartTime) {
		end = sess.StartTime
	}
	sess.EndTime = &end
	sess.Status = SessionCompleted
	if err := s.store.SaveSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// ResumeSession re-activates a completed session in place, clearing its
// end instant. Rejected while any other session is active.
func (s *Service) ResumeSession(ctx context.Context, userID uint64, sessionID string) (*Session, error) {
	active, err := s.store.ActiveSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, &ValidationError{Field: "session", Reason: "another session is already active"}
	}

	sess, err := s.store.SessionByID(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != SessionCompleted {
		return nil, &ValidationError{Field: "session", Reason: "not completed"}
	}

	sess.EndTime = nil
	sess.Status = SessionActive
	if err := s.store.SaveSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// EditSessionGoal updates the goal text; allowed at any status.
func (s *Service) EditSessionGoal(ctx context.Context, userID uint64, sessionID, goal string) (*Session, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, &ValidationError{Field: "goal", Reason: "must not be empty"}
	}
	sess, err := s.store.SessionByID(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	sess.Goal = goal
	if err := s.store.SaveSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Service) ActiveSession(ctx context.Context, userID uint64) (*Session, error) {
	return s.store.ActiveSession(ctx, userID)
}

func (s *Service) ListSessions(ctx context.Context, userID uint64) ([]Session, error) {
	return s.store.ListSessions(ctx, userID)
}

func validateImages(images []string) error {
	for _, img := range images {
		if len(img) > MaxImageBytes {
			return &ValidationError{Field: "images", Reason: "image exceeds size limit"}
		}
	}
	return nil
}

// CreateIdea records a note. Content may be empty only when at least one
// image is attached.
func (s *Service) CreateIdea(ctx context.Context, userID uint64, content string, images []string) (*Idea, error) {
	content = strings.TrimSpace(content)
	if content == "" && len(images) == 0 {
		return nil, &ValidationError{Field: "content", Reason: "content and images must not both be empty"}
	}
	if err := validateImages(images); err != nil {
		return nil, err
	}

	idea := &Idea{
		IdeaID:    uuid.NewString(),
		UserID:    userID,
		Content:   content,
		Images:    images,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateIdea(ctx, idea); err != nil {
		return nil, err
	}
	return idea, nil
}

// UpdateIdea replaces content and, when images are supplied, the image set.
// An empty images argument keeps the existing attachments.
func (s *Service) UpdateIdea(ctx context.Context, userID uint64, ideaID, content string, images []string) (*Idea, error) {
	if err := validateImages(images); err != nil {
		return nil, err
	}
	idea, err := s.store.IdeaByID(ctx, userID, ideaID)
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	newImages := idea.Images
	if len(images) > 0 {
		newImages = images
	}
	if content == "" && len(newImages) == 0 {
		return nil, &ValidationError{Field: "content", Reason: "content and images must not both be empty"}
	}

	idea.Content = content
	idea.Images = newImages
	if err := s.store.SaveIdea(ctx, idea); err != nil {
		return nil, err
	}
	return idea, nil
}

func (s *Service) ListIdeas(ctx context.Context, userID uint64) ([]Idea, error) {
	return s.store.ListIdeas(ctx, userID)
}

// CreateBlocker records an open problem.
func (s *Service) CreateBlocker(ctx context.Context, userID uint64, problem string) (*Blocker, error) {
	problem = strings.TrimSpace(problem)
	if problem == "" {
		return nil, &ValidationError{Field: "problem", Reason: "must not be empty"}
	}

	b := &Blocker{
		BlockerID: uuid.NewString(),
		UserID:    userID,
		Problem:   problem,
		Status:    BlockerOpen,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateBlocker(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// ResolveBlocker transitions open -> resolved exactly once, recording the
// solution and resolution instant together.
func (s *Service) ResolveBlocker(ctx context.Context, userID uint64, blockerID, solution string) (*Blocker, error) {
	solution = strings.TrimSpace(solution)
	if solution == "" {
		return nil, &ValidationError{Field: "solution", Reason: "must not be empty"}
	}
	b, err := s.store.BlockerByID(ctx, userID, blockerID)
	if err != nil {
		return nil, err
	}
	if b.Status != BlockerOpen {
		return nil, &ValidationError{Field: "blocker", Reason: "already resolved"}
	}

	resolvedAt := s.now()
	if resolvedAt.Before(b.CreatedAt) {
		resolvedAt = b.CreatedAt
	}
	b.Solution = &solution
	b.Status = BlockerResolved
	b.ResolvedAt = &resolvedAt
	if err := s.store.SaveBlocker(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// EditBlockerProblem updates the problem text; allowed at any status.
func (s *Service) EditBlockerProblem(ctx context.Context, userID uint64, blockerID, problem string) (*Blocker, error) {
	problem = strings.TrimSpace(problem)
	if problem == "" {
		return nil, &ValidationError{Field: "problem", Reason: "must not be empty"}
	}
	b, err := s.store.BlockerByID(ctx, userID, blockerID)
	if err != nil {
		return nil, err
	}
	b.Problem = problem
	if err := s.store.SaveBlocker(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) ListBlockers(ctx context.Context, userID uint64) ([]Blocker, error) {
	return s.store.ListBlockers(ctx, userID)
}
