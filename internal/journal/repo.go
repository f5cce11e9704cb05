package journal

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repo is the gorm-backed Store implementation.
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func mapErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (r *Repo) CreateSession(ctx context.Context, s *Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *Repo) SaveSession(ctx context.Context, s *Session) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *Repo) SessionByID(ctx context.Context, userID uint64, sessionID string) (*Session, error) {
	var s Session
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		First(&s).Error; err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}

func (r *Repo) ActiveSession(ctx context.Context, userID uint64) (*Session, error) {
	var s Session
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, SessionActive).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// ListSessions returns sessions newest-start first.
func (r *Repo) ListSessions(ctx context.Context, userID uint64) ([]Session, error) {
	var out []Session
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_time DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) CreateIdea(ctx context.Context, i *Idea) error {
	return r.db.WithContext(ctx).Create(i).Error
}

func (r *Repo) SaveIdea(ctx context.Context, i *Idea) error {
	return r.db.WithContext(ctx).Save(i).Error
}

func (r *Repo) IdeaByID(ctx context.Context, userID uint64, ideaID string) (*Idea, error) {
	var i Idea
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND idea_id = ?", userID, ideaID).
		First(&i).Error; err != nil {
		return nil, mapErr(err)
	}
	return &i, nil
}

func (r *Repo) ListIdeas(ctx context.Context, userID uint64) ([]Idea, error) {
	var out []Idea
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) CreateBlocker(ctx context.Context, b *Blocker) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *Repo) SaveBlocker(ctx context.Context, b *Blocker) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *Repo) BlockerByID(ctx context.Context, userID uint64, blockerID string) (*Blocker, error) {
	var b Blocker
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND blocker_id = ?", userID, blockerID).
		First(&b).Error; err != nil {
		return nil, mapErr(err)
	}
	return &b, nil
}

func (r *Repo) ListBlockers(ctx context.Context, userID uint64) ([]Blocker, error) {
	var out []Blocker
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
