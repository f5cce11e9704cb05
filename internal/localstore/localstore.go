// Package localstore is the file-backed Store for local-only use: one
// JSON blob per record kind under a data directory. A legacy ideas blob
// (a bare array of strings, from before ideas became full records) is
// migrated in place on first load, exactly once, without data loss.
package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vibeloghq/vibelog/internal/journal"
)

const (
	sessionsFile = "sessions.json"
	ideasFile    = "ideas.json"
	blockersFile = "blockers.json"
)

// Store keeps the collections in memory and persists each mutation to
// its blob. It implements journal.Store.
type Store struct {
	mu  sync.RWMutex
	dir string

	sessions []journal.Session
	ideas    []journal.Idea
	blockers []journal.Blocker
}

func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("localstore: %w", err)
	}
	s := &Store{dir: dir}

	if err := loadRecords(filepath.Join(dir, sessionsFile), &s.sessions); err != nil {
		return nil, err
	}
	if err := loadRecords(filepath.Join(dir, blockersFile), &s.blockers); err != nil {
		return nil, err
	}

	migrated, err := loadIdeas(filepath.Join(dir, ideasFile), &s.ideas)
	if err != nil {
		return nil, err
	}
	if migrated {
		// persist the migrated shape so the legacy path never runs again
		if err := s.persist(ideasFile, s.ideas); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// loadRecords reads a blob of records, skipping entries that fail to
// decode (corrupt rows or malformed timestamps) instead of aborting.
func loadRecords[T any](path string, out *[]T) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("localstore: read %s: %w", path, err)
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		log.Printf("localstore: corrupt blob %s, starting empty: %v", path, err)
		return nil
	}
	for i, raw := range raws {
		var rec T
		if err := json.Unmarshal(raw, &rec); err != nil {
			log.Printf("localstore: skipping record %d in %s: %v", i, path, err)
			continue
		}
		*out = append(*out, rec)
	}
	return nil
}

// loadIdeas handles both the current shape and the legacy bare-string
// array, converting each legacy string into a full record with a
// generated id and the current timestamp. Returns whether a migration
// happened.
func loadIdeas(path string, out *[]journal.Idea) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("localstore: read %s: %w", path, err)
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		log.Printf("localstore: corrupt blob %s, starting empty: %v", path, err)
		return false, nil
	}

	migrated := false
	for i, raw := range raws {
		var rec journal.Idea
		if err := json.Unmarshal(raw, &rec); err == nil && rec.IdeaID != "" {
			*out = append(*out, rec)
			continue
		}
		var legacy string
		if err := json.Unmarshal(raw, &legacy); err == nil {
			*out = append(*out, journal.Idea{
				IdeaID:    uuid.NewString(),
				Content:   legacy,
				CreatedAt: time.Now(),
			})
			migrated = true
			continue
		}
		log.Printf("localstore: skipping record %d in %s: unrecognized shape", i, path)
	}
	return migrated, nil
}

// persist writes a blob atomically: temp file then rename, so a failed
// write leaves the previous blob intact.
func (s *Store) persist(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (s *Store) CreateSession(_ context.Context, sess *journal.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append(s.sessions, *sess)
	return s.persist(sessionsFile, s.sessions)
}

func (s *Store) SaveSession(_ context.Context, sess *journal.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sessions {
		if s.sessions[i].SessionID == sess.SessionID && s.sessions[i].UserID == sess.UserID {
			s.sessions[i] = *sess
			return s.persist(sessionsFile, s.sessions)
		}
	}
	return journal.ErrNotFound
}

func (s *Store) SessionByID(_ context.Context, userID uint64, sessionID string) (*journal.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.sessions {
		if s.sessions[i].SessionID == sessionID && s.sessions[i].UserID == userID {
			out := s.sessions[i]
			return &out, nil
		}
	}
	return nil, journal.ErrNotFound
}

func (s *Store) ActiveSession(_ context.Context, userID uint64) (*journal.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.sessions {
		if s.sessions[i].UserID == userID && s.sessions[i].Status == journal.SessionActive {
			out := s.sessions[i]
			return &out, nil
		}
	}
	return nil, nil
}

func (s *Store) ListSessions(_ context.Context, userID uint64) ([]journal.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]journal.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			out = append(out, sess)
		}
	}
	return out, nil
}

func (s *Store) CreateIdea(_ context.Context, idea *journal.Idea) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ideas = append(s.ideas, *idea)
	return s.persist(ideasFile, s.ideas)
}

func (s *Store) SaveIdea(_ context.Context, idea *journal.Idea) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.ideas {
		if s.ideas[i].IdeaID == idea.IdeaID && s.ideas[i].UserID == idea.UserID {
			s.ideas[i] = *idea
			return s.persist(ideasFile, s.ideas)
		}
	}
	return journal.ErrNotFound
}

func (s *Store) IdeaByID(_ context.Context, userID uint64, ideaID string) (*journal.Idea, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.ideas {
		if s.ideas[i].IdeaID == ideaID && s.ideas[i].UserID == userID {
			out := s.ideas[i]
			return &out, nil
		}
	}
	return nil, journal.ErrNotFound
}

func (s *Store) ListIdeas(_ context.Context, userID uint64) ([]journal.Idea, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]journal.Idea, 0, len(s.ideas))
	for _, idea := range s.ideas {
		if idea.UserID == userID {
			out = append(out, idea)
		}
	}
	return out, nil
}

func (s *Store) CreateBlocker(_ context.Context, b *journal.Blocker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blockers = append(s.blockers, *b)
	return s.persist(blockersFile, s.blockers)
}

func (s *Store) SaveBlocker(_ context.Context, b *journal.Blocker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.blockers {
		if s.blockers[i].BlockerID == b.BlockerID && s.blockers[i].UserID == b.UserID {
			s.blockers[i] = *b
			return s.persist(blockersFile, s.blockers)
		}
	}
	return journal.ErrNotFound
}

func (s *Store) BlockerByID(_ context.Context, userID uint64, blockerID string) (*journal.Blocker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.blockers {
		if s.blockers[i].BlockerID == blockerID && s.blockers[i].UserID == userID {
			out := s.blockers[i]
			return &out, nil
		}
	}
	return nil, journal.ErrNotFound
}

func (s *Store) ListBlockers(_ context.Context, userID uint64) ([]journal.Blocker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]journal.Blocker, 0, len(s.blockers))
	for _, b := range s.blockers {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}
