package journal

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

type BlockerStatus string

const (
	BlockerOpen     BlockerStatus = "open"
	BlockerResolved BlockerStatus = "resolved"
)

// Session is a timed block of work with a stated goal.
// end_time is set iff status is completed.
type Session struct {
	ID        uint64        `gorm:"primaryKey;autoIncrement" json:"-"`
	SessionID string        `gorm:"type:varchar(36);uniqueIndex;not null" json:"id"`
	UserID    uint64        `gorm:"index;not null" json:"-"`
	Goal      string        `gorm:"type:text;not null" json:"goal"`
	StartTime time.Time     `gorm:"index;not null" json:"start_time"`
	EndTime   *time.Time    `json:"end_time"`
	Status    SessionStatus `gorm:"type:varchar(16);index;not null" json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (Session) TableName() string { return "sessions" }

// DurationSeconds is end - start in whole seconds; 0 while still active.
func (s *Session) DurationSeconds() int64 {
	if s.EndTime == nil {
		return 0
	}
	d := s.EndTime.Sub(s.StartTime) / time.Second
	if d < 0 {
		return 0
	}
	return int64(d)
}

// ImageList is an ordered set of embedded image payloads (data URLs),
// stored as a JSON text column.
type ImageList []string

func (l ImageList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *ImageList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported image list source %T", src)
	}
}

// Idea is an untimed note; content and images are never both empty.
type Idea struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	IdeaID    string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"id"`
	UserID    uint64    `gorm:"index;not null" json:"-"`
	Content   string    `gorm:"type:text" json:"content"`
	Images    ImageList `gorm:"type:text" json:"images,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Idea) TableName() string { return "ideas" }

// Blocker is a tracked problem, open until a solution is recorded.
// resolved_at and solution are set together, exactly once.
type Blocker struct {
	ID         uint64        `gorm:"primaryKey;autoIncrement" json:"-"`
	BlockerID  string        `gorm:"type:varchar(36);uniqueIndex;not null" json:"id"`
	UserID     uint64        `gorm:"index;not null" json:"-"`
	Problem    string        `gorm:"type:text;not null" json:"problem"`
	Solution   *string       `gorm:"type:text" json:"solution"`
	Status     BlockerStatus `gorm:"type:varchar(16);index;not null" json:"status"`
	CreatedAt  time.Time     `gorm:"index" json:"created_at"`
	ResolvedAt *time.Time    `json:"resolved_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

func (Blocker) TableName() string { return "blockers" }
