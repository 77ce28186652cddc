// Package domain contains the core types shared across the arena:
// sessions, transcript statements, and participant roles.
package domain

import "time"

// Session status values. A session transitions active → completed exactly once.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Session is one complete debate run, owning an ordered transcript.
type Session struct {
	ID           string         `json:"id"`
	Topic        string         `json:"topic"`
	Participants []string       `json:"participants"`
	Status       string         `json:"status"`
	CreatedAt    time.Time      `json:"createdAt"`
	EndedAt      *time.Time     `json:"endedAt,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Completed reports whether the session has ended.
func (s *Session) Completed() bool {
	return s.Status == StatusCompleted
}

// Statement type tags. These are the only values the engine writes.
const (
	TypeOpening      = "opening"
	TypeRebuttal1    = "rebuttal_1"
	TypeRebuttal2    = "rebuttal_2"
	TypeQuestion     = "question"
	TypeAnswer       = "answer"
	TypeFollowup     = "followup"
	TypeClosing      = "closing"
	TypeScore        = "score"
	TypeAnnouncement = "announcement"
	TypeResult       = "result"
	TypeScoreDetail  = "score_detail"
	TypeKeyPoints    = "key_points"
)

// RebuttalType returns the statement type tag for a rebuttal round.
func RebuttalType(round int) string {
	if round == 2 {
		return TypeRebuttal2
	}
	return TypeRebuttal1
}

// Statement is one immutable, timestamped transcript entry. Statements are
// append-only; they are never updated, and deleted only by retention cleanup.
type Statement struct {
	ID        int64          `json:"id"`
	SessionID string         `json:"sessionId"`
	Agent     string         `json:"agent"`
	Type      string         `json:"type"`
	Content   map[string]any `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Text returns the flat text of the statement's content payload, or ""
// when the payload carries no text (e.g. score breakdowns).
func (s *Statement) Text() string {
	if s.Content == nil {
		return ""
	}
	if text, ok := s.Content["content"].(string); ok {
		return text
	}
	return ""
}
