package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soyeahso/arena/internal/domain"
	"github.com/soyeahso/arena/internal/metrics"
)

// ValidationError reports bad input to a store operation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s", e.Message)
}

// DebateStore persists debate sessions and their append-only transcripts.
//
// Read operations never return errors to callers: failures are logged and
// converted to nil/empty results. Append converts all failure to a boolean.
// The debate must keep moving even when storage misbehaves.
type DebateStore struct {
	db *DB
}

// NewDebateStore creates a store using the given database.
func NewDebateStore(db *DB) *DebateStore {
	return &DebateStore{db: db}
}

// CreateSession inserts a new active session and returns its id.
// Returns *ValidationError when the topic is blank or fewer than two
// participants are given.
func (s *DebateStore) CreateSession(topic string, participants []string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", &ValidationError{Message: "topic cannot be empty"}
	}
	if len(participants) < 2 {
		return "", &ValidationError{Message: "at least 2 participants required"}
	}

	id := uuid.New().String()
	participantsJSON, err := json.Marshal(participants)
	if err != nil {
		return "", fmt.Errorf("encoding participants: %w", err)
	}
	metadataJSON, _ := json.Marshal(map[string]any{
		"participant_count": len(participants),
	})

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	_, err = s.db.sql.Exec(
		`INSERT INTO sessions (id, topic, participants, status, created_at, metadata)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, topic, string(participantsJSON), domain.StatusActive,
		time.Now().UTC().Format(time.DateTime), string(metadataJSON),
	)
	if err != nil {
		return "", fmt.Errorf("creating session: %w", err)
	}

	s.db.log.Info().Str("session", id).Str("topic", topic).Msg("created debate session")
	return id, nil
}

// Append records one transcript statement. It returns false when any of the
// key fields is empty or the write fails; it never propagates an error.
func (s *DebateStore) Append(sessionID, agent, typ string, content any) bool {
	if sessionID == "" || agent == "" || typ == "" {
		s.db.log.Warn().
			Str("session", sessionID).
			Str("agent", agent).
			Str("type", typ).
			Msg("rejecting statement with empty key field")
		return false
	}

	contentJSON := encodeContent(content)
	metadataJSON, _ := json.Marshal(map[string]any{
		"content_length": len(fmt.Sprint(content)),
	})

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	_, err := s.db.sql.Exec(
		`INSERT INTO statements (session_id, agent, type, content, timestamp, metadata)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, agent, typ, contentJSON,
		time.Now().UTC().Format(time.DateTime), string(metadataJSON),
	)
	if err != nil {
		s.db.log.Error().Err(err).Str("session", sessionID).Str("type", typ).Msg("failed to append statement")
		return false
	}

	metrics.StatementAppended(typ)
	s.db.log.Debug().Str("session", sessionID).Str("agent", agent).Str("type", typ).Msg("appended statement")
	return true
}

// encodeContent serializes statement content to JSON text. Maps and slices
// are stored as-is; anything else is wrapped as {"content": stringified}.
func encodeContent(content any) string {
	kind := reflect.ValueOf(content).Kind()
	if kind == reflect.Map || kind == reflect.Slice {
		if data, err := json.Marshal(content); err == nil {
			return string(data)
		}
	}
	data, _ := json.Marshal(map[string]any{"content": fmt.Sprint(content)})
	return string(data)
}

// GetSession returns the session with the given id, or nil when it does not
// exist or cannot be read.
func (s *DebateStore) GetSession(id string) *domain.Session {
	if id == "" {
		return nil
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	row := s.db.sql.QueryRow(
		`SELECT id, topic, participants, status, created_at, ended_at, metadata
		 FROM sessions WHERE id = ?`, id,
	)
	sess, err := scanSession(row)
	if err != nil {
		if err != sql.ErrNoRows {
			s.db.log.Error().Err(err).Str("session", id).Msg("failed to read session")
		}
		return nil
	}
	return sess
}

// History returns the session transcript in canonical order (timestamp
// ascending, insertion order breaking ties). A limit <= 0 means unbounded.
// Missing sessions and read errors both yield an empty result.
func (s *DebateStore) History(sessionID string, limit int) []domain.Statement {
	if sessionID == "" {
		return nil
	}

	query := `SELECT id, session_id, agent, type, content, timestamp, metadata
	          FROM statements WHERE session_id = ? ORDER BY timestamp ASC, id ASC`
	args := []any{sessionID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	return s.queryStatements(query, args...)
}

// Scores returns the session's score statements, most recent first.
func (s *DebateStore) Scores(sessionID string) []domain.Statement {
	if sessionID == "" {
		return nil
	}
	return s.queryStatements(
		`SELECT id, session_id, agent, type, content, timestamp, metadata
		 FROM statements WHERE session_id = ? AND type = ?
		 ORDER BY timestamp DESC, id DESC`,
		sessionID, domain.TypeScore,
	)
}

// EndSession marks an active session completed and stamps ended_at.
// Returns false when the session does not exist or was already completed;
// a completed session is never modified again.
func (s *DebateStore) EndSession(id string) bool {
	if id == "" {
		return false
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	res, err := s.db.sql.Exec(
		`UPDATE sessions SET status = ?, ended_at = ? WHERE id = ? AND status = ?`,
		domain.StatusCompleted, time.Now().UTC().Format(time.DateTime), id, domain.StatusActive,
	)
	if err != nil {
		s.db.log.Error().Err(err).Str("session", id).Msg("failed to end session")
		return false
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		s.db.log.Warn().Str("session", id).Msg("end session: not found or already completed")
		return false
	}

	s.db.log.Info().Str("session", id).Msg("session completed")
	return true
}

// RecentSessions lists sessions by creation time descending. A limit <= 0
// defaults to 10; status filters when non-empty.
func (s *DebateStore) RecentSessions(limit int, status string) []domain.Session {
	if limit <= 0 {
		limit = 10
	}

	query := `SELECT id, topic, participants, status, created_at, ended_at, metadata FROM sessions`
	args := []any{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	rows, err := s.db.sql.Query(query, args...)
	if err != nil {
		s.db.log.Error().Err(err).Msg("failed to list sessions")
		return nil
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			continue
		}
		sessions = append(sessions, *sess)
	}
	return sessions
}

// PurgeOlderThan deletes completed sessions (and all their statements) whose
// ended_at precedes now minus the given number of days. Statements and
// session rows are removed in one transaction so a session is never left
// half-deleted. Returns the number of sessions removed, 0 on error.
func (s *DebateStore) PurgeOlderThan(days int) int {
	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(time.DateTime)

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	tx, err := s.db.sql.Begin()
	if err != nil {
		s.db.log.Error().Err(err).Msg("purge: begin transaction failed")
		return 0
	}

	res, err := tx.Exec(
		`DELETE FROM statements WHERE session_id IN
		   (SELECT id FROM sessions WHERE status = ? AND ended_at < ?)`,
		domain.StatusCompleted, cutoff,
	)
	if err != nil {
		tx.Rollback()
		s.db.log.Error().Err(err).Msg("purge: deleting statements failed")
		return 0
	}
	statementsDeleted, _ := res.RowsAffected()

	res, err = tx.Exec(
		`DELETE FROM sessions WHERE status = ? AND ended_at < ?`,
		domain.StatusCompleted, cutoff,
	)
	if err != nil {
		tx.Rollback()
		s.db.log.Error().Err(err).Msg("purge: deleting sessions failed")
		return 0
	}
	sessionsDeleted, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		s.db.log.Error().Err(err).Msg("purge: commit failed")
		return 0
	}

	s.db.log.Info().
		Int64("sessions", sessionsDeleted).
		Int64("statements", statementsDeleted).
		Msg("purged old sessions")
	return int(sessionsDeleted)
}

// SessionStats is the derived report for one session.
type SessionStats struct {
	SessionID       string         `json:"sessionId"`
	Topic           string         `json:"topic"`
	Status          string         `json:"status"`
	CreatedAt       time.Time      `json:"createdAt"`
	EndedAt         *time.Time     `json:"endedAt,omitempty"`
	Participants    []string       `json:"participants"`
	TotalStatements int            `json:"totalStatements"`
	StatementTypes  map[string]int `json:"statementTypes"`
	AgentActivity   map[string]int `json:"agentActivity"`
	DurationMinutes float64        `json:"durationMinutes,omitempty"`
}

// Statistics combines session fields with statement counts by type and by
// agent, plus elapsed minutes for completed sessions. Returns nil when the
// session does not exist.
func (s *DebateStore) Statistics(sessionID string) *SessionStats {
	sess := s.GetSession(sessionID)
	if sess == nil {
		return nil
	}
	history := s.History(sessionID, 0)

	stats := &SessionStats{
		SessionID:       sess.ID,
		Topic:           sess.Topic,
		Status:          sess.Status,
		CreatedAt:       sess.CreatedAt,
		EndedAt:         sess.EndedAt,
		Participants:    sess.Participants,
		TotalStatements: len(history),
		StatementTypes:  make(map[string]int),
		AgentActivity:   make(map[string]int),
	}

	for _, st := range history {
		stats.StatementTypes[st.Type]++
		stats.AgentActivity[st.Agent]++
	}

	if sess.Completed() && sess.EndedAt != nil {
		stats.DurationMinutes = sess.EndedAt.Sub(sess.CreatedAt).Minutes()
	}

	return stats
}

// Health reports storage health. It never returns an error: internal
// failures produce an unhealthy status with a message.
type Health struct {
	Status           string `json:"status"`
	Error            string `json:"error,omitempty"`
	TotalSessions    int    `json:"totalSessions"`
	TotalStatements  int    `json:"totalStatements"`
	ActiveSessions   int    `json:"activeSessions"`
	StorageSizeBytes int64  `json:"storageSizeBytes"`
}

// Health checks the storage layer and returns aggregate counts.
func (s *DebateStore) Health() Health {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	h := Health{Status: "healthy"}

	counts := []struct {
		query string
		args  []any
		dst   *int
	}{
		{"SELECT COUNT(*) FROM sessions", nil, &h.TotalSessions},
		{"SELECT COUNT(*) FROM statements", nil, &h.TotalStatements},
		{"SELECT COUNT(*) FROM sessions WHERE status = ?", []any{domain.StatusActive}, &h.ActiveSessions},
	}
	for _, c := range counts {
		if err := s.db.sql.QueryRow(c.query, c.args...).Scan(c.dst); err != nil {
			s.db.log.Error().Err(err).Msg("health check failed")
			return Health{Status: "unhealthy", Error: err.Error()}
		}
	}

	h.StorageSizeBytes = s.db.sizeBytes()
	return h
}

// queryStatements runs a statement query under the storage gate and decodes
// the rows, dropping any that fail to scan.
func (s *DebateStore) queryStatements(query string, args ...any) []domain.Statement {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	rows, err := s.db.sql.Query(query, args...)
	if err != nil {
		s.db.log.Error().Err(err).Msg("failed to query statements")
		return nil
	}
	defer rows.Close()

	var statements []domain.Statement
	for rows.Next() {
		st, err := scanStatement(rows)
		if err != nil {
			continue
		}
		statements = append(statements, *st)
	}
	return statements
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var sess domain.Session
	var participantsJSON, createdAt string
	var endedAt, metadataJSON sql.NullString

	if err := row.Scan(
		&sess.ID, &sess.Topic, &participantsJSON, &sess.Status,
		&createdAt, &endedAt, &metadataJSON,
	); err != nil {
		return nil, err
	}

	_ = json.Unmarshal([]byte(participantsJSON), &sess.Participants)
	sess.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
	if endedAt.Valid {
		t, err := time.Parse(time.DateTime, endedAt.String)
		if err == nil {
			sess.EndedAt = &t
		}
	}
	if metadataJSON.Valid && metadataJSON.String != "" {
		_ = json.Unmarshal([]byte(metadataJSON.String), &sess.Metadata)
	}
	return &sess, nil
}

func scanStatement(row rowScanner) (*domain.Statement, error) {
	var st domain.Statement
	var contentJSON, timestamp string
	var metadataJSON sql.NullString

	if err := row.Scan(
		&st.ID, &st.SessionID, &st.Agent, &st.Type,
		&contentJSON, &timestamp, &metadataJSON,
	); err != nil {
		return nil, err
	}

	_ = json.Unmarshal([]byte(contentJSON), &st.Content)
	st.Timestamp, _ = time.Parse(time.DateTime, timestamp)
	if metadataJSON.Valid && metadataJSON.String != "" {
		_ = json.Unmarshal([]byte(metadataJSON.String), &st.Metadata)
	}
	return &st, nil
}
