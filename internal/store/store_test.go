package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/arena/internal/domain"
	"github.com/soyeahso/arena/internal/logging"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	log := logging.New(nil, "silent")
	db, err := Open(":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testStore(t *testing.T) *DebateStore {
	t.Helper()
	return NewDebateStore(testDB(t))
}

// --- DB/Migration tests ---

func TestOpen_InMemory(t *testing.T) {
	db := testDB(t)
	assert.NotNil(t, db)
	assert.NotNil(t, db.SQL())
}

func TestMigrations_Applied(t *testing.T) {
	db := testDB(t)

	var count int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), count)
}

func TestMigrations_Idempotent(t *testing.T) {
	db := testDB(t)

	err := db.migrate()
	require.NoError(t, err)

	var count int
	err = db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), count)
}

func TestSchema_TablesExist(t *testing.T) {
	db := testDB(t)

	for _, table := range []string{"sessions", "statements"} {
		var name string
		err := db.sql.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

// --- Session tests ---

func TestCreateSession(t *testing.T) {
	s := testStore(t)

	id, err := s.CreateSession("Should X?", []string{"Alice", "Bob"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	sess := s.GetSession(id)
	require.NotNil(t, sess)
	assert.Equal(t, domain.StatusActive, sess.Status)
	assert.Equal(t, "Should X?", sess.Topic)
	assert.Equal(t, []string{"Alice", "Bob"}, sess.Participants)
	assert.Nil(t, sess.EndedAt)
	assert.EqualValues(t, 2, sess.Metadata["participant_count"])
}

func TestCreateSession_EmptyTopic(t *testing.T) {
	s := testStore(t)

	for _, topic := range []string{"", "   ", "\t\n"} {
		_, err := s.CreateSession(topic, []string{"Alice", "Bob"})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "topic %q should be rejected", topic)
	}
}

func TestCreateSession_TooFewParticipants(t *testing.T) {
	s := testStore(t)

	_, err := s.CreateSession("topic", []string{"only_one"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = s.CreateSession("topic", nil)
	require.ErrorAs(t, err, &verr)
}

func TestGetSession_NotFound(t *testing.T) {
	s := testStore(t)
	assert.Nil(t, s.GetSession("nonexistent"))
	assert.Nil(t, s.GetSession(""))
}

func TestEndSession(t *testing.T) {
	s := testStore(t)
	id, err := s.CreateSession("topic", []string{"Alice", "Bob"})
	require.NoError(t, err)

	assert.True(t, s.EndSession(id))

	sess := s.GetSession(id)
	require.NotNil(t, sess)
	assert.Equal(t, domain.StatusCompleted, sess.Status)
	require.NotNil(t, sess.EndedAt)
}

func TestEndSession_Idempotent(t *testing.T) {
	s := testStore(t)
	id, err := s.CreateSession("topic", []string{"Alice", "Bob"})
	require.NoError(t, err)

	require.True(t, s.EndSession(id))
	first := s.GetSession(id)
	require.NotNil(t, first.EndedAt)

	// Second end is rejected and leaves the row untouched.
	assert.False(t, s.EndSession(id))
	second := s.GetSession(id)
	assert.Equal(t, domain.StatusCompleted, second.Status)
	assert.Equal(t, *first.EndedAt, *second.EndedAt)
}

func TestEndSession_Missing(t *testing.T) {
	s := testStore(t)
	assert.False(t, s.EndSession("nonexistent"))
	assert.False(t, s.EndSession(""))
}

// --- Statement tests ---

func TestAppend_RoundTrip(t *testing.T) {
	s := testStore(t)
	id, err := s.CreateSession("Should X?", []string{"Alice", "Bob"})
	require.NoError(t, err)

	require.True(t, s.Append(id, "Alice", domain.TypeOpening, "Hello"))

	history := s.History(id, 0)
	require.Len(t, history, 1)
	assert.Equal(t, "Alice", history[0].Agent)
	assert.Equal(t, domain.TypeOpening, history[0].Type)
	assert.Equal(t, "Hello", history[0].Text())
	assert.Equal(t, id, history[0].SessionID)
}

func TestAppend_StructuredContent(t *testing.T) {
	s := testStore(t)
	id, err := s.CreateSession("topic", []string{"Alice", "Bob"})
	require.NoError(t, err)

	payload := map[string]any{
		"content": "my rebuttal",
		"role":    "Pro",
		"nested":  map[string]any{"round": float64(2)},
	}
	require.True(t, s.Append(id, "Alice", domain.TypeRebuttal2, payload))

	history := s.History(id, 0)
	require.Len(t, history, 1)
	assert.Equal(t, payload, history[0].Content)
}

func TestAppend_EmptyFields(t *testing.T) {
	s := testStore(t)
	id, err := s.CreateSession("topic", []string{"Alice", "Bob"})
	require.NoError(t, err)

	assert.False(t, s.Append("", "Alice", domain.TypeOpening, "x"))
	assert.False(t, s.Append(id, "", domain.TypeOpening, "x"))
	assert.False(t, s.Append(id, "Alice", "", "x"))
	assert.Empty(t, s.History(id, 0), "no row should be inserted")
}

func TestHistory_OrderAndLimit(t *testing.T) {
	s := testStore(t)
	id, err := s.CreateSession("topic", []string{"Alice", "Bob"})
	require.NoError(t, err)

	for _, text := range []string{"first", "second", "third"} {
		require.True(t, s.Append(id, "Alice", domain.TypeOpening, text))
	}

	history := s.History(id, 0)
	require.Len(t, history, 3)
	assert.Equal(t, "first", history[0].Text())
	assert.Equal(t, "third", history[2].Text())
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].Timestamp.Before(history[i-1].Timestamp),
			"history timestamps must be non-decreasing")
	}

	limited := s.History(id, 2)
	require.Len(t, limited, 2)
	assert.Equal(t, "first", limited[0].Text())
	assert.Equal(t, "second", limited[1].Text())
}

func TestHistory_Empty(t *testing.T) {
	s := testStore(t)
	assert.Empty(t, s.History("nonexistent", 0))
	assert.Empty(t, s.History("", 0))
}

func TestScores_FilterAndOrder(t *testing.T) {
	s := testStore(t)
	id, err := s.CreateSession("topic", []string{"Alice", "Bob"})
	require.NoError(t, err)

	require.True(t, s.Append(id, "Alice", domain.TypeOpening, "not a score"))
	require.True(t, s.Append(id, "Alice", domain.TypeScore, map[string]any{"total_score": float64(20)}))
	require.True(t, s.Append(id, "Bob", domain.TypeScore, map[string]any{"total_score": float64(18)}))

	scores := s.Scores(id)
	require.Len(t, scores, 2)
	for _, sc := range scores {
		assert.Equal(t, domain.TypeScore, sc.Type)
	}
	// Most recent first: descending over (timestamp, id).
	assert.Equal(t, "Bob", scores[0].Agent)
	assert.Equal(t, "Alice", scores[1].Agent)
	assert.False(t, scores[0].Timestamp.Before(scores[1].Timestamp))
}

// --- Listing, retention, statistics, health ---

func TestRecentSessions(t *testing.T) {
	s := testStore(t)

	id1, err := s.CreateSession("first", []string{"A", "B"})
	require.NoError(t, err)
	_, err = s.CreateSession("second", []string{"A", "B"})
	require.NoError(t, err)

	all := s.RecentSessions(10, "")
	require.Len(t, all, 2)

	require.True(t, s.EndSession(id1))

	active := s.RecentSessions(10, domain.StatusActive)
	require.Len(t, active, 1)
	assert.Equal(t, "second", active[0].Topic)

	completed := s.RecentSessions(10, domain.StatusCompleted)
	require.Len(t, completed, 1)
	assert.Equal(t, "first", completed[0].Topic)
}

func TestPurgeOlderThan(t *testing.T) {
	s := testStore(t)

	oldID, err := s.CreateSession("old debate", []string{"A", "B"})
	require.NoError(t, err)
	require.True(t, s.Append(oldID, "A", domain.TypeOpening, "ancient words"))
	require.True(t, s.EndSession(oldID))

	freshID, err := s.CreateSession("fresh debate", []string{"A", "B"})
	require.NoError(t, err)
	require.True(t, s.Append(freshID, "A", domain.TypeOpening, "recent words"))
	require.True(t, s.EndSession(freshID))

	activeID, err := s.CreateSession("running debate", []string{"A", "B"})
	require.NoError(t, err)

	// Backdate the old session's end time past the cutoff.
	backdated := time.Now().UTC().AddDate(0, 0, -40).Format(time.DateTime)
	_, err = s.db.sql.Exec("UPDATE sessions SET ended_at = ? WHERE id = ?", backdated, oldID)
	require.NoError(t, err)

	removed := s.PurgeOlderThan(30)
	assert.Equal(t, 1, removed)

	assert.Nil(t, s.GetSession(oldID))
	assert.Empty(t, s.History(oldID, 0))

	assert.NotNil(t, s.GetSession(freshID))
	assert.Len(t, s.History(freshID, 0), 1)
	assert.NotNil(t, s.GetSession(activeID))
}

func TestPurgeOlderThan_NothingToDo(t *testing.T) {
	s := testStore(t)
	assert.Zero(t, s.PurgeOlderThan(30))
}

func TestStatistics(t *testing.T) {
	s := testStore(t)
	id, err := s.CreateSession("topic", []string{"Alice", "Bob"})
	require.NoError(t, err)

	require.True(t, s.Append(id, domain.ModeratorName, domain.TypeAnnouncement, "welcome"))
	require.True(t, s.Append(id, "Alice", domain.TypeOpening, "open A"))
	require.True(t, s.Append(id, "Bob", domain.TypeOpening, "open B"))
	require.True(t, s.Append(id, "Alice", domain.TypeRebuttal1, "rebut A"))

	stats := s.Statistics(id)
	require.NotNil(t, stats)
	assert.Equal(t, 4, stats.TotalStatements)
	assert.Equal(t, 2, stats.StatementTypes[domain.TypeOpening])
	assert.Equal(t, 1, stats.StatementTypes[domain.TypeAnnouncement])
	assert.Equal(t, 2, stats.AgentActivity["Alice"])
	assert.Equal(t, 1, stats.AgentActivity["Bob"])
	assert.Zero(t, stats.DurationMinutes, "active session has no duration")

	require.True(t, s.EndSession(id))
	stats = s.Statistics(id)
	require.NotNil(t, stats)
	assert.Equal(t, domain.StatusCompleted, stats.Status)
	assert.GreaterOrEqual(t, stats.DurationMinutes, 0.0)
}

func TestStatistics_Missing(t *testing.T) {
	s := testStore(t)
	assert.Nil(t, s.Statistics("nonexistent"))
}

func TestHealth(t *testing.T) {
	s := testStore(t)

	h := s.Health()
	assert.Equal(t, "healthy", h.Status)
	assert.Zero(t, h.TotalSessions)

	id, err := s.CreateSession("topic", []string{"Alice", "Bob"})
	require.NoError(t, err)
	require.True(t, s.Append(id, "Alice", domain.TypeOpening, "hi"))

	h = s.Health()
	assert.Equal(t, "healthy", h.Status)
	assert.Equal(t, 1, h.TotalSessions)
	assert.Equal(t, 1, h.TotalStatements)
	assert.Equal(t, 1, h.ActiveSessions)
}

func TestEncodeContent(t *testing.T) {
	assert.JSONEq(t, `{"content":"plain"}`, encodeContent("plain"))
	assert.JSONEq(t, `{"content":"42"}`, encodeContent(42))
	assert.JSONEq(t, `{"a":1}`, encodeContent(map[string]any{"a": 1}))
	assert.JSONEq(t, `["x","y"]`, encodeContent([]any{"x", "y"}))
}
