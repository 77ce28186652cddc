package debate

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/arena/internal/agent"
	"github.com/soyeahso/arena/internal/domain"
	"github.com/soyeahso/arena/internal/llm"
	"github.com/soyeahso/arena/internal/logging"
	"github.com/soyeahso/arena/internal/store"
)

func testStore(t *testing.T) *store.DebateStore {
	t.Helper()
	log := logging.New(nil, "silent")
	db, err := store.Open(":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return store.NewDebateStore(db)
}

func testParticipants(t *testing.T, topic string) []*agent.Debater {
	t.Helper()
	log := logging.New(nil, "silent")
	client := &llm.MockClient{
		ProviderName: "mock",
		CompleteFunc: func(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return &llm.CompletionResponse{Content: "generated text with evidence"}, nil
		},
	}
	opts := agent.Options{MaxRetries: 1}
	return []*agent.Debater{
		agent.NewDebater("Alice", domain.RolePro, "Logical", topic, client, opts, log),
		agent.NewDebater("Bob", domain.RoleCon, "Passionate", topic, client, opts, log),
	}
}

// fixedScorer gives Bob the win deterministically.
func fixedScorer(d *agent.Debater) Score {
	total := 18
	if d.Name == "Bob" {
		total = 23
	}
	return Score{
		Total:     total,
		Breakdown: map[string]int{"Logic": 4, "Persuasiveness": 4, "Clarity": 4, "Strategy": 4},
	}
}

func testEngine(t *testing.T, cfg EngineConfig) (*Engine, *store.DebateStore) {
	t.Helper()
	st := testStore(t)
	if cfg.Scorer == nil {
		cfg.Scorer = fixedScorer
	}
	eng := NewEngine(st, testParticipants(t, "Should robots vote?"), cfg, logging.New(nil, "silent"))
	return eng, st
}

type recordingPublisher struct {
	mu      sync.Mutex
	entries []domain.TranscriptEntry
}

func (r *recordingPublisher) Publish(entry domain.TranscriptEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func typeCounts(statements []domain.Statement) map[string]int {
	counts := make(map[string]int)
	for _, s := range statements {
		counts[s.Type]++
	}
	return counts
}

func TestEngine_Start(t *testing.T) {
	eng, st := testEngine(t, EngineConfig{})

	id, err := eng.Start("Should robots vote?")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	assert.Equal(t, PhaseSetup, eng.Phase())
	assert.False(t, eng.Completed())

	sess := st.GetSession(id)
	require.NotNil(t, sess)
	assert.Equal(t, []string{"Alice", "Bob"}, sess.Participants)
	assert.Empty(t, st.History(id, 0), "setup starts with an empty transcript")
}

func TestEngine_FullDebate(t *testing.T) {
	eng, st := testEngine(t, EngineConfig{})
	id, err := eng.Start("Should robots vote?")
	require.NoError(t, err)
	ctx := context.Background()

	want := []Phase{
		PhaseOpening, PhaseRebuttal1, PhaseCrossExam1,
		PhaseRebuttal2, PhaseCrossExam2, PhaseClosing, PhaseResults,
	}
	for _, expected := range want {
		phase, err := eng.Advance(ctx)
		require.NoError(t, err)
		assert.Equal(t, expected, phase)
	}
	assert.True(t, eng.Completed())

	sess := st.GetSession(id)
	require.NotNil(t, sess)
	assert.True(t, sess.Completed())

	counts := typeCounts(st.History(id, 0))
	// one moderator announcement per phase from Opening through Results
	assert.Equal(t, 7, counts[domain.TypeAnnouncement])
	assert.Equal(t, 2, counts[domain.TypeOpening])
	assert.Equal(t, 2, counts[domain.TypeRebuttal1])
	assert.Equal(t, 2, counts[domain.TypeRebuttal2])
	assert.Equal(t, 2, counts[domain.TypeQuestion])
	assert.Equal(t, 2, counts[domain.TypeAnswer])
	assert.Equal(t, 2, counts[domain.TypeClosing])
	assert.Equal(t, 2, counts[domain.TypeScore])
	assert.Equal(t, 1, counts[domain.TypeResult])
	assert.Equal(t, 2, counts[domain.TypeScoreDetail])
	// "evidence" in generated text triggers key point extraction each round
	assert.NotZero(t, counts[domain.TypeKeyPoints])
}

func TestEngine_AdvancePastResults(t *testing.T) {
	eng, _ := testEngine(t, EngineConfig{})
	_, err := eng.Start("topic for the ages")
	require.NoError(t, err)
	ctx := context.Background()

	for !eng.Completed() {
		_, err := eng.Advance(ctx)
		require.NoError(t, err)
	}

	phase, err := eng.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, PhaseResults, phase, "advancing past Results is a no-op")
}

func TestEngine_PhaseErrorKeepsPhase(t *testing.T) {
	eng, _ := testEngine(t, EngineConfig{})
	// No Start: appends against an empty session id fail, so the opening
	// announcement cannot be persisted.

	phase, err := eng.Advance(context.Background())
	assert.Equal(t, PhaseSetup, phase)

	var perr *PhaseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, PhaseOpening, perr.Phase)
	assert.Equal(t, PhaseSetup, eng.Phase(), "failed phase is not committed")
}

func TestEngine_ResultsRanking(t *testing.T) {
	eng, st := testEngine(t, EngineConfig{})
	id, err := eng.Start("ranked debate")
	require.NoError(t, err)
	ctx := context.Background()

	for !eng.Completed() {
		_, err := eng.Advance(ctx)
		require.NoError(t, err)
	}

	history := st.History(id, 0)

	var result string
	var details []string
	for _, s := range history {
		switch s.Type {
		case domain.TypeResult:
			result = s.Text()
		case domain.TypeScoreDetail:
			details = append(details, s.Text())
		}
	}

	assert.Contains(t, result, "Bob")
	assert.Contains(t, result, "23 points")

	require.Len(t, details, 2)
	assert.True(t, strings.HasPrefix(details[0], "🥇"))
	assert.Contains(t, details[0], "Bob")
	assert.True(t, strings.HasPrefix(details[1], "🥈"))
	assert.Contains(t, details[1], "Alice")

	scores := st.Scores(id)
	require.Len(t, scores, 2)
	for _, sc := range scores {
		assert.Contains(t, sc.Content, "total_score")
		assert.Contains(t, sc.Content, "breakdown")
	}
}

func TestEngine_Followups(t *testing.T) {
	eng, st := testEngine(t, EngineConfig{Followups: true})
	id, err := eng.Start("followup debate")
	require.NoError(t, err)
	ctx := context.Background()

	for !eng.Completed() {
		_, err := eng.Advance(ctx)
		require.NoError(t, err)
	}

	counts := typeCounts(st.History(id, 0))
	assert.Equal(t, 2, counts[domain.TypeFollowup], "one followup per cross-exam round")
}

func TestEngine_Publisher(t *testing.T) {
	pub := &recordingPublisher{}
	eng, st := testEngine(t, EngineConfig{Publisher: pub})
	id, err := eng.Start("published debate")
	require.NoError(t, err)

	_, err = eng.Advance(context.Background())
	require.NoError(t, err)

	// Announcement + two openings
	require.Len(t, pub.entries, 3)
	assert.Equal(t, domain.ModeratorName, pub.entries[0].Agent)
	assert.Equal(t, domain.TypeAnnouncement, pub.entries[0].Type)
	assert.Equal(t, "Alice", pub.entries[1].Agent)
	assert.Equal(t, "Bob", pub.entries[2].Agent)

	// Publisher mirrors what was persisted
	assert.Len(t, st.History(id, 0), 3)
}

func TestEngine_Run(t *testing.T) {
	eng, st := testEngine(t, EngineConfig{})
	id, err := eng.Start("auto debate")
	require.NoError(t, err)

	require.NoError(t, eng.Run(context.Background(), 0))
	assert.True(t, eng.Completed())

	sess := st.GetSession(id)
	require.NotNil(t, sess)
	assert.True(t, sess.Completed())
}

func TestEngine_RunStop(t *testing.T) {
	eng, _ := testEngine(t, EngineConfig{})
	_, err := eng.Start("stopped debate")
	require.NoError(t, err)

	eng.Stop()
	require.NoError(t, eng.Run(context.Background(), 0))
	assert.Equal(t, PhaseSetup, eng.Phase(), "stop before the first step runs nothing")
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "Setup", PhaseSetup.String())
	assert.Equal(t, "Cross-Exam 2", PhaseCrossExam2.String())
	assert.Equal(t, "Results", PhaseResults.String())
	assert.Equal(t, "Phase(99)", Phase(99).String())
}
