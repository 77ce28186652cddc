// Package debate drives a session through its fixed phase sequence and
// records every emitted statement in the store. The store is the single
// source of truth: prompt context is always re-read from it, never from
// engine-local state.
package debate

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/soyeahso/arena/internal/agent"
	"github.com/soyeahso/arena/internal/domain"
	"github.com/soyeahso/arena/internal/logging"
	"github.com/soyeahso/arena/internal/metrics"
	"github.com/soyeahso/arena/internal/store"
)

// Phase is one of the eight fixed debate stages.
type Phase int

const (
	PhaseSetup Phase = iota
	PhaseOpening
	PhaseRebuttal1
	PhaseCrossExam1
	PhaseRebuttal2
	PhaseCrossExam2
	PhaseClosing
	PhaseResults
)

var phaseNames = []string{
	"Setup", "Opening", "Rebuttal 1", "Cross-Exam 1",
	"Rebuttal 2", "Cross-Exam 2", "Closing", "Results",
}

func (p Phase) String() string {
	if p < PhaseSetup || p > PhaseResults {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// PhaseError wraps a failure while running a phase. The engine stays on
// the last committed phase, so the step can be retried.
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("phase %s failed: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// Publisher receives every transcript entry as it is produced, for live
// display. The engine never blocks on it for correctness; persistence
// happens first.
type Publisher interface {
	Publish(entry domain.TranscriptEntry)
}

// EngineConfig tunes a single engine instance.
type EngineConfig struct {
	Followups bool      // generate follow-up reactions in cross-exam
	Scorer    ScoreFunc // nil means RandomScore
	Publisher Publisher // optional
}

// Engine runs one debate session. It is not safe for concurrent use;
// phases are driven sequentially by one caller.
type Engine struct {
	store        *store.DebateStore
	participants []*agent.Debater
	followups    bool
	scorer       ScoreFunc
	publisher    Publisher
	log          *logging.Logger

	sessionID string
	phase     Phase
	stopped   atomic.Bool
}

// NewEngine creates an engine over the given participants, in speaking order.
func NewEngine(st *store.DebateStore, participants []*agent.Debater, cfg EngineConfig, log *logging.Logger) *Engine {
	scorer := cfg.Scorer
	if scorer == nil {
		scorer = RandomScore
	}
	return &Engine{
		store:        st,
		participants: participants,
		followups:    cfg.Followups,
		scorer:       scorer,
		publisher:    cfg.Publisher,
		log:          log.Sub("debate"),
	}
}

// Start creates the session and enters Setup with an empty transcript.
func (e *Engine) Start(topic string) (string, error) {
	names := make([]string, len(e.participants))
	for i, p := range e.participants {
		names[i] = p.Name
	}

	id, err := e.store.CreateSession(topic, names)
	if err != nil {
		return "", err
	}

	e.sessionID = id
	e.phase = PhaseSetup
	e.log.Info().Str("session", id).Str("topic", topic).Int("participants", len(names)).Msg("debate started")
	return id, nil
}

// SessionID returns the id of the running session.
func (e *Engine) SessionID() string {
	return e.sessionID
}

// Phase returns the last committed phase.
func (e *Engine) Phase() Phase {
	return e.phase
}

// Completed reports whether the debate has reached Results.
func (e *Engine) Completed() bool {
	return e.phase >= PhaseResults
}

// Stop requests that an auto-advancing Run loop stop between phases.
func (e *Engine) Stop() {
	e.stopped.Store(true)
}

// Advance runs the next phase's protocol. The phase counter moves forward
// only after the step finishes without a phase-level error; on *PhaseError
// the engine stays where it was and Advance can be called again. Advancing
// past Results is a no-op.
func (e *Engine) Advance(ctx context.Context) (Phase, error) {
	if e.Completed() {
		return e.phase, nil
	}

	next := e.phase + 1
	start := time.Now()

	if err := e.runPhase(ctx, next); err != nil {
		e.log.Error().Str("session", e.sessionID).Stringer("phase", next).Err(err).Msg("phase failed")
		return e.phase, &PhaseError{Phase: next, Err: err}
	}

	metrics.ObservePhase(next.String(), time.Since(start))
	e.phase = next
	e.log.Info().Str("session", e.sessionID).Stringer("phase", next).Msg("phase complete")
	return e.phase, nil
}

// Run auto-advances through all remaining phases, pausing delay between
// steps. It stops on the first phase error, on context cancellation, or
// when Stop has been called.
func (e *Engine) Run(ctx context.Context, delay time.Duration) error {
	for !e.Completed() {
		if e.stopped.Load() {
			e.log.Info().Str("session", e.sessionID).Msg("auto-advance stopped")
			return nil
		}

		if _, err := e.Advance(ctx); err != nil {
			return err
		}
		if e.Completed() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil
}

func (e *Engine) runPhase(ctx context.Context, p Phase) error {
	switch p {
	case PhaseOpening:
		return e.runOpening(ctx)
	case PhaseRebuttal1:
		return e.runRebuttal(ctx, 1)
	case PhaseCrossExam1:
		return e.runCrossExam(ctx, 1)
	case PhaseRebuttal2:
		return e.runRebuttal(ctx, 2)
	case PhaseCrossExam2:
		return e.runCrossExam(ctx, 2)
	case PhaseClosing:
		return e.runClosing(ctx)
	case PhaseResults:
		return e.runResults(ctx)
	default:
		return fmt.Errorf("no protocol for phase %s", p)
	}
}

func (e *Engine) runOpening(ctx context.Context) error {
	if err := e.announce("Welcome to the AI Debate Arena. Let's begin with opening statements.", domain.TypeAnnouncement); err != nil {
		return err
	}

	for _, p := range e.participants {
		text := p.Opening(ctx)
		e.record(p, domain.TypeOpening, text)
	}
	return nil
}

func (e *Engine) runRebuttal(ctx context.Context, round int) error {
	if err := e.announce(fmt.Sprintf("Moving to Rebuttal Round %d", round), domain.TypeAnnouncement); err != nil {
		return err
	}

	typ := domain.RebuttalType(round)
	for _, p := range e.participants {
		transcript := e.transcript()
		p.TrackArguments(transcript)
		text := p.Rebuttal(ctx, transcript, round)
		e.record(p, typ, text)
	}

	// Each participant remembers the notable points of the round.
	for _, p := range e.participants {
		if kp := p.KeyPoints(e.transcript()); kp != nil {
			if !e.store.Append(e.sessionID, p.Name, domain.TypeKeyPoints, kp) {
				e.log.Warn().Str("agent", p.Name).Msg("failed to persist key points")
			}
		}
	}
	return nil
}

func (e *Engine) runCrossExam(ctx context.Context, round int) error {
	if err := e.announce(fmt.Sprintf("Beginning Cross-Examination Round %d", round), domain.TypeAnnouncement); err != nil {
		return err
	}

	questioner, responder := Pairing(round, e.participants)
	if questioner == nil {
		return fmt.Errorf("no participants to pair")
	}

	question := questioner.Question(ctx, e.transcript())
	if question == "" {
		// Nothing was produced; the answer step is skipped.
		return nil
	}
	e.record(questioner, domain.TypeQuestion, question)

	answer := responder.Answer(ctx, question)
	if answer == "" {
		return nil
	}
	e.record(responder, domain.TypeAnswer, answer)

	if e.followups {
		evaluation := questioner.EvaluateAnswer(ctx, question, answer)
		if followup := questioner.Followup(ctx, question, answer, evaluation); followup != "" {
			e.record(questioner, domain.TypeFollowup, followup)
		}
	}
	return nil
}

func (e *Engine) runClosing(ctx context.Context) error {
	if err := e.announce("Time for closing arguments. Make your final case.", domain.TypeAnnouncement); err != nil {
		return err
	}

	for _, p := range e.participants {
		text := p.Closing(ctx, e.transcript())
		e.record(p, domain.TypeClosing, text)
	}
	return nil
}

func (e *Engine) runResults(_ context.Context) error {
	if err := e.announce("The debate has concluded. Calculating final scores...", domain.TypeAnnouncement); err != nil {
		return err
	}

	type scored struct {
		name  string
		role  string
		score Score
	}
	results := make([]scored, 0, len(e.participants))

	for _, p := range e.participants {
		sc := e.scorer(p)
		if !e.store.Append(e.sessionID, p.Name, domain.TypeScore, map[string]any{
			"total_score": sc.Total,
			"breakdown":   sc.Breakdown,
		}) {
			e.log.Warn().Str("agent", p.Name).Msg("failed to persist score")
		}
		results = append(results, scored{name: p.Name, role: p.Role, score: sc})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score.Total > results[j].score.Total
	})

	if len(results) > 0 {
		winner := results[0]
		if err := e.announce(
			fmt.Sprintf("🏆 Winner: %s (%s Side) with %d points!", winner.name, winner.role, winner.score.Total),
			domain.TypeResult,
		); err != nil {
			return err
		}

		medals := []string{"🥇", "🥈", "🥉"}
		for i, r := range results {
			medal := medals[min(i, len(medals)-1)]
			if err := e.announce(
				fmt.Sprintf("%s %s (%s): %d points", medal, r.name, r.role, r.score.Total),
				domain.TypeScoreDetail,
			); err != nil {
				return err
			}
		}
	}

	if !e.store.EndSession(e.sessionID) {
		return fmt.Errorf("session %s could not be completed", e.sessionID)
	}
	return nil
}

// announce persists a moderator entry. A failed append here is a phase
// error: if the moderator can't speak, the store is in trouble.
func (e *Engine) announce(text, typ string) error {
	content := map[string]any{
		"content": text,
		"role":    domain.RoleMod,
		"persona": "Neutral",
	}
	if !e.store.Append(e.sessionID, domain.ModeratorName, typ, content) {
		return fmt.Errorf("failed to persist moderator %s", typ)
	}
	e.publish(domain.TranscriptEntry{
		Agent:     domain.ModeratorName,
		Text:      text,
		Type:      typ,
		Timestamp: time.Now().UTC(),
	})
	return nil
}

// record persists one participant statement. A failed append is logged
// and the phase continues with the remaining participants.
func (e *Engine) record(p *agent.Debater, typ, text string) {
	if text == "" {
		return
	}
	if !e.store.Append(e.sessionID, p.Name, typ, p.Payload(text)) {
		e.log.Error().Str("agent", p.Name).Str("type", typ).Msg("statement not persisted")
		return
	}
	e.publish(domain.TranscriptEntry{
		Agent:     p.Name,
		Text:      text,
		Type:      typ,
		Timestamp: time.Now().UTC(),
	})
}

func (e *Engine) publish(entry domain.TranscriptEntry) {
	if e.publisher != nil {
		e.publisher.Publish(entry)
	}
}

// transcript re-reads the full ordered transcript from the store.
func (e *Engine) transcript() []domain.TranscriptEntry {
	return domain.Transcript(e.store.History(e.sessionID, 0))
}
