// Package agent implements the debating participant. A Debater produces
// statements for each debate operation through the LLM client; generation
// failures degrade to canned fallback text instead of propagating, so a
// flaky provider never kills a running debate.
package agent

import (
	"context"
	"strings"
	"time"

	"github.com/soyeahso/arena/internal/domain"
	"github.com/soyeahso/arena/internal/llm"
	"github.com/soyeahso/arena/internal/logging"
	"github.com/soyeahso/arena/internal/metrics"
)

const defaultMaxRetries = 3

// Options tunes generation behavior. Zero values fall back to defaults.
type Options struct {
	MaxRetries  int
	MaxTokens   int
	Temperature *float64
}

// Debater is one debating entity. It is in-memory only and scoped to a
// single session; the transcript it reasons over always comes from the
// store, passed in by the engine.
type Debater struct {
	Name    string
	Role    string // domain.RolePro | domain.RoleCon | domain.RoleMod
	Persona string
	Topic   string

	client      llm.Client
	log         *logging.Logger
	maxRetries  int
	maxTokens   int
	temperature *float64

	statementCount    int
	opponentArguments []domain.TranscriptEntry
}

// Metrics is a point-in-time snapshot of a debater's activity.
type Metrics struct {
	StatementsMade   int    `json:"statements_made"`
	ArgumentsTracked int    `json:"arguments_tracked"`
	Role             string `json:"role"`
	Persona          string `json:"persona"`
	Topic            string `json:"topic"`
}

// NewDebater creates a participant for one debate session.
func NewDebater(name, role, persona, topic string, client llm.Client, opts Options, log *logging.Logger) *Debater {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	return &Debater{
		Name:        name,
		Role:        role,
		Persona:     persona,
		Topic:       topic,
		client:      client,
		log:         log.Sub("agent"),
		maxRetries:  opts.MaxRetries,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
	}
}

// Opening produces the opening statement.
func (d *Debater) Opening(ctx context.Context) string {
	text := d.generate(ctx, OpOpening, openingPrompt(d.Name, d.Role, d.Persona, d.Topic))
	d.statementCount++
	return text
}

// Rebuttal produces a rebuttal for the given round, addressing the
// opponent's recent statements.
func (d *Debater) Rebuttal(ctx context.Context, transcript []domain.TranscriptEntry, round int) string {
	text := d.generate(ctx, OpRebuttal, rebuttalPrompt(d.Name, d.Role, d.Persona, d.Topic, transcript, round))
	d.statementCount++
	return text
}

// Question produces a strategic cross-examination question based on the
// recent exchange.
func (d *Debater) Question(ctx context.Context, transcript []domain.TranscriptEntry) string {
	return d.generate(ctx, OpQuestion, questionPrompt(d.Name, d.Role, d.Persona, d.Topic, transcript))
}

// Answer responds to a cross-examination question.
func (d *Debater) Answer(ctx context.Context, question string) string {
	return d.generate(ctx, OpAnswer, answerPrompt(d.Name, d.Role, d.Persona, d.Topic, question))
}

// EvaluateAnswer rates how directly a question was answered.
func (d *Debater) EvaluateAnswer(ctx context.Context, question, answer string) string {
	return d.generate(ctx, OpEvaluation, evaluationPrompt(question, answer))
}

// Followup reacts to an answered question: a clarification, counter-point,
// or acknowledgment depending on answer quality.
func (d *Debater) Followup(ctx context.Context, question, answer, evaluation string) string {
	return d.generate(ctx, OpFollowup, followupPrompt(d.Name, d.Persona, question, answer, evaluation))
}

// Closing produces the closing statement, summarizing the debater's own
// strongest arguments.
func (d *Debater) Closing(ctx context.Context, transcript []domain.TranscriptEntry) string {
	text := d.generate(ctx, OpClosing, closingPrompt(d.Name, d.Role, d.Persona, d.Topic, transcript))
	d.statementCount++
	return text
}

// TrackArguments rebuilds the opponent-argument index from the transcript.
// Entries by this debater are excluded; order is preserved.
func (d *Debater) TrackArguments(transcript []domain.TranscriptEntry) []domain.TranscriptEntry {
	tracked := make([]domain.TranscriptEntry, 0, len(transcript))
	for _, entry := range transcript {
		if entry.Agent == d.Name || entry.Text == "" {
			continue
		}
		tracked = append(tracked, entry)
	}
	d.opponentArguments = tracked
	d.log.Debug().Str("agent", d.Name).Int("tracked", len(tracked)).Msg("tracked opponent arguments")
	return tracked
}

// keyPointKeywords mark transcript text worth remembering.
var keyPointKeywords = []string{
	"important", "crucial", "key", "evidence", "proof",
	"shows", "demonstrates", "because", "therefore",
}

// KeyPoints extracts notable statements from the tail of the transcript.
// Returns nil when nothing qualifies.
func (d *Debater) KeyPoints(transcript []domain.TranscriptEntry) map[string]any {
	recent := transcript
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}

	var points []string
	for _, entry := range recent {
		lower := strings.ToLower(entry.Text)
		for _, kw := range keyPointKeywords {
			if strings.Contains(lower, kw) {
				points = append(points, entry.Text)
				break
			}
		}
	}
	if len(points) == 0 {
		return nil
	}

	summary := strings.Join(points, " | ")
	if len(summary) > 500 {
		summary = summary[:500]
	}
	return map[string]any{
		"points":       points,
		"summary":      summary,
		"extracted_at": len(transcript),
	}
}

// Payload wraps generated text in the persisted statement content shape.
func (d *Debater) Payload(content string) map[string]any {
	return map[string]any{
		"content":          content,
		"role":             d.Role,
		"persona":          d.Persona,
		"statement_number": d.statementCount,
		"topic":            d.Topic,
	}
}

// StatementCount returns how many statements this debater has produced.
func (d *Debater) StatementCount() int {
	return d.statementCount
}

// Snapshot returns the debater's activity metrics.
func (d *Debater) Snapshot() Metrics {
	return Metrics{
		StatementsMade:   d.statementCount,
		ArgumentsTracked: len(d.opponentArguments),
		Role:             d.Role,
		Persona:          d.Persona,
		Topic:            d.Topic,
	}
}

// generate runs the retry/backoff/fallback contract: up to maxRetries
// attempts with exponential backoff, then canned text for the operation.
// It never fails; the engine always gets something to persist.
func (d *Debater) generate(ctx context.Context, op Operation, prompt string) string {
	req := llm.CompletionRequest{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   d.maxTokens,
		Temperature: d.temperature,
	}

	for attempt := 0; attempt < d.maxRetries; attempt++ {
		resp, err := d.client.Complete(ctx, req)
		if err == nil && strings.TrimSpace(resp.Content) != "" {
			return strings.TrimSpace(resp.Content)
		}

		if err == nil {
			err = errEmptyResponse
		}
		d.log.Warn().
			Str("agent", d.Name).
			Str("operation", string(op)).
			Int("attempt", attempt+1).
			Err(err).
			Msg("generation attempt failed")

		if attempt == d.maxRetries-1 {
			break
		}
		metrics.GenerationRetried()

		select {
		case <-ctx.Done():
			d.log.Warn().Str("agent", d.Name).Msg("generation canceled, using fallback")
			metrics.GenerationFellBack()
			return d.fallback(op)
		case <-time.After(time.Duration(1<<attempt) * time.Second):
		}
	}

	metrics.GenerationFellBack()
	return d.fallback(op)
}
