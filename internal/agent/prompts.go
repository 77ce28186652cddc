package agent

import (
	"fmt"
	"strings"

	"github.com/soyeahso/arena/internal/domain"
)

// Prompt builders are pure functions of role/persona/topic and a transcript
// slice. They own all wording; the Debater only picks which one to call.

func openingPrompt(name, role, persona, topic string) string {
	return fmt.Sprintf(`You are %s, a %s debater in a formal debate.

Topic: %s
Your Position: %s
Your Style: %s

Create a compelling opening statement (4-5 sentences, under 150 words) that:
1. Clearly states your %s position
2. Presents 2-3 main arguments
3. Captures attention with your %s style
4. Sets the tone for your debate strategy
5. Is persuasive and memorable

Be confident, engaging, and true to your persona.`,
		name, persona, topic, role, persona, role, persona)
}

func rebuttalPrompt(name, role, persona, topic string, transcript []domain.TranscriptEntry, round int) string {
	opponentText := formatOpponentEntries(name, tail(transcript, 4))
	if opponentText == "" {
		opponentText = "No recent opponent statements available"
	}

	return fmt.Sprintf(`Topic: %s
Your Role: %s
Your Style: %s
Round: %d

Recent opponent arguments:
%s

Generate a strategic rebuttal (4-5 sentences, under 150 words) that:
1. Directly addresses at least one opponent point
2. Strengthens your %s position
3. Maintains your %s style
4. Introduces new evidence or reasoning
5. Anticipates potential counter-arguments

Be persuasive, focused, and strategic.`,
		topic, role, persona, round, opponentText, role, persona)
}

func questionPrompt(name, role, persona, topic string, transcript []domain.TranscriptEntry) string {
	return fmt.Sprintf(`You are %s, a %s debater arguing the %s side of "%s".

Recent debate exchange:
%s

Generate a strategic question that:
1. Targets a weakness in your opponent's recent argument
2. Forces them to defend a vulnerable position
3. Can be answered in 2-3 sentences
4. Maintains your %s style
5. Advances your %s position on %s

Keep it direct, challenging, and under 50 words.`,
		name, persona, role, topic, formatEntries(tail(transcript, 3)), persona, role, topic)
}

func answerPrompt(name, role, persona, topic, question string) string {
	return fmt.Sprintf(`You are %s, a %s debater arguing the %s side of "%s".

Answer this question directly and convincingly:
"%s"

Requirements:
1. Maintain your %s style
2. Defend your %s position strongly
3. Be direct and substantive
4. Keep response to 2-3 sentences (under 100 words)
5. Avoid evasion - address the question head-on

Provide a clear, confident answer.`,
		name, persona, role, topic, question, persona, role)
}

func evaluationPrompt(question, answer string) string {
	return fmt.Sprintf(`Evaluate this debate exchange objectively:

Question: %s
Answer: %s

Rate on scale 1-5 and determine evasion:
1. Directness: Did they answer the question directly? (1-5)
2. Logic: Was the reasoning sound? (1-5)
3. Evasion: Did they avoid addressing the core question? (Yes/No)

Format exactly as: "Directness: X/5, Logic: X/5, Evasion: Yes/No"
Then add one sentence analysis.`,
		question, answer)
}

func followupPrompt(name, persona, question, answer, evaluation string) string {
	return fmt.Sprintf(`Previous exchange:
Question: %s
Answer: %s
Evaluation: %s

As %s (%s), generate either:
- A clarifying follow-up if they were evasive or unclear
- A counter-point if their answer was weak
- Brief acknowledgment if they answered well

Keep it under 30 words and maintain your persona.`,
		question, answer, evaluation, name, persona)
}

func closingPrompt(name, role, persona, topic string, transcript []domain.TranscriptEntry) string {
	var own []string
	for _, entry := range transcript {
		if entry.Agent == name && entry.Text != "" {
			own = append(own, entry.Text)
		}
	}
	keyStatements := strings.Join(tailStrings(own, 3), "\n")
	if keyStatements == "" {
		keyStatements = "No previous statements available"
	}

	return fmt.Sprintf(`Topic: %s
Your Role: %s
Your Style: %s

Your key arguments in this debate:
%s

Generate a powerful closing statement (5-6 sentences, under 200 words) that:
1. Summarizes your strongest arguments
2. Reinforces your %s position decisively
3. Addresses key opponent weaknesses
4. Leaves a lasting impression
5. Maintains your %s style
6. Calls for acceptance of your position

This is your final chance - make it memorable and convincing.`,
		topic, role, persona, keyStatements, role, persona)
}

func formatEntries(entries []domain.TranscriptEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s: %s", e.Agent, e.Text))
	}
	return strings.Join(lines, "\n")
}

func formatOpponentEntries(self string, entries []domain.TranscriptEntry) string {
	var lines []string
	for _, e := range entries {
		if e.Agent == self || e.Text == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", e.Agent, e.Text))
	}
	return strings.Join(lines, "\n")
}

func tail(entries []domain.TranscriptEntry, n int) []domain.TranscriptEntry {
	if len(entries) > n {
		return entries[len(entries)-n:]
	}
	return entries
}

func tailStrings(s []string, n int) []string {
	if len(s) > n {
		return s[len(s)-n:]
	}
	return s
}
