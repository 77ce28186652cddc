package domain

import "time"

// Participant roles.
const (
	RolePro = "Pro"
	RoleCon = "Con"
	RoleMod = "Mod"
)

// ModeratorName is the agent name used for synthetic moderator entries.
const ModeratorName = "Moderator"

// TranscriptEntry is the flattened projection of a Statement exchanged with
// the display layer and fed back into subsequent prompts.
type TranscriptEntry struct {
	Agent     string    `json:"agent"`
	Text      string    `json:"text"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// EntryFromStatement flattens a stored statement into a transcript entry.
func EntryFromStatement(s Statement) TranscriptEntry {
	return TranscriptEntry{
		Agent:     s.Agent,
		Text:      s.Text(),
		Type:      s.Type,
		Timestamp: s.Timestamp,
	}
}

// Transcript converts stored statements into display/prompt entries,
// preserving order.
func Transcript(statements []Statement) []TranscriptEntry {
	entries := make([]TranscriptEntry, 0, len(statements))
	for _, s := range statements {
		entries = append(entries, EntryFromStatement(s))
	}
	return entries
}
