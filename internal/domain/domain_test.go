package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatement_Text(t *testing.T) {
	s := Statement{Content: map[string]any{"content": "hello"}}
	assert.Equal(t, "hello", s.Text())
}

func TestStatement_Text_NoText(t *testing.T) {
	s := Statement{Content: map[string]any{"total_score": 20}}
	assert.Equal(t, "", s.Text())

	empty := Statement{}
	assert.Equal(t, "", empty.Text())
}

func TestRebuttalType(t *testing.T) {
	assert.Equal(t, TypeRebuttal1, RebuttalType(1))
	assert.Equal(t, TypeRebuttal2, RebuttalType(2))
	assert.Equal(t, TypeRebuttal1, RebuttalType(0))
}

func TestSession_Completed(t *testing.T) {
	s := &Session{Status: StatusActive}
	assert.False(t, s.Completed())
	s.Status = StatusCompleted
	assert.True(t, s.Completed())
}

func TestTranscript(t *testing.T) {
	now := time.Now()
	statements := []Statement{
		{Agent: ModeratorName, Type: TypeAnnouncement, Content: map[string]any{"content": "welcome"}, Timestamp: now},
		{Agent: "Alice", Type: TypeOpening, Content: map[string]any{"content": "I open"}, Timestamp: now.Add(time.Second)},
	}

	entries := Transcript(statements)
	assert.Len(t, entries, 2)
	assert.Equal(t, "welcome", entries[0].Text)
	assert.Equal(t, "Alice", entries[1].Agent)
	assert.Equal(t, TypeOpening, entries[1].Type)
}
