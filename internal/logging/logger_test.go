package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_Sub(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info")

	log.Sub("store").Info().Msg("opened")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "store", entry["subsystem"])
	assert.Equal(t, "opened", entry["message"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn")

	log.Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("kept")
	assert.NotZero(t, buf.Len())
}

func TestLogger_Silent(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "silent")

	log.Error().Msg("nothing")
	assert.Zero(t, buf.Len())
}

func TestParseLevel_Default(t *testing.T) {
	assert.Equal(t, parseLevel("info"), parseLevel("bogus"))
}
