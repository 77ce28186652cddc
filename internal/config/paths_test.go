package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"single segment", "llm", []string{"llm"}, false},
		{"two segments", "llm.provider", []string{"llm", "provider"}, false},
		{"three segments", "debate.personas.name", []string{"debate", "personas", "name"}, false},
		{"empty", "", nil, true},
		{"empty segment", "llm..provider", nil, true},
		{"leading dot", ".llm", nil, true},
		{"trailing dot", "llm.", nil, true},
		{"blocked __proto__", "foo.__proto__.bar", nil, true},
		{"blocked prototype", "prototype.x", nil, true},
		{"blocked constructor", "constructor", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConfigPath(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				var ce *ConfigError
				assert.ErrorAs(t, err, &ce)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestGetValueAtPath(t *testing.T) {
	root := map[string]any{
		"llm": map[string]any{
			"provider": "openai",
			"options": map[string]any{
				"maxTokens": 1024,
			},
		},
		"simple": "value",
	}

	tests := []struct {
		name string
		path []string
		want any
		ok   bool
	}{
		{"nested value", []string{"llm", "provider"}, "openai", true},
		{"deeply nested", []string{"llm", "options", "maxTokens"}, 1024, true},
		{"top level", []string{"simple"}, "value", true},
		{"missing key", []string{"nonexistent"}, nil, false},
		{"missing nested", []string{"llm", "nonexistent"}, nil, false},
		{"non-map intermediate", []string{"simple", "sub"}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			val, ok := GetValueAtPath(root, tt.path)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, val)
			}
		})
	}
}

func TestSetValueAtPath_Update(t *testing.T) {
	root := map[string]any{
		"gateway": map[string]any{
			"port": 18789,
		},
	}

	SetValueAtPath(root, []string{"gateway", "port"}, 9999)
	val, ok := GetValueAtPath(root, []string{"gateway", "port"})
	assert.True(t, ok)
	assert.Equal(t, 9999, val)
}

func TestSetValueAtPath_CreatesIntermediates(t *testing.T) {
	root := map[string]any{}

	SetValueAtPath(root, []string{"a", "b", "c"}, "deep")
	val, ok := GetValueAtPath(root, []string{"a", "b", "c"})
	assert.True(t, ok)
	assert.Equal(t, "deep", val)
}

func TestSetValueAtPath_OverwritesNonMap(t *testing.T) {
	root := map[string]any{
		"llm": "string-not-map",
	}

	SetValueAtPath(root, []string{"llm", "provider"}, "mock")
	val, ok := GetValueAtPath(root, []string{"llm", "provider"})
	assert.True(t, ok)
	assert.Equal(t, "mock", val)
}

func TestUnsetValueAtPath_PreserveSiblings(t *testing.T) {
	root := map[string]any{
		"gateway": map[string]any{
			"port": 18789,
			"bind": "loopback",
		},
	}

	ok := UnsetValueAtPath(root, []string{"gateway", "port"})
	assert.True(t, ok)

	_, found := GetValueAtPath(root, []string{"gateway", "port"})
	assert.False(t, found)

	val, found := GetValueAtPath(root, []string{"gateway", "bind"})
	assert.True(t, found)
	assert.Equal(t, "loopback", val)
}

func TestUnsetValueAtPath_NotFound(t *testing.T) {
	root := map[string]any{
		"gateway": map[string]any{"port": 18789},
	}
	assert.False(t, UnsetValueAtPath(root, []string{"gateway", "nonexistent"}))
	assert.False(t, UnsetValueAtPath(root, []string{"a", "b", "c"}))
}

func TestResolvePaths_Default(t *testing.T) {
	t.Setenv("ARENA_HOME", "")

	paths, err := ResolvePaths()
	require.NoError(t, err)

	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".arena"), paths.Base)
	assert.Equal(t, filepath.Join(home, ".arena", "config.yaml"), paths.Config)
	assert.Equal(t, filepath.Join(home, ".arena", "logs"), paths.Logs)
	assert.Equal(t, filepath.Join(home, ".arena", "data"), paths.Data)
	assert.Equal(t, filepath.Join(home, ".arena", "data", "arena.db"), paths.Database())
}

func TestResolvePaths_CustomHome(t *testing.T) {
	t.Setenv("ARENA_HOME", "/tmp/arena-test")

	paths, err := ResolvePaths()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/arena-test", paths.Base)
	assert.Equal(t, "/tmp/arena-test/config.yaml", paths.Config)
	assert.Equal(t, "/tmp/arena-test/data/arena.db", paths.Database())
}

func TestEnsureDirs(t *testing.T) {
	tmpDir := t.TempDir()
	paths := Paths{
		Base: tmpDir,
		Logs: filepath.Join(tmpDir, "logs"),
		Data: filepath.Join(tmpDir, "data"),
	}

	require.NoError(t, paths.EnsureDirs())
	require.NoError(t, paths.EnsureDirs()) // second call should succeed

	for _, dir := range []string{paths.Base, paths.Logs, paths.Data} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
