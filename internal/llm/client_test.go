package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/arena/internal/config"
	"github.com/soyeahso/arena/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.New(nil, "silent")
}

func TestProviderError(t *testing.T) {
	err := &ProviderError{Provider: "openai", Message: "rate limited", Code: 429}
	assert.Equal(t, "openai: 429 rate limited", err.Error())

	err = &ProviderError{Provider: "gemini", Message: "connection refused"}
	assert.Equal(t, "gemini: connection refused", err.Error())
}

func TestRegistry_Resolve(t *testing.T) {
	reg := NewRegistry(testLogger())
	mock := &MockClient{ProviderName: "mock"}
	reg.Register("mock", mock)

	c, err := reg.Resolve("mock")
	require.NoError(t, err)
	assert.Equal(t, "mock", c.Name())
}

func TestRegistry_ResolveAlias(t *testing.T) {
	reg := NewRegistry(testLogger())
	reg.Register("openai", &MockClient{ProviderName: "openai"})
	reg.Alias("gpt-4o", "openai")

	c, err := reg.Resolve("gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, "openai", c.Name())
}

func TestRegistry_ResolveFallback(t *testing.T) {
	reg := NewRegistry(testLogger())
	reg.Register("mock", &MockClient{ProviderName: "mock"})
	reg.SetFallback("mock")

	c, err := reg.Resolve("some-unknown-model")
	require.NoError(t, err)
	assert.Equal(t, "mock", c.Name())
}

func TestRegistry_ResolveMiss(t *testing.T) {
	reg := NewRegistry(testLogger())
	_, err := reg.Resolve("nope")
	assert.Error(t, err)
}

func TestNewRegistryFromConfig_Mock(t *testing.T) {
	reg := NewRegistryFromConfig(config.LLMConfig{Provider: "mock"}, testLogger())

	c, err := reg.Resolve("anything")
	require.NoError(t, err)
	assert.Equal(t, "mock", c.Name())
	assert.Equal(t, []string{"mock"}, reg.List())
}

func TestNewRegistryFromConfig_MissingKey(t *testing.T) {
	// An API provider without a key registers nothing.
	reg := NewRegistryFromConfig(config.LLMConfig{Provider: "openai"}, testLogger())
	_, err := reg.Resolve("gpt-4o")
	assert.Error(t, err)
}

func TestMockClient_Defaults(t *testing.T) {
	m := &MockClient{ProviderName: "mock"}

	resp, err := m.Complete(context.Background(), CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "mock response", resp.Content)

	events, err := m.Stream(context.Background(), CompletionRequest{})
	require.NoError(t, err)

	var types []string
	var final *CompletionResponse
	for ev := range events {
		types = append(types, ev.Type)
		if ev.Type == "done" {
			final = ev.Response
		}
	}
	assert.Equal(t, []string{"delta", "done"}, types)
	require.NotNil(t, final)
	assert.Equal(t, "mock stream response", final.Content)
}

func TestMockClient_CustomComplete(t *testing.T) {
	m := &MockClient{
		ProviderName: "mock",
		CompleteFunc: func(_ context.Context, req CompletionRequest) (*CompletionResponse, error) {
			return &CompletionResponse{Content: "echo: " + req.Messages[0].Content}, nil
		},
	}

	resp, err := m.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "echo: hi", resp.Content)
}
