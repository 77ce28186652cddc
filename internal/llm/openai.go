package llm

import (
	"context"
	"errors"
	"io"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient is a Client backed by the OpenAI chat completions API.
// Any OpenAI-compatible endpoint works via the endpoint override.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a new OpenAI API client. An empty endpoint uses
// the official API; set it to point at a compatible server instead.
func NewOpenAIClient(apiKey, model, endpoint string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if endpoint != "" {
		cfg.BaseURL = endpoint
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Complete sends a non-streaming chat completion request.
func (o *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	resp, err := o.client.CreateChatCompletion(ctx, o.buildRequest(req, false))
	if err != nil {
		return nil, wrapOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, &ProviderError{Provider: "openai", Message: "empty response"}
	}

	choice := resp.Choices[0]
	return &CompletionResponse{
		Content:    choice.Message.Content,
		StopReason: string(choice.FinishReason),
		Model:      resp.Model,
		Duration:   time.Since(start),
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

// Stream sends a streaming chat completion request.
func (o *OpenAIClient) Stream(ctx context.Context, req CompletionRequest) (<-chan StreamEvent, error) {
	stream, err := o.client.CreateChatCompletionStream(ctx, o.buildRequest(req, true))
	if err != nil {
		return nil, wrapOpenAIError(err)
	}

	eventChan := make(chan StreamEvent)
	go func() {
		defer close(eventChan)
		defer stream.Close()

		var full []byte
		for {
			chunk, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				eventChan <- StreamEvent{Type: "error", Error: err.Error()}
				return
			}
			for _, choice := range chunk.Choices {
				if choice.Delta.Content == "" {
					continue
				}
				full = append(full, choice.Delta.Content...)
				eventChan <- StreamEvent{Type: "delta", Content: choice.Delta.Content}
			}
		}

		eventChan <- StreamEvent{
			Type: "done",
			Response: &CompletionResponse{
				Content: string(full),
				Model:   o.model,
			},
		}
	}()
	return eventChan, nil
}

// Name returns the provider name.
func (o *OpenAIClient) Name() string {
	return "openai"
}

func (o *OpenAIClient) buildRequest(req CompletionRequest, stream bool) openai.ChatCompletionRequest {
	model := req.Model
	if model == "" {
		model = o.model
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	out := openai.ChatCompletionRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
		Stream:    stream,
	}
	if req.Temperature != nil {
		out.Temperature = float32(*req.Temperature)
	}
	return out
}

func wrapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{
			Provider: "openai",
			Message:  apiErr.Message,
			Code:     apiErr.HTTPStatusCode,
		}
	}
	return &ProviderError{Provider: "openai", Message: err.Error()}
}
