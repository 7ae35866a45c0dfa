package infer

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/param"
)

// OpenAIBackend answers queries through the OpenAI chat completions API.
// Pointing the client's base URL at an Ollama or other OpenAI-compatible
// server covers local models with the same code path.
type OpenAIBackend struct {
	client      *openai.Client
	model       string
	maxTokens   int64
	temperature float64
}

var _ Backend = (*OpenAIBackend)(nil)

// OpenAIBackendOption is an option for configuring the OpenAIBackend.
type OpenAIBackendOption func(*OpenAIBackend)

// WithOpenAIModel sets the chat model.
func WithOpenAIModel(model string) OpenAIBackendOption {
	return func(b *OpenAIBackend) {
		b.model = model
	}
}

// WithOpenAIMaxTokens caps the completion length.
func WithOpenAIMaxTokens(n int64) OpenAIBackendOption {
	return func(b *OpenAIBackend) {
		b.maxTokens = n
	}
}

// WithOpenAITemperature sets the sampling temperature.
func WithOpenAITemperature(t float64) OpenAIBackendOption {
	return func(b *OpenAIBackend) {
		b.temperature = t
	}
}

// NewOpenAIBackend creates an OpenAIBackend. Short completions suit radio
// traffic, so the default caps output at 100 tokens.
func NewOpenAIBackend(client *openai.Client, opts ...OpenAIBackendOption) *OpenAIBackend {
	b := &OpenAIBackend{
		client:      client,
		model:       openai.ChatModelGPT4oMini,
		maxTokens:   100,
		temperature: 0.7,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Infer sends one chat completion and returns the response text.
func (b *OpenAIBackend) Infer(ctx context.Context, req *Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: b.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt()),
			openai.UserMessage(UserPrompt(req)),
		},
		MaxCompletionTokens: param.NewOpt(b.maxTokens),
		Temperature:         param.NewOpt(b.temperature),
	}
	resp, err := b.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("infer: openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("infer: openai: no choices")
	}
	msg := resp.Choices[0].Message
	if msg.Refusal != "" {
		return "", fmt.Errorf("infer: openai: blocked: %s", msg.Refusal)
	}
	if msg.Content == "" {
		return "", fmt.Errorf("infer: openai: empty response")
	}
	return msg.Content, nil
}
