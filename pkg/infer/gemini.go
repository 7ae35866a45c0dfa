package infer

import (
	"context"
	"fmt"
	"strings"

	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/genai"
)

// GeminiBackend answers queries through the Google Gemini API.
type GeminiBackend struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

var _ Backend = (*GeminiBackend)(nil)

// GeminiBackendOption is an option for configuring the GeminiBackend.
type GeminiBackendOption func(*GeminiBackend)

// WithGeminiModel sets the model. It should not start with "models/".
func WithGeminiModel(model string) GeminiBackendOption {
	return func(b *GeminiBackend) {
		b.model = model
	}
}

// WithGeminiMaxTokens caps the completion length.
func WithGeminiMaxTokens(n int32) GeminiBackendOption {
	return func(b *GeminiBackend) {
		b.maxTokens = n
	}
}

// NewGeminiBackend creates a GeminiBackend.
func NewGeminiBackend(client *genai.Client, opts ...GeminiBackendOption) *GeminiBackend {
	b := &GeminiBackend{
		client:    client,
		model:     "gemini-2.0-flash",
		maxTokens: 100,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Infer sends one generation request and returns the response text.
func (b *GeminiBackend) Infer(ctx context.Context, req *Request) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(SystemPrompt())},
		},
		MaxOutputTokens: b.maxTokens,
	}
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{genai.NewPartFromText(UserPrompt(req))},
	}}

	resp, err := b.client.Models.GenerateContent(ctx, b.model, contents, cfg)
	if err != nil {
		if e, ok := err.(*apierror.APIError); ok {
			err = e.Unwrap()
		}
		return "", fmt.Errorf("infer: gemini: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("infer: gemini: no candidates")
	}
	cand := resp.Candidates[0]
	if cand.Content == nil {
		return "", fmt.Errorf("infer: gemini: empty candidate, finish reason %s", cand.FinishReason)
	}
	var sb strings.Builder
	for _, p := range cand.Content.Parts {
		sb.WriteString(p.Text)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("infer: gemini: empty response")
	}
	return sb.String(), nil
}
