package speech

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"

	"github.com/apexlabs/apexengineer/pkg/audio/pcm"
)

// OpenAITranscriber transcribes captures through the OpenAI audio
// transcription API. It also covers whisper servers exposing an
// OpenAI-compatible endpoint via the client's base URL.
type OpenAITranscriber struct {
	client *openai.Client
	model  string
}

var _ Transcriber = (*OpenAITranscriber)(nil)

// OpenAITranscriberOption is an option for configuring the OpenAITranscriber.
type OpenAITranscriberOption func(*OpenAITranscriber)

// WithOpenAITranscriberModel sets the transcription model.
func WithOpenAITranscriberModel(model string) OpenAITranscriberOption {
	return func(t *OpenAITranscriber) {
		t.model = model
	}
}

// NewOpenAITranscriber creates an OpenAITranscriber. The default model is
// whisper-1.
func NewOpenAITranscriber(client *openai.Client, opts ...OpenAITranscriberOption) *OpenAITranscriber {
	t := &OpenAITranscriber{
		client: client,
		model:  string(openai.AudioModelWhisper1),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transcribe uploads the capture as a WAV file and returns the transcript.
func (t *OpenAITranscriber) Transcribe(ctx context.Context, _ string, audio []byte, format pcm.Format) (string, error) {
	wav := EncodeWAV(format, audio)
	resp, err := t.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(wav), "capture.wav", "audio/wav"),
		Model: openai.AudioModel(t.model),
	})
	if err != nil {
		return "", fmt.Errorf("speech: openai transcription: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}
