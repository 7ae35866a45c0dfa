package speech

import (
	"context"
	"fmt"
	"io"

	"github.com/openai/openai-go"

	"github.com/apexlabs/apexengineer/pkg/audio/pcm"
)

// OpenAISynthesizer speaks responses through the OpenAI speech API. It
// requests raw PCM so playback needs no container parsing.
type OpenAISynthesizer struct {
	client *openai.Client
	model  string
	voice  openai.AudioSpeechNewParamsVoice
}

var _ Synthesizer = (*OpenAISynthesizer)(nil)

// OpenAISynthesizerOption is an option for configuring the OpenAISynthesizer.
type OpenAISynthesizerOption func(*OpenAISynthesizer)

// WithOpenAISynthesizerModel sets the speech model.
func WithOpenAISynthesizerModel(model string) OpenAISynthesizerOption {
	return func(s *OpenAISynthesizer) {
		s.model = model
	}
}

// WithOpenAISynthesizerVoice sets the voice.
func WithOpenAISynthesizerVoice(voice string) OpenAISynthesizerOption {
	return func(s *OpenAISynthesizer) {
		s.voice = openai.AudioSpeechNewParamsVoice(voice)
	}
}

// NewOpenAISynthesizer creates an OpenAISynthesizer. The defaults are the
// tts-1 model with the onyx voice.
func NewOpenAISynthesizer(client *openai.Client, opts ...OpenAISynthesizerOption) *OpenAISynthesizer {
	s := &OpenAISynthesizer{
		client: client,
		model:  string(openai.SpeechModelTTS1),
		voice:  openai.AudioSpeechNewParamsVoice("onyx"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize returns the spoken text as a 24kHz mono PCM stream.
func (s *OpenAISynthesizer) Synthesize(ctx context.Context, _ string, text string) (io.ReadCloser, pcm.Format, error) {
	resp, err := s.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(s.model),
		Voice:          s.voice,
		Input:          text,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatPCM,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("speech: openai synthesis: %w", err)
	}
	return resp.Body, pcm.L16Mono24K, nil
}
