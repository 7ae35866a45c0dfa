// Package speech provides the transcription and synthesis layer of the
// voice loop: ASR turns captured PCM audio into driver queries, TTS turns
// engineer responses back into audio.
//
// Providers register themselves on the package-level muxes by name, so the
// rest of the pipeline routes by configuration string alone:
//
//	speech.HandleASR("openai", speech.NewOpenAITranscriber(client))
//	text, err := speech.Transcribe(ctx, "openai", audio, pcm.L16Mono16K)
package speech

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/apexlabs/apexengineer/pkg/audio/pcm"
)

// Transcriber converts a complete PCM capture into text. The name is the
// mux route the transcriber was registered under.
type Transcriber interface {
	Transcribe(ctx context.Context, name string, audio []byte, format pcm.Format) (string, error)
}

// TranscribeFunc is an adapter to allow the use of ordinary functions as
// Transcribers.
type TranscribeFunc func(ctx context.Context, name string, audio []byte, format pcm.Format) (string, error)

// Transcribe calls the underlying function.
func (f TranscribeFunc) Transcribe(ctx context.Context, name string, audio []byte, format pcm.Format) (string, error) {
	return f(ctx, name, audio, format)
}

// Synthesizer converts text into a PCM audio stream. The caller owns the
// returned stream and must close it.
type Synthesizer interface {
	Synthesize(ctx context.Context, name string, text string) (io.ReadCloser, pcm.Format, error)
}

// SynthesizeFunc is an adapter to allow the use of ordinary functions as
// Synthesizers.
type SynthesizeFunc func(ctx context.Context, name string, text string) (io.ReadCloser, pcm.Format, error)

// Synthesize calls the underlying function.
func (f SynthesizeFunc) Synthesize(ctx context.Context, name string, text string) (io.ReadCloser, pcm.Format, error) {
	return f(ctx, name, text)
}

// Player renders a PCM audio stream on an output device.
type Player interface {
	Play(ctx context.Context, audio io.Reader, format pcm.Format) error
}

// PlayFunc is an adapter to allow the use of ordinary functions as Players.
type PlayFunc func(ctx context.Context, audio io.Reader, format pcm.Format) error

// Play calls the underlying function.
func (f PlayFunc) Play(ctx context.Context, audio io.Reader, format pcm.Format) error {
	return f(ctx, audio, format)
}

// ASRMux is the default multiplexer for transcribers.
var ASRMux = NewASRMux()

// HandleASR registers a Transcriber for the given name with the default mux.
func HandleASR(name string, t Transcriber) {
	ASRMux.Handle(name, t)
}

// HandleASRFunc registers a TranscribeFunc for the given name with the default mux.
func HandleASRFunc(name string, f TranscribeFunc) {
	ASRMux.HandleFunc(name, f)
}

// Transcribe transcribes audio using the default mux.
func Transcribe(ctx context.Context, name string, audio []byte, format pcm.Format) (string, error) {
	return ASRMux.Transcribe(ctx, name, audio, format)
}

// ASR is a multiplexer for transcribers. It routes transcription requests to
// the transcriber registered under a name.
type ASR struct {
	mu  sync.RWMutex
	mux map[string]Transcriber
}

var _ Transcriber = (*ASR)(nil)

// NewASRMux creates and returns a new ASR multiplexer.
func NewASRMux() *ASR {
	return &ASR{mux: make(map[string]Transcriber)}
}

// Handle registers a Transcriber for the given name.
func (m *ASR) Handle(name string, t Transcriber) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.mux[name]; ok {
		slog.Warn("speech: transcriber already registered", "name", name)
	}
	m.mux[name] = t
}

// HandleFunc registers a TranscribeFunc for the given name.
func (m *ASR) HandleFunc(name string, f TranscribeFunc) {
	m.Handle(name, f)
}

// Transcribe dispatches the request to the transcriber registered for name.
func (m *ASR) Transcribe(ctx context.Context, name string, audio []byte, format pcm.Format) (string, error) {
	m.mu.RLock()
	t, ok := m.mux[name]
	m.mu.RUnlock()
	if !ok || t == nil {
		return "", fmt.Errorf("speech: transcriber not found for %s", name)
	}
	return t.Transcribe(ctx, name, audio, format)
}

// TTSMux is the default multiplexer for synthesizers.
var TTSMux = NewTTSMux()

// HandleTTS registers a Synthesizer for the given name with the default mux.
func HandleTTS(name string, s Synthesizer) {
	TTSMux.Handle(name, s)
}

// HandleTTSFunc registers a SynthesizeFunc for the given name with the default mux.
func HandleTTSFunc(name string, f SynthesizeFunc) {
	TTSMux.HandleFunc(name, f)
}

// Synthesize synthesizes speech using the default mux.
func Synthesize(ctx context.Context, name string, text string) (io.ReadCloser, pcm.Format, error) {
	return TTSMux.Synthesize(ctx, name, text)
}

// TTS is a multiplexer for synthesizers.
type TTS struct {
	mu  sync.RWMutex
	mux map[string]Synthesizer
}

var _ Synthesizer = (*TTS)(nil)

// NewTTSMux creates and returns a new TTS multiplexer.
func NewTTSMux() *TTS {
	return &TTS{mux: make(map[string]Synthesizer)}
}

// Handle registers a Synthesizer for the given name.
func (m *TTS) Handle(name string, s Synthesizer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.mux[name]; ok {
		slog.Warn("speech: synthesizer already registered", "name", name)
	}
	m.mux[name] = s
}

// HandleFunc registers a SynthesizeFunc for the given name.
func (m *TTS) HandleFunc(name string, f SynthesizeFunc) {
	m.Handle(name, f)
}

// Synthesize dispatches the request to the synthesizer registered for name.
func (m *TTS) Synthesize(ctx context.Context, name string, text string) (io.ReadCloser, pcm.Format, error) {
	m.mu.RLock()
	s, ok := m.mux[name]
	m.mu.RUnlock()
	if !ok || s == nil {
		return nil, 0, fmt.Errorf("speech: synthesizer not found for %s", name)
	}
	return s.Synthesize(ctx, name, text)
}
