package engineer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/apexlabs/apexengineer/pkg/speech"
)

// NoResponseText is spoken when inference times out or fails. The driver
// always hears something after a query.
const NoResponseText = "Sorry, I'm having trouble generating a response."

// NoTranscriptText is spoken when capture or transcription fails after a
// release. Only a too-short capture stays silent.
const NoTranscriptText = "Sorry, I didn't catch that."

// TextSink receives response text for display.
type TextSink interface {
	EmitText(sessionID, text string) error
}

// TextSinkFunc is an adapter to allow the use of ordinary functions as
// TextSinks.
type TextSinkFunc func(sessionID, text string) error

// EmitText calls the underlying function.
func (f TextSinkFunc) EmitText(sessionID, text string) error {
	return f(sessionID, text)
}

// EmitterOption configures an Emitter.
type EmitterOption func(*Emitter)

// WithSpeech enables spoken responses through the given synthesizer route
// and output player.
func WithSpeech(syn speech.Synthesizer, route string, player speech.Player) EmitterOption {
	return func(e *Emitter) {
		e.tts = syn
		e.ttsRoute = route
		e.player = player
	}
}

// Emitter delivers responses: text synchronously, speech in a background
// goroutine so the voice loop is free for the next activation while the
// radio is still talking.
type Emitter struct {
	sink     TextSink
	tts      speech.Synthesizer
	ttsRoute string
	player   speech.Player

	wg sync.WaitGroup
}

// NewEmitter creates an Emitter writing to sink.
func NewEmitter(sink TextSink, opts ...EmitterOption) *Emitter {
	e := &Emitter{sink: sink}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Emit delivers text to the sink and, when speech is configured, starts
// synthesis and playback in the background. Synthesis failure degrades to
// text-only and is only logged.
func (e *Emitter) Emit(ctx context.Context, sessionID, text string) error {
	if err := e.sink.EmitText(sessionID, text); err != nil {
		return fmt.Errorf("engineer: emit text: %w", err)
	}
	if e.tts != nil && e.player != nil {
		e.wg.Add(1)
		go e.speak(ctx, sessionID, text)
	}
	return nil
}

func (e *Emitter) speak(ctx context.Context, sessionID, text string) {
	defer e.wg.Done()

	audio, format, err := e.tts.Synthesize(ctx, e.ttsRoute, text)
	if err != nil {
		slog.Warn("engineer: synthesis failed, response stays text-only",
			"session", sessionID, "err", err)
		return
	}
	defer audio.Close()

	if err := e.player.Play(ctx, audio, format); err != nil {
		slog.Warn("engineer: playback failed",
			"session", sessionID, "err", err)
	}
}

// Wait blocks until in-flight speech goroutines finish. Used on shutdown.
func (e *Emitter) Wait() {
	e.wg.Wait()
}
