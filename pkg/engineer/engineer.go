// Package engineer runs the voice race-engineer loop: continuous telemetry
// sampling on one side, push-to-talk voice sessions on the other. A single
// goroutine owns session state, so activations arriving mid-session are
// observed and ignored rather than queued.
package engineer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/apexlabs/apexengineer/pkg/briefing"
	"github.com/apexlabs/apexengineer/pkg/capture"
	"github.com/apexlabs/apexengineer/pkg/infer"
	"github.com/apexlabs/apexengineer/pkg/ptt"
	"github.com/apexlabs/apexengineer/pkg/speech"
	"github.com/apexlabs/apexengineer/pkg/telemetry"
)

// Config wires the pipeline components. Sampler is optional; everything
// else is required.
type Config struct {
	Sampler     *telemetry.Sampler
	Builder     *briefing.Builder
	Detector    *ptt.Detector
	Recorder    *capture.Recorder
	Transcriber speech.Transcriber
	ASRRoute    string
	Dispatcher  *infer.Dispatcher
	Emitter     *Emitter
}

// Engineer is the orchestrator of the interaction pipeline.
type Engineer struct {
	cfg Config

	mu      sync.Mutex
	state   State
	session *VoiceSession
}

// New creates an Engineer. Missing required components are a configuration
// error, not a runtime surprise.
func New(cfg Config) (*Engineer, error) {
	switch {
	case cfg.Builder == nil:
		return nil, errors.New("engineer: briefing builder is required")
	case cfg.Detector == nil:
		return nil, errors.New("engineer: activation detector is required")
	case cfg.Recorder == nil:
		return nil, errors.New("engineer: capture recorder is required")
	case cfg.Transcriber == nil:
		return nil, errors.New("engineer: transcriber is required")
	case cfg.Dispatcher == nil:
		return nil, errors.New("engineer: inference dispatcher is required")
	case cfg.Emitter == nil:
		return nil, errors.New("engineer: emitter is required")
	}
	return &Engineer{cfg: cfg}, nil
}

// State returns the current loop state.
func (e *Engineer) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Session returns a copy of the current or most recent voice session, or
// false when no session has started yet.
func (e *Engineer) Session() (VoiceSession, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return VoiceSession{}, false
	}
	return *e.session, true
}

func (e *Engineer) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

func (e *Engineer) setSession(s *VoiceSession) {
	e.mu.Lock()
	e.session = s
	e.mu.Unlock()
}

// updateSession mutates the published session under the lock. Session()
// copies under the same lock, so readers never observe a torn write.
func (e *Engineer) updateSession(fn func(*VoiceSession)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		fn(e.session)
	}
}

// Ask answers a one-shot text query against the current race context,
// bypassing the voice path.
func (e *Engineer) Ask(ctx context.Context, query string) (string, error) {
	res := e.cfg.Dispatcher.Dispatch(ctx, uuid.NewString(), query, e.cfg.Builder.Current())
	switch res.Status {
	case infer.StatusSuccess:
		return res.Text, nil
	case infer.StatusTimeout:
		return "", fmt.Errorf("engineer: inference timed out after %v", res.Latency)
	default:
		return "", fmt.Errorf("engineer: inference failed: %w", res.Err)
	}
}

// workResult carries progress from the session worker back to the event
// loop. Interim results move the state machine; final ones close the
// session.
type workResult struct {
	final  bool
	status SessionStatus
	query  string
	emit   string
}

// Run drives the loop until ctx is cancelled. The sampler and detector run
// as children; their lifetime is bounded by this call.
func (e *Engineer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	// Unwind order: stop children, drain speech, join goroutines.
	var wg sync.WaitGroup
	defer wg.Wait()
	defer e.cfg.Emitter.Wait()
	defer cancel()

	if e.cfg.Sampler != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.cfg.Sampler.Run(ctx)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := e.cfg.Detector.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("engineer: activation detector stopped", "err", err)
		}
	}()

	var (
		events    = e.cfg.Detector.Events()
		results   = make(chan workResult)
		sess      *VoiceSession
		cs        *capture.Session
		capTimer  *time.Timer
		capExpiry <-chan time.Time
	)
	stopTimer := func() {
		if capTimer != nil {
			capTimer.Stop()
			capTimer, capExpiry = nil, nil
		}
	}
	defer stopTimer()

	finalize := func() {
		stopTimer()
		e.setState(StateAwaitingTranscription)
		e.updateSession(func(s *VoiceSession) { s.Status = SessionTranscribing })
		go e.process(ctx, sess.ID, cs, results)
		cs = nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev.Kind {
			case ptt.Pressed:
				if e.State() != StateIdle {
					slog.Debug("engineer: activation ignored, session in flight",
						"state", e.State())
					continue
				}
				c, err := e.cfg.Recorder.Begin(ctx)
				if err != nil {
					slog.Error("engineer: capture did not start", "err", err)
					continue
				}
				cs = c
				sess = newVoiceSession(ev.Time)
				e.setSession(sess)
				e.setState(StateAwaitingCapture)
				capTimer = time.NewTimer(e.cfg.Recorder.MaxDuration())
				capExpiry = capTimer.C
				slog.Info("engineer: listening", "session", sess.ID)

			case ptt.Released:
				if e.State() != StateAwaitingCapture {
					continue
				}
				finalize()
			}

		case <-capExpiry:
			if e.State() != StateAwaitingCapture {
				capTimer, capExpiry = nil, nil
				continue
			}
			slog.Warn("engineer: capture cap reached, finalizing", "session", sess.ID)
			finalize()

		case r := <-results:
			if !r.final {
				e.updateSession(func(s *VoiceSession) {
					s.Query = r.query
					s.Status = SessionDispatched
				})
				e.setState(StateAwaitingInference)
				continue
			}
			e.updateSession(func(s *VoiceSession) {
				s.Status = r.status
				s.EndTime = time.Now()
			})
			if r.emit != "" {
				e.setState(StateResponding)
				if err := e.cfg.Emitter.Emit(ctx, sess.ID, r.emit); err != nil {
					slog.Error("engineer: emission failed", "session", sess.ID, "err", err)
				}
			}
			e.setState(StateIdle)
			sess = nil
		}
	}
}

// process runs one session from capture finalization to a final result. It
// owns the slow path so the event loop stays responsive.
func (e *Engineer) process(ctx context.Context, sessionID string, cs *capture.Session, results chan<- workResult) {
	send := func(r workResult) {
		select {
		case results <- r:
		case <-ctx.Done():
		}
	}

	audio, err := cs.End()
	if err != nil {
		if errors.Is(err, capture.ErrTooShort) {
			send(workResult{final: true, status: SessionCancelled})
			return
		}
		slog.Error("engineer: capture failed", "session", sessionID, "err", err)
		send(workResult{final: true, status: SessionFailed, emit: NoTranscriptText})
		return
	}

	text, err := e.cfg.Transcriber.Transcribe(ctx, e.cfg.ASRRoute, audio, capture.TargetFormat)
	if err != nil {
		slog.Error("engineer: transcription failed", "session", sessionID, "err", err)
		send(workResult{final: true, status: SessionFailed, emit: NoTranscriptText})
		return
	}
	if text == "" {
		slog.Debug("engineer: empty transcript, nothing to dispatch", "session", sessionID)
		send(workResult{final: true, status: SessionCancelled})
		return
	}
	slog.Info("engineer: driver query", "session", sessionID, "query", text)
	send(workResult{query: text})

	// Context is read here, not at capture time, so the answer reflects
	// the car as it is now.
	res := e.cfg.Dispatcher.Dispatch(ctx, sessionID, text, e.cfg.Builder.Current())
	switch res.Status {
	case infer.StatusSuccess:
		send(workResult{final: true, status: SessionCompleted, emit: res.Text})
	case infer.StatusTimeout:
		slog.Warn("engineer: inference timed out", "session", sessionID, "after", res.Latency)
		send(workResult{final: true, status: SessionFailed, emit: NoResponseText})
	default:
		slog.Error("engineer: inference failed", "session", sessionID, "err", res.Err)
		send(workResult{final: true, status: SessionFailed, emit: NoResponseText})
	}
}
