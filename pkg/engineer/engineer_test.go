package engineer

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/apexlabs/apexengineer/pkg/audio/pcm"
	"github.com/apexlabs/apexengineer/pkg/briefing"
	"github.com/apexlabs/apexengineer/pkg/capture"
	"github.com/apexlabs/apexengineer/pkg/infer"
	"github.com/apexlabs/apexengineer/pkg/ptt"
	"github.com/apexlabs/apexengineer/pkg/speech"
)

type recordingSink struct {
	mu    sync.Mutex
	texts []string
	ch    chan string
}

func newRecordingSink() *recordingSink {
	return &recordingSink{ch: make(chan string, 8)}
}

func (s *recordingSink) EmitText(_, text string) error {
	s.mu.Lock()
	s.texts = append(s.texts, text)
	s.mu.Unlock()
	s.ch <- text
	return nil
}

func (s *recordingSink) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.texts...)
}

// endlessMic streams silence at roughly real-time rate until closed, like a
// held-open input device. Pacing matters: capture duration is derived from
// byte count.
type endlessMic struct{ closed chan struct{} }

func (m *endlessMic) Read(p []byte) (int, error) {
	select {
	case <-m.closed:
		return 0, io.EOF
	case <-time.After(5 * time.Millisecond):
	}
	n := min(len(p), int(pcm.L16Mono16K.BytesInDuration(5*time.Millisecond)))
	for i := range n {
		p[i] = 0
	}
	return n, nil
}

func (m *endlessMic) Close() error {
	select {
	case <-m.closed:
	default:
		close(m.closed)
	}
	return nil
}

func micDevice() capture.Device {
	return capture.DeviceFunc(func(context.Context) (io.ReadCloser, pcm.Format, error) {
		return &endlessMic{closed: make(chan struct{})}, pcm.L16Mono16K, nil
	})
}

type testRig struct {
	eng     *Engineer
	signals chan ptt.Signal
	sink    *recordingSink
	cancel  context.CancelFunc
	done    chan struct{}
}

type rigConfig struct {
	minCapture    time.Duration
	maxCapture    time.Duration
	backend       infer.InferFunc
	timeout       time.Duration
	transcript    string
	transcribeErr error
	device        capture.Device
}

func startRig(t *testing.T, rc rigConfig) *testRig {
	t.Helper()
	if rc.minCapture == 0 {
		rc.minCapture = time.Millisecond
	}
	if rc.maxCapture == 0 {
		rc.maxCapture = 5 * time.Second
	}
	if rc.timeout == 0 {
		rc.timeout = 2 * time.Second
	}
	if rc.transcript == "" {
		rc.transcript = "how are my tires"
	}
	if rc.backend == nil {
		rc.backend = func(context.Context, *infer.Request) (string, error) {
			return "Tires are fine, keep pushing.", nil
		}
	}

	if rc.device == nil {
		rc.device = micDevice()
	}

	signals := make(chan ptt.Signal, 8)
	src := ptt.SourceFunc(func(context.Context) (<-chan ptt.Signal, error) {
		return signals, nil
	})
	sink := newRecordingSink()

	transcript := rc.transcript
	eng, err := New(Config{
		Builder:  briefing.NewBuilder(),
		Detector: ptt.NewDetector(src, ptt.WithDebounce(0)),
		Recorder: capture.NewRecorder(rc.device,
			capture.WithMinDuration(rc.minCapture),
			capture.WithMaxDuration(rc.maxCapture)),
		Transcriber: speech.TranscribeFunc(func(_ context.Context, _ string, audio []byte, _ pcm.Format) (string, error) {
			if rc.transcribeErr != nil {
				return "", rc.transcribeErr
			}
			if len(audio) == 0 {
				t.Error("transcriber got empty audio")
			}
			return transcript, nil
		}),
		ASRRoute:   "test",
		Dispatcher: infer.NewDispatcher(rc.backend, infer.WithTimeout(rc.timeout)),
		Emitter:    NewEmitter(sink),
	})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := eng.Run(ctx); err != nil {
			t.Errorf("Run error: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("Run did not stop")
		}
	})
	return &testRig{eng: eng, signals: signals, sink: sink, cancel: cancel, done: done}
}

func (r *testRig) press()   { r.signals <- ptt.Signal{Down: true, Time: time.Now()} }
func (r *testRig) release() { r.signals <- ptt.Signal{Down: false, Time: time.Now()} }

func (r *testRig) waitText(t *testing.T) string {
	t.Helper()
	select {
	case text := <-r.sink.ch:
		return text
	case <-time.After(3 * time.Second):
		t.Fatal("no emission")
		return ""
	}
}

func (r *testRig) waitState(t *testing.T, want State) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if r.eng.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("state = %v, want %v", r.eng.State(), want)
}

func TestRun_PressAskRelease(t *testing.T) {
	rig := startRig(t, rigConfig{})

	rig.press()
	rig.waitState(t, StateAwaitingCapture)
	time.Sleep(50 * time.Millisecond)
	rig.release()

	if got := rig.waitText(t); got != "Tires are fine, keep pushing." {
		t.Errorf("emitted %q", got)
	}
	rig.waitState(t, StateIdle)

	sess, ok := rig.eng.Session()
	if !ok {
		t.Fatal("no session recorded")
	}
	if sess.Status != SessionCompleted {
		t.Errorf("session status = %v, want completed", sess.Status)
	}
	if sess.Query != "how are my tires" {
		t.Errorf("session query = %q", sess.Query)
	}
	if sess.ID == "" || sess.EndTime.IsZero() {
		t.Errorf("session not finalized: %+v", sess)
	}
}

func TestRun_TooShortCapture(t *testing.T) {
	rig := startRig(t, rigConfig{minCapture: 300 * time.Millisecond})

	rig.press()
	rig.waitState(t, StateAwaitingCapture)
	rig.release()
	rig.waitState(t, StateIdle)

	sess, ok := rig.eng.Session()
	if !ok {
		t.Fatal("no session recorded")
	}
	if sess.Status != SessionCancelled {
		t.Errorf("session status = %v, want cancelled", sess.Status)
	}
	if got := rig.sink.all(); len(got) != 0 {
		t.Errorf("short capture emitted %q, want silence", got)
	}
}

func TestRun_PressedDuringSessionIgnored(t *testing.T) {
	hold := make(chan struct{})
	rig := startRig(t, rigConfig{
		backend: func(ctx context.Context, _ *infer.Request) (string, error) {
			select {
			case <-hold:
				return "Box this lap.", nil
			case <-ctx.Done():
				return "", ctx.Err()
			}
		},
	})

	rig.press()
	rig.waitState(t, StateAwaitingCapture)
	time.Sleep(30 * time.Millisecond)
	rig.release()
	rig.waitState(t, StateAwaitingInference)

	// Mid-session activation must not open a second capture.
	rig.press()
	time.Sleep(50 * time.Millisecond)
	if got := rig.eng.State(); got != StateAwaitingInference {
		t.Fatalf("state after mid-session press = %v", got)
	}
	rig.release()

	close(hold)
	if got := rig.waitText(t); got != "Box this lap." {
		t.Errorf("emitted %q", got)
	}
	rig.waitState(t, StateIdle)

	if got := rig.sink.all(); len(got) != 1 {
		t.Errorf("emissions = %q, want exactly one", got)
	}
}

func TestRun_InferenceTimeoutEmitsFallback(t *testing.T) {
	rig := startRig(t, rigConfig{
		timeout: 100 * time.Millisecond,
		backend: func(ctx context.Context, _ *infer.Request) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	})

	rig.press()
	rig.waitState(t, StateAwaitingCapture)
	time.Sleep(30 * time.Millisecond)
	rig.release()

	if got := rig.waitText(t); got != NoResponseText {
		t.Errorf("emitted %q, want fallback", got)
	}
	rig.waitState(t, StateIdle)

	sess, _ := rig.eng.Session()
	if sess.Status != SessionFailed {
		t.Errorf("session status = %v, want failed", sess.Status)
	}
}

func TestRun_StuckButtonFinalizesAtCap(t *testing.T) {
	rig := startRig(t, rigConfig{maxCapture: 80 * time.Millisecond})

	rig.press()
	// Never released. The cap timer must finalize the session.
	if got := rig.waitText(t); got != "Tires are fine, keep pushing." {
		t.Errorf("emitted %q", got)
	}
	rig.waitState(t, StateIdle)
}

func TestRun_TranscriptionFailureNoDispatch(t *testing.T) {
	dispatched := make(chan struct{}, 1)
	rig := startRig(t, rigConfig{
		transcribeErr: errors.New("asr offline"),
		backend: func(context.Context, *infer.Request) (string, error) {
			dispatched <- struct{}{}
			return "should not happen", nil
		},
	})

	rig.press()
	rig.waitState(t, StateAwaitingCapture)
	time.Sleep(30 * time.Millisecond)
	rig.release()

	// The driver still hears an explicit failure line.
	if got := rig.waitText(t); got != NoTranscriptText {
		t.Errorf("emitted %q, want %q", got, NoTranscriptText)
	}
	rig.waitState(t, StateIdle)

	sess, _ := rig.eng.Session()
	if sess.Status != SessionFailed {
		t.Fatalf("session status = %v, want failed", sess.Status)
	}
	select {
	case <-dispatched:
		t.Error("failed transcription still dispatched")
	default:
	}
	if got := rig.sink.all(); len(got) != 1 {
		t.Errorf("emissions = %q, want exactly the failure line", got)
	}
}

// brokenMic delivers a little audio and then fails mid-stream.
type brokenMic struct {
	reads int
}

func (m *brokenMic) Read(p []byte) (int, error) {
	m.reads++
	if m.reads > 2 {
		return 0, errors.New("mic unplugged")
	}
	time.Sleep(5 * time.Millisecond)
	n := pcm.L16Mono16K.BytesInDuration(5 * time.Millisecond)
	if int64(len(p)) < n {
		n = int64(len(p))
	}
	return int(n), nil
}

func (m *brokenMic) Close() error { return nil }

func TestRun_DeviceFailureEmitsFallback(t *testing.T) {
	rig := startRig(t, rigConfig{
		device: capture.DeviceFunc(func(context.Context) (io.ReadCloser, pcm.Format, error) {
			return &brokenMic{}, pcm.L16Mono16K, nil
		}),
	})

	rig.press()
	rig.waitState(t, StateAwaitingCapture)
	time.Sleep(50 * time.Millisecond)
	rig.release()

	if got := rig.waitText(t); got != NoTranscriptText {
		t.Errorf("emitted %q, want %q", got, NoTranscriptText)
	}
	rig.waitState(t, StateIdle)

	sess, _ := rig.eng.Session()
	if sess.Status != SessionFailed {
		t.Errorf("session status = %v, want failed", sess.Status)
	}
}

func TestRun_ConcurrentSessionReads(t *testing.T) {
	rig := startRig(t, rigConfig{})

	stop := make(chan struct{})
	var readers sync.WaitGroup
	for i := 0; i < 4; i++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				rig.eng.State()
				if sess, ok := rig.eng.Session(); ok {
					// A terminal session always carries its end time.
					if sess.Status.Terminal() && sess.EndTime.IsZero() {
						t.Error("terminal session without end time")
						return
					}
				}
			}
		}()
	}

	for i := 0; i < 3; i++ {
		rig.press()
		rig.waitState(t, StateAwaitingCapture)
		time.Sleep(20 * time.Millisecond)
		rig.release()
		rig.waitText(t)
		rig.waitState(t, StateIdle)
	}

	close(stop)
	readers.Wait()
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{})
	if err == nil {
		t.Fatal("New with empty config returned nil error")
	}
}

func TestAsk(t *testing.T) {
	backend := infer.InferFunc(func(_ context.Context, req *infer.Request) (string, error) {
		if req.Query != "fuel to the end?" {
			t.Errorf("Query = %q", req.Query)
		}
		return "You're good on fuel.", nil
	})
	eng, err := New(Config{
		Builder:     briefing.NewBuilder(),
		Detector:    ptt.NewDetector(ptt.SourceFunc(func(context.Context) (<-chan ptt.Signal, error) { return nil, nil })),
		Recorder:    capture.NewRecorder(micDevice()),
		Transcriber: speech.TranscribeFunc(func(context.Context, string, []byte, pcm.Format) (string, error) { return "", nil }),
		Dispatcher:  infer.NewDispatcher(backend),
		Emitter:     NewEmitter(newRecordingSink()),
	})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	got, err := eng.Ask(context.Background(), "fuel to the end?")
	if err != nil {
		t.Fatalf("Ask error: %v", err)
	}
	if got != "You're good on fuel." {
		t.Errorf("Ask = %q", got)
	}
}
