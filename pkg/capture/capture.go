// Package capture owns the lifecycle of one push-to-talk recording: start
// streaming on activation, finalize on release, and hand the audio off for
// transcription in a normalized format.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/apexlabs/apexengineer/pkg/audio/pcm"
	"github.com/apexlabs/apexengineer/pkg/audio/resampler"
)

var (
	// ErrTooShort marks a capture below the minimum duration. It is a
	// quiet no-op for the driver, logged but never announced.
	ErrTooShort = errors.New("capture: too short")

	// ErrDevice wraps audio device failures.
	ErrDevice = errors.New("capture: device error")
)

const (
	// DefaultMinDuration is the shortest capture worth transcribing.
	DefaultMinDuration = 300 * time.Millisecond

	// DefaultMaxDuration bounds a recording against a stuck button.
	DefaultMaxDuration = 15 * time.Second

	// TargetFormat is the normalized output format handed to transcription.
	TargetFormat = pcm.L16Mono16K
)

// Device opens a raw 16-bit PCM stream from an audio input. The stream ends
// when closed by the caller or when the device fails.
type Device interface {
	Start(ctx context.Context) (io.ReadCloser, pcm.Format, error)
}

// DeviceFunc is an adapter to allow the use of ordinary functions as Devices.
type DeviceFunc func(ctx context.Context) (io.ReadCloser, pcm.Format, error)

// Start calls the underlying function.
func (f DeviceFunc) Start(ctx context.Context) (io.ReadCloser, pcm.Format, error) {
	return f(ctx)
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithMinDuration sets the minimum capture duration.
func WithMinDuration(d time.Duration) RecorderOption {
	return func(r *Recorder) {
		if d > 0 {
			r.min = d
		}
	}
}

// WithMaxDuration sets the maximum capture duration.
func WithMaxDuration(d time.Duration) RecorderOption {
	return func(r *Recorder) {
		if d > 0 {
			r.max = d
		}
	}
}

// Recorder creates capture sessions against one device.
type Recorder struct {
	dev Device
	min time.Duration
	max time.Duration
}

// NewRecorder creates a Recorder for dev.
func NewRecorder(dev Device, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		dev: dev,
		min: DefaultMinDuration,
		max: DefaultMaxDuration,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MaxDuration returns the configured capture cap.
func (r *Recorder) MaxDuration() time.Duration {
	return r.max
}

// Begin opens the device and streams audio into an in-memory buffer until
// End is called or the duration cap is hit. The cap is enforced on the byte
// stream itself, so a stuck End can never grow the buffer past it.
func (r *Recorder) Begin(ctx context.Context) (*Session, error) {
	stream, format, err := r.dev.Start(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDevice, err)
	}

	s := &Session{
		recorder: r,
		stream:   stream,
		format:   format,
		start:    time.Now(),
		done:     make(chan struct{}),
	}
	go s.pump()
	return s, nil
}

// Session is one in-flight recording. Exactly one of End or the duration
// cap finalizes it.
type Session struct {
	recorder *Recorder
	stream   io.ReadCloser
	format   pcm.Format
	start    time.Time

	done chan struct{}

	mu      sync.Mutex
	buf     bytes.Buffer
	readErr error
	ended   bool
}

// pump copies device audio into the buffer, bounded by the duration cap.
func (s *Session) pump() {
	defer close(s.done)

	limit := s.format.BytesInDuration(s.recorder.max)
	limited := io.LimitReader(s.stream, limit)

	chunk := make([]byte, s.format.BytesRate()/10) // 100ms
	for {
		n, err := limited.Read(chunk)
		if n > 0 {
			s.mu.Lock()
			s.buf.Write(chunk[:n])
			s.mu.Unlock()
		}
		if err != nil {
			if err != io.EOF {
				s.mu.Lock()
				s.readErr = err
				s.mu.Unlock()
			}
			return
		}
	}
}

// Start returns the wall-clock time the capture began.
func (s *Session) Start() time.Time {
	return s.start
}

// End stops the capture and returns the audio normalized to TargetFormat.
// Returns ErrTooShort for captures below the minimum duration and ErrDevice
// for device failures. End is idempotent; later calls return ErrDevice.
func (s *Session) End() ([]byte, error) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: session already finalized", ErrDevice)
	}
	s.ended = true
	s.mu.Unlock()

	// Stop the device stream; pump sees EOF (or the close error) and exits.
	closeErr := s.stream.Close()
	<-s.done

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrDevice, s.readErr)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrDevice, closeErr)
	}

	raw := s.buf.Bytes()
	captured := s.format.Duration(int64(len(raw)))
	if captured < s.recorder.min {
		slog.Debug("capture: discarding short capture",
			"duration", captured, "min", s.recorder.min)
		return nil, ErrTooShort
	}

	if s.format == TargetFormat {
		return raw, nil
	}
	return normalize(raw, s.format)
}

// normalize resamples raw audio to TargetFormat.
func normalize(raw []byte, from pcm.Format) ([]byte, error) {
	r, err := resampler.New(bytes.NewReader(raw),
		resampler.FromPCM(from), resampler.FromPCM(TargetFormat))
	if err != nil {
		return nil, fmt.Errorf("capture: normalize: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("capture: normalize: %w", err)
	}
	return out, nil
}
