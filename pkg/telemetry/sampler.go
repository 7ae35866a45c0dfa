package telemetry

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const (
	// DefaultInterval is the default sampling period (10 Hz).
	DefaultInterval = 100 * time.Millisecond

	// DefaultReadTimeout bounds a single source read. A read exceeding it
	// is treated as unavailable for that tick, not fatal.
	DefaultReadTimeout = 50 * time.Millisecond

	// DefaultHistorySize is the default rolling history capacity.
	DefaultHistorySize = 10
)

// SamplerOption configures a Sampler.
type SamplerOption func(*Sampler)

// WithInterval sets the sampling period.
func WithInterval(d time.Duration) SamplerOption {
	return func(s *Sampler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithReadTimeout sets the per-read timeout.
func WithReadTimeout(d time.Duration) SamplerOption {
	return func(s *Sampler) {
		if d > 0 {
			s.readTimeout = d
		}
	}
}

// WithObserver registers a callback invoked synchronously after every
// appended snapshot, while no other append can interleave. The briefing
// builder hooks in here so summaries are never older than the latest tick.
func WithObserver(fn func(*History)) SamplerOption {
	return func(s *Sampler) {
		s.observe = fn
	}
}

// Sampler polls a Reader on a fixed period and appends snapshots to a
// History. On read failure it emits synthetic snapshots from a MockReader
// at the same rate (degraded mode), so downstream components always see a
// steady stream.
type Sampler struct {
	reader   Reader
	fallback *MockReader
	history  *History

	interval    time.Duration
	readTimeout time.Duration
	observe     func(*History)

	// degraded is read concurrently with the sampling loop.
	degraded atomic.Bool
}

// NewSampler creates a Sampler feeding the given history from reader.
func NewSampler(reader Reader, history *History, opts ...SamplerOption) *Sampler {
	s := &Sampler{
		reader:      reader,
		fallback:    NewMockReader(uint64(time.Now().UnixNano())),
		history:     history,
		interval:    DefaultInterval,
		readTimeout: DefaultReadTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// History returns the history the sampler writes to.
func (s *Sampler) History() *History {
	return s.history
}

// Degraded reports whether the last tick used synthetic data.
func (s *Sampler) Degraded() bool {
	return s.degraded.Load()
}

// Run samples until ctx is done. It never returns early on read failures.
func (s *Sampler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Sampler) tick(ctx context.Context) {
	rctx, cancel := context.WithTimeout(ctx, s.readTimeout)
	snap, err := s.reader.Read(rctx)
	cancel()

	if err != nil {
		if !s.degraded.Swap(true) {
			slog.Warn("telemetry: source unavailable, switching to synthetic data", "err", err)
		}
		snap, _ = s.fallback.Read(ctx)
	} else if s.degraded.Swap(false) {
		slog.Info("telemetry: source recovered")
	}

	if !s.history.Append(snap) {
		slog.Debug("telemetry: dropped out-of-order snapshot", "t", snap.Time)
		return
	}
	if s.observe != nil {
		s.observe(s.history)
	}
}
