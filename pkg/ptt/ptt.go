// Package ptt turns a raw push-to-talk input into clean, edge-triggered
// activation events.
//
// A Source delivers raw level signals (down/up) from whatever hardware is
// bound (a keyboard key, a wheel button) and may be noisy. The Detector
// debounces the stream and emits exactly one Pressed per physical press and
// one Released per release.
package ptt

import (
	"context"
	"time"
)

// Kind discriminates activation events.
type Kind int

const (
	// Pressed fires once when the push-to-talk input goes down.
	Pressed Kind = iota
	// Released fires once when the push-to-talk input comes up.
	Released
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case Pressed:
		return "pressed"
	case Released:
		return "released"
	}
	return "unknown"
}

// Event is a single edge-triggered activation event.
type Event struct {
	Kind Kind
	Time time.Time
}

// Signal is a raw level sample from an input source. Repeated samples at
// the same level are permitted; the Detector collapses them.
type Signal struct {
	Down bool
	Time time.Time
}

// Source emits raw press/release signals. The returned channel is closed
// when ctx is done or the source shuts down.
type Source interface {
	Signals(ctx context.Context) (<-chan Signal, error)
}

// SourceFunc is an adapter to allow the use of ordinary functions as Sources.
type SourceFunc func(ctx context.Context) (<-chan Signal, error)

// Signals calls the underlying function.
func (f SourceFunc) Signals(ctx context.Context) (<-chan Signal, error) {
	return f(ctx)
}

// DefaultDebounce collapses switch flutter faster than this into a single
// transition.
const DefaultDebounce = 50 * time.Millisecond

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithDebounce sets the debounce window.
func WithDebounce(d time.Duration) DetectorOption {
	return func(det *Detector) {
		if d >= 0 {
			det.debounce = d
		}
	}
}

// Detector converts a noisy Source into debounced edge events.
type Detector struct {
	src      Source
	debounce time.Duration
	events   chan Event
}

// NewDetector creates a Detector over src.
func NewDetector(src Source, opts ...DetectorOption) *Detector {
	d := &Detector{
		src:      src,
		debounce: DefaultDebounce,
		events:   make(chan Event, 8),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Events returns the stream of activation events. The channel is closed
// when Run returns.
func (d *Detector) Events() <-chan Event {
	return d.events
}

// Run consumes the source until ctx is done, emitting debounced edges.
func (d *Detector) Run(ctx context.Context) error {
	defer close(d.events)

	signals, err := d.src.Signals(ctx)
	if err != nil {
		return err
	}

	var (
		down     bool
		lastEdge time.Time

		// pending holds the last level seen inside the debounce window.
		// The detector settles to it when the window elapses, so a held
		// edge is delayed rather than lost.
		pending     Signal
		havePending bool
	)

	settle := time.NewTimer(time.Hour)
	settle.Stop()
	defer settle.Stop()

	emit := func(sig Signal) error {
		down = sig.Down
		lastEdge = sig.Time

		kind := Released
		if down {
			kind = Pressed
		}
		select {
		case d.events <- Event{Kind: kind, Time: sig.Time}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-settle.C:
			if !havePending {
				continue
			}
			havePending = false
			if pending.Down != down {
				if err := emit(pending); err != nil {
					return err
				}
			}
		case sig, ok := <-signals:
			if !ok {
				if havePending && pending.Down != down {
					return emit(pending)
				}
				return nil
			}
			if havePending {
				pending = sig
				continue
			}
			if sig.Down == down {
				continue
			}
			if !lastEdge.IsZero() && sig.Time.Sub(lastEdge) < d.debounce {
				pending = sig
				havePending = true
				settle.Reset(d.debounce - sig.Time.Sub(lastEdge))
				continue
			}
			if err := emit(sig); err != nil {
				return err
			}
		}
	}
}
