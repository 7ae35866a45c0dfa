package ptt

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

// scriptedSource replays a fixed list of signals.
func scriptedSource(signals []Signal) Source {
	return SourceFunc(func(ctx context.Context) (<-chan Signal, error) {
		ch := make(chan Signal, len(signals))
		for _, s := range signals {
			ch <- s
		}
		close(ch)
		return ch, nil
	})
}

func collect(t *testing.T, d *Detector) []Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	var events []Event
	for ev := range d.Events() {
		events = append(events, ev)
	}
	<-done
	return events
}

func TestDetector_EdgeTriggered(t *testing.T) {
	base := time.UnixMilli(0)
	d := NewDetector(scriptedSource([]Signal{
		{Down: true, Time: base},
		{Down: true, Time: base.Add(100 * time.Millisecond)}, // sustained press
		{Down: true, Time: base.Add(200 * time.Millisecond)},
		{Down: false, Time: base.Add(2 * time.Second)},
	}))

	events := collect(t, d)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2: %v", len(events), events)
	}
	if events[0].Kind != Pressed || events[1].Kind != Released {
		t.Errorf("events = %v/%v, want pressed/released", events[0].Kind, events[1].Kind)
	}
}

func TestDetector_DebouncesFlutter(t *testing.T) {
	base := time.UnixMilli(0)
	// Press, then contact flutter well inside the 50ms window, then a real
	// release much later.
	d := NewDetector(scriptedSource([]Signal{
		{Down: true, Time: base},
		{Down: false, Time: base.Add(5 * time.Millisecond)},
		{Down: true, Time: base.Add(10 * time.Millisecond)},
		{Down: false, Time: base.Add(15 * time.Millisecond)},
		{Down: false, Time: base.Add(time.Second)},
	}))

	events := collect(t, d)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2: %v", len(events), events)
	}
	if events[0].Kind != Pressed {
		t.Errorf("first event = %v, want pressed", events[0].Kind)
	}
	if events[1].Kind != Released {
		t.Errorf("second event = %v, want released", events[1].Kind)
	}
}

func TestDetector_SettlesToHeldEdge(t *testing.T) {
	// An edge arriving inside the debounce window is delayed, not dropped.
	// With a toggle source that sends each level exactly once, dropping it
	// would leave the detector stuck at the stale level.
	ch := make(chan Signal, 4)
	src := SourceFunc(func(context.Context) (<-chan Signal, error) { return ch, nil })
	d := NewDetector(src, WithDebounce(20*time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	go d.Run(ctx)

	now := time.Now()
	ch <- Signal{Down: true, Time: now}
	ch <- Signal{Down: false, Time: now.Add(5 * time.Millisecond)}

	want := []Kind{Pressed, Released}
	for _, k := range want {
		select {
		case ev := <-d.Events():
			if ev.Kind != k {
				t.Fatalf("event = %v, want %v", ev.Kind, k)
			}
		case <-time.After(time.Second):
			t.Fatalf("never observed %v", k)
		}
	}
}

func TestDetector_DoubleToggleKeepsLevel(t *testing.T) {
	base := time.UnixMilli(0)
	// A release and re-press both inside the window cancel out; the later
	// real release must still come through.
	d := NewDetector(scriptedSource([]Signal{
		{Down: true, Time: base},
		{Down: false, Time: base.Add(5 * time.Millisecond)},
		{Down: true, Time: base.Add(10 * time.Millisecond)},
		{Down: false, Time: base.Add(500 * time.Millisecond)},
	}))

	events := collect(t, d)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2: %v", len(events), events)
	}
	if events[0].Kind != Pressed || events[1].Kind != Released {
		t.Errorf("events = %v/%v, want pressed/released", events[0].Kind, events[1].Kind)
	}
}

func TestDetector_ZeroDebounce(t *testing.T) {
	base := time.UnixMilli(0)
	d := NewDetector(scriptedSource([]Signal{
		{Down: true, Time: base},
		{Down: false, Time: base.Add(time.Millisecond)},
		{Down: true, Time: base.Add(2 * time.Millisecond)},
		{Down: false, Time: base.Add(3 * time.Millisecond)},
	}), WithDebounce(0))

	events := collect(t, d)
	if len(events) != 4 {
		t.Fatalf("got %d events, want 4 with zero debounce", len(events))
	}
}

func TestKeySource_Polls(t *testing.T) {
	var held atomic.Bool
	src := &KeySource{
		Probe:    held.Load,
		Interval: time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals, err := src.Signals(ctx)
	if err != nil {
		t.Fatalf("Signals error: %v", err)
	}

	held.Store(true)
	deadline := time.After(time.Second)
	for {
		select {
		case sig, ok := <-signals:
			if !ok {
				t.Fatal("signal channel closed early")
			}
			if sig.Down {
				return // saw the press
			}
		case <-deadline:
			t.Fatal("never observed a down signal")
		}
	}
}
