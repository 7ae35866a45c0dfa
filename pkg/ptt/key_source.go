package ptt

import (
	"context"
	"time"
)

// KeySource samples a key or button level via an injected probe function.
// The probe hides the platform-specific input hook; the source only decides
// when to sample it.
type KeySource struct {
	// Probe reports whether the bound input is currently held down.
	Probe func() bool

	// Interval is the polling period. Defaults to 10ms.
	Interval time.Duration
}

var _ Source = (*KeySource)(nil)

// Signals implements Source. It polls the probe until ctx is done.
func (s *KeySource) Signals(ctx context.Context) (<-chan Signal, error) {
	interval := s.Interval
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}

	ch := make(chan Signal, 8)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				select {
				case ch <- Signal{Down: s.Probe(), Time: now}:
				default:
					// Drop the sample rather than stall the poller.
				}
			}
		}
	}()
	return ch, nil
}
