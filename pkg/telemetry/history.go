package telemetry

import (
	"sync"
)

// History is a fixed-capacity ring of the most recent snapshots. The oldest
// entry is evicted when capacity is exceeded. Timestamps are monotonically
// non-decreasing: an append older than the latest entry is dropped.
//
// The Sampler is the sole writer; all other components read copies.
type History struct {
	mu   sync.RWMutex
	buf  []Snapshot
	head int // index of the oldest entry
	size int
}

// NewHistory creates a History holding up to capacity snapshots.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 1
	}
	return &History{buf: make([]Snapshot, capacity)}
}

// Append adds a snapshot, evicting the oldest entry when full. Snapshots
// older than the latest entry are dropped to keep timestamps non-decreasing.
// Reports whether the snapshot was kept.
func (h *History) Append(s Snapshot) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.size > 0 {
		latest := h.buf[(h.head+h.size-1)%len(h.buf)]
		if s.Time.Before(latest.Time) {
			return false
		}
	}

	if h.size < len(h.buf) {
		h.buf[(h.head+h.size)%len(h.buf)] = s
		h.size++
		return true
	}
	h.buf[h.head] = s
	h.head = (h.head + 1) % len(h.buf)
	return true
}

// Latest returns the most recent snapshot, if any.
func (h *History) Latest() (Snapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.size == 0 {
		return Snapshot{}, false
	}
	return h.buf[(h.head+h.size-1)%len(h.buf)], true
}

// Snapshots returns a copy of the buffered snapshots, oldest first.
func (h *History) Snapshots() []Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Snapshot, h.size)
	for i := range h.size {
		out[i] = h.buf[(h.head+i)%len(h.buf)]
	}
	return out
}

// Len returns the number of buffered snapshots.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}

// Cap returns the capacity of the history.
func (h *History) Cap() int {
	return len(h.buf)
}
