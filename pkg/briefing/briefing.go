// Package briefing derives compact natural-language race context from the
// telemetry history. The derived Summary is what the inference layer embeds
// in the prompt sent to the AI backend.
package briefing

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/apexlabs/apexengineer/pkg/telemetry"
)

// Summary is a versioned digest of recent telemetry. DerivedAt is always
// at or after SnapshotTime: a summary never claims to be newer than the
// data it was derived from.
type Summary struct {
	Text         string
	DerivedAt    time.Time
	SnapshotTime time.Time
}

// Empty reports whether the summary carries no data.
func (s Summary) Empty() bool {
	return s.Text == ""
}

// Builder recomputes a Summary from the telemetry history on every sample
// and serves the latest one without blocking. Derivation is a pure function
// of the history contents.
type Builder struct {
	mu  sync.RWMutex
	cur Summary
}

// NewBuilder creates an empty Builder. Current() returns a zero Summary
// until the first Observe.
func NewBuilder() *Builder {
	return &Builder{}
}

// Observe recomputes the summary from the history. The Sampler calls this
// synchronously after each appended snapshot.
func (b *Builder) Observe(h *telemetry.History) {
	sum := Derive(h.Snapshots(), time.Now())
	b.mu.Lock()
	b.cur = sum
	b.mu.Unlock()
}

// Current returns the most recently derived summary. Non-blocking.
func (b *Builder) Current() Summary {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cur
}

// Derive computes a Summary from snapshots ordered oldest first. It is
// deterministic given the same inputs.
func Derive(snaps []telemetry.Snapshot, now time.Time) Summary {
	if len(snaps) == 0 {
		return Summary{Text: "No telemetry data available.", DerivedAt: now}
	}

	cur := snaps[len(snaps)-1]
	best, haveBest := bestLap(snaps)

	var parts []string
	parts = append(parts,
		fmt.Sprintf("Speed: %.1f km/h", cur.Speed),
		fmt.Sprintf("Gear: %d", cur.Gear),
		fmt.Sprintf("RPM: %d", cur.RPM))

	if cur.LapTime > 0 {
		parts = append(parts, fmt.Sprintf("Current lap time: %.2fs", cur.LapTime))
	}
	if haveBest {
		parts = append(parts, fmt.Sprintf("Best lap time: %.2fs", best))
		if cur.LapTime > 0 {
			parts = append(parts, fmt.Sprintf("Delta: %+.2fs", cur.LapTime-best))
		}
	}

	parts = append(parts,
		fmt.Sprintf("Fuel: %.1fL", cur.Fuel),
		fmt.Sprintf("Avg tire temp: %.1f°C", cur.AvgTireTemp()))

	if cur.Position > 0 {
		parts = append(parts, fmt.Sprintf("Position: P%d", cur.Position))
	}

	if trend := tireTrend(snaps); trend != "" {
		parts = append(parts, "Tire temps "+trend)
	}
	if burn, ok := fuelBurn(snaps); ok && burn > 0 {
		parts = append(parts, fmt.Sprintf("Fuel used over last samples: %.2fL", burn))
	}

	snapTime := cur.Time.Time()
	derivedAt := now
	if derivedAt.Before(snapTime) {
		derivedAt = snapTime
	}
	return Summary{
		Text:         strings.Join(parts, ". ") + ".",
		DerivedAt:    derivedAt,
		SnapshotTime: snapTime,
	}
}

// bestLap returns the minimum positive best-or-current lap time in the
// history. Ties are broken by the earliest snapshot, which the oldest-first
// scan gives for free.
func bestLap(snaps []telemetry.Snapshot) (float64, bool) {
	best := 0.0
	for _, s := range snaps {
		for _, lap := range [2]float64{s.BestLapTime, s.LapTime} {
			if lap > 0 && (best == 0 || lap < best) {
				best = lap
			}
		}
	}
	return best, best > 0
}

// tireTrend reports "increasing" or "decreasing" over the last 3 samples.
func tireTrend(snaps []telemetry.Snapshot) string {
	if len(snaps) < 3 {
		return ""
	}
	recent := snaps[len(snaps)-3:]
	first, last := recent[0].AvgTireTemp(), recent[2].AvgTireTemp()
	switch {
	case last > first:
		return "increasing"
	case last < first:
		return "decreasing"
	}
	return ""
}

// fuelBurn returns fuel consumed across the last 5 samples.
func fuelBurn(snaps []telemetry.Snapshot) (float64, bool) {
	if len(snaps) < 2 {
		return 0, false
	}
	window := snaps
	if len(window) > 5 {
		window = window[len(window)-5:]
	}
	return window[0].Fuel - window[len(window)-1].Fuel, true
}
