package telemetry

import (
	"testing"
	"time"

	"github.com/apexlabs/apexengineer/pkg/jsontime"
)

func snapAt(t time.Time, lapTime float64) Snapshot {
	return Snapshot{Time: jsontime.Milli(t), LapTime: lapTime}
}

func TestHistory_BoundedCapacity(t *testing.T) {
	h := NewHistory(3)
	base := time.UnixMilli(0)

	for i := range 10 {
		h.Append(snapAt(base.Add(time.Duration(i)*time.Millisecond), float64(i)))
		if h.Len() > h.Cap() {
			t.Fatalf("after %d appends: Len() = %d > Cap() = %d", i+1, h.Len(), h.Cap())
		}
	}

	snaps := h.Snapshots()
	if len(snaps) != 3 {
		t.Fatalf("Snapshots() len = %d, want 3", len(snaps))
	}
	// Oldest first, only the most recent three survive.
	for i, want := range []float64{7, 8, 9} {
		if snaps[i].LapTime != want {
			t.Errorf("snaps[%d].LapTime = %v, want %v", i, snaps[i].LapTime, want)
		}
	}
}

func TestHistory_MonotonicTimestamps(t *testing.T) {
	h := NewHistory(5)
	base := time.UnixMilli(1000)

	if !h.Append(snapAt(base, 1)) {
		t.Fatal("first append rejected")
	}
	if h.Append(snapAt(base.Add(-time.Second), 2)) {
		t.Error("append older than latest was kept")
	}
	if !h.Append(snapAt(base, 3)) {
		t.Error("append equal to latest was dropped")
	}

	snaps := h.Snapshots()
	for i := 1; i < len(snaps); i++ {
		if snaps[i].Time.Before(snaps[i-1].Time) {
			t.Errorf("timestamps not non-decreasing at %d", i)
		}
	}
}

func TestHistory_Latest(t *testing.T) {
	h := NewHistory(2)

	if _, ok := h.Latest(); ok {
		t.Error("Latest() on empty history reported ok")
	}

	base := time.UnixMilli(0)
	h.Append(snapAt(base, 1))
	h.Append(snapAt(base.Add(time.Millisecond), 2))
	h.Append(snapAt(base.Add(2*time.Millisecond), 3))

	latest, ok := h.Latest()
	if !ok {
		t.Fatal("Latest() reported not ok")
	}
	if latest.LapTime != 3 {
		t.Errorf("Latest().LapTime = %v, want 3", latest.LapTime)
	}
}

func TestHistory_SnapshotsIsCopy(t *testing.T) {
	h := NewHistory(2)
	h.Append(snapAt(time.UnixMilli(0), 1))

	snaps := h.Snapshots()
	snaps[0].LapTime = 99

	latest, _ := h.Latest()
	if latest.LapTime != 1 {
		t.Error("mutating Snapshots() result affected the history")
	}
}
