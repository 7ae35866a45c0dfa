package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/apexlabs/apexengineer/pkg/jsontime"
)

func TestFeed_RoundTrip(t *testing.T) {
	r, err := ListenFeed("127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenFeed error: %v", err)
	}
	defer r.Close()

	w, err := DialFeed(r.conn.LocalAddr().String())
	if err != nil {
		t.Fatalf("DialFeed error: %v", err)
	}
	defer w.Close()

	want := Snapshot{
		Time:        jsontime.Milli(time.UnixMilli(1700000000000)),
		Speed:       231.4,
		RPM:         11200,
		Gear:        6,
		TireTemps:   [4]float64{88.1, 90.2, 84.5, 85.9},
		Fuel:        31.7,
		LapTime:     92.3,
		BestLapTime: 91.8,
		Sector:      2,
		DeltaToBest: 0.5,
		Lap:         12,
		Position:    4,
	}
	if err := w.Write(want); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, err := r.Read(ctx)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}

	if !got.Time.Equal(want.Time) {
		t.Errorf("Time = %v, want %v", got.Time, want.Time)
	}
	if got.Speed != want.Speed || got.RPM != want.RPM || got.Gear != want.Gear {
		t.Errorf("speed/rpm/gear = %v/%v/%v, want %v/%v/%v",
			got.Speed, got.RPM, got.Gear, want.Speed, want.RPM, want.Gear)
	}
	if got.TireTemps != want.TireTemps {
		t.Errorf("TireTemps = %v, want %v", got.TireTemps, want.TireTemps)
	}
	if got.LapTime != want.LapTime || got.BestLapTime != want.BestLapTime {
		t.Errorf("lap times = %v/%v, want %v/%v",
			got.LapTime, got.BestLapTime, want.LapTime, want.BestLapTime)
	}
}

func TestFeed_DeadlineUnavailable(t *testing.T) {
	r, err := ListenFeed("127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenFeed error: %v", err)
	}
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = r.Read(ctx)
	if err != ErrUnavailable {
		t.Errorf("Read with no publisher = %v, want ErrUnavailable", err)
	}
}
