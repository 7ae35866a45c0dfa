// Package telemetry samples live race telemetry into typed snapshots and
// maintains a bounded rolling history for downstream analysis.
//
// A Sampler polls a Reader on a fixed period. When the real source is
// unavailable it degrades to synthetic snapshots from a MockReader, so
// consumers never special-case missing data beyond the initial transition
// log line.
package telemetry

import (
	"github.com/apexlabs/apexengineer/pkg/jsontime"
)

// Tire indexes into Snapshot.TireTemps.
const (
	TireFrontLeft = iota
	TireFrontRight
	TireRearLeft
	TireRearRight
)

// Snapshot is one point-in-time reading of race telemetry.
// A Snapshot is immutable once produced and safe to share by value.
type Snapshot struct {
	Time jsontime.Milli `json:"t"`

	Speed float64 `json:"speed"` // km/h
	RPM   int     `json:"rpm"`
	Gear  int     `json:"gear"`

	// TireTemps holds per-tire surface temperatures in °C,
	// ordered FL, FR, RL, RR.
	TireTemps [4]float64 `json:"tire_temps"`

	Fuel float64 `json:"fuel"` // liters

	LapTime     float64 `json:"lap_time"`      // seconds, current lap
	BestLapTime float64 `json:"best_lap_time"` // seconds, 0 if none yet
	Sector      int     `json:"sector"`
	DeltaToBest float64 `json:"delta_to_best"` // seconds, negative is faster

	Lap      int `json:"lap"`
	Position int `json:"position"`

	// Mock marks snapshots produced by the degraded-mode generator.
	Mock bool `json:"mock,omitempty"`
}

// AvgTireTemp returns the mean of the four tire temperatures.
func (s Snapshot) AvgTireTemp() float64 {
	return (s.TireTemps[0] + s.TireTemps[1] + s.TireTemps[2] + s.TireTemps[3]) / 4
}
