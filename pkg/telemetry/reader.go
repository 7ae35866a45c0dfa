package telemetry

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/apexlabs/apexengineer/pkg/jsontime"
)

// ErrUnavailable is returned by a Reader when the telemetry source is
// absent or disconnected. It is non-fatal: the Sampler degrades to mock
// snapshots for the affected ticks.
var ErrUnavailable = errors.New("telemetry: source unavailable")

// Reader reads one snapshot from a telemetry source. Implementations must
// honor the context deadline; a read must never block past it.
type Reader interface {
	Read(ctx context.Context) (Snapshot, error)
}

// ReadFunc is an adapter to allow the use of ordinary functions as Readers.
type ReadFunc func(ctx context.Context) (Snapshot, error)

// Read calls the underlying function.
func (f ReadFunc) Read(ctx context.Context) (Snapshot, error) {
	return f(ctx)
}

// MockReader generates plausible synthetic telemetry. It backs the
// Sampler's degraded mode and local development without a running game.
type MockReader struct {
	mu   sync.Mutex
	rand *rand.Rand
	fuel float64
	lap  int
}

// NewMockReader creates a MockReader with a deterministic seed.
func NewMockReader(seed uint64) *MockReader {
	return &MockReader{
		rand: rand.New(rand.NewPCG(seed, seed)),
		fuel: 45.2,
		lap:  5,
	}
}

// Read implements Reader. It never fails.
func (m *MockReader) Read(_ context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	jitter := func(base, spread float64) float64 {
		return base + (m.rand.Float64()*2-1)*spread
	}
	m.fuel = max(0, m.fuel-m.rand.Float64()*0.1)

	lapTime := jitter(95.234, 0.5)
	best := 94.123
	return Snapshot{
		Time:        jsontime.Milli(time.Now()),
		Speed:       jitter(120.5, 5),
		RPM:         int(jitter(6500, 200)),
		Gear:        4,
		TireTemps:   [4]float64{jitter(85, 2), jitter(87, 2), jitter(82, 2), jitter(84, 2)},
		Fuel:        m.fuel,
		LapTime:     lapTime,
		BestLapTime: best,
		Sector:      1,
		DeltaToBest: lapTime - best,
		Lap:         m.lap,
		Position:    3,
		Mock:        true,
	}, nil
}
