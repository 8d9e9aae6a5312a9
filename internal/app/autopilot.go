package app

import (
	"math"
	"math/rand"
	"time"

	"github.com/guidoenr/bloomer/internal/input"
)

var autopilotKeys = []input.Key{
	input.KeyF1, input.KeyF2, input.KeyF3, input.KeyF4, input.KeyF5,
	input.KeyF7, input.KeyF8, input.KeyF9, input.KeyF10,
}

// autopilot stands in for a user: it sweeps the pointer across the window
// and presses a random setting key once per period. Real input wins.
type autopilot struct {
	rng    *rand.Rand
	period time.Duration
	phase  float64
	since  time.Duration
}

func newAutopilot(period time.Duration, seed int64) *autopilot {
	return &autopilot{
		rng:    rand.New(rand.NewSource(seed)),
		period: period,
	}
}

func (p *autopilot) Next(snap input.Snapshot, elapsed time.Duration) input.Snapshot {
	if elapsed > 0 {
		p.phase += 2 * math.Pi * elapsed.Seconds() / p.period.Seconds()
		p.since += elapsed
	}
	if snap.PointerDown || !snap.Keys.Empty() || snap.Back {
		return snap
	}

	width := snap.WindowWidth
	if width <= 0 {
		width = 1
		snap.WindowWidth = width
	}
	snap.PointerDown = true
	snap.PointerX = (0.5 + 0.5*math.Sin(p.phase)) * float64(width)

	if p.since >= p.period {
		p.since = 0
		snap.Keys = input.Keys(autopilotKeys[p.rng.Intn(len(autopilotKeys))])
	}
	return snap
}
