package pulse

import (
	"fmt"
	"sync"
	"time"

	"github.com/cjeanneret/ChokeGo/internal/debug"
)

const defaultTick = 50 * time.Microsecond

// Generator emulates a clear-on-compare hardware timer with two compare
// channels. Compare A is loaded with the full period P, compare B with P/2
// (integer division, never rounded up), so the two trigger events are
// staggered by half a period. While armed, every cycle fires the B handler
// at P/2 ticks and the A handler at P ticks, then the counter wraps.
//
// Handlers are installed once at construction. Only the motion controller
// arms or disarms the generator; handlers must be short and non-blocking,
// they run on the generator's event goroutine.
type Generator struct {
	compareA uint8         // full period P, in ticks
	compareB uint8         // P/2, fixed at construction
	tick     time.Duration // duration of one tick
	onA, onB func()

	mu    sync.Mutex
	armed bool
	stop  chan struct{}
	done  chan struct{}
}

// NewGenerator creates a pulse generator with period ticks on compare A and
// period/2 on compare B. A zero tick falls back to 50µs.
func NewGenerator(period uint8, tick time.Duration, onA, onB func()) (*Generator, error) {
	if period == 0 {
		return nil, fmt.Errorf("pulse period must be 1-255 ticks, got 0")
	}
	if onA == nil || onB == nil {
		return nil, fmt.Errorf("pulse generator requires both compare handlers")
	}
	if tick <= 0 {
		tick = defaultTick
	}
	return &Generator{
		compareA: period,
		compareB: period / 2,
		tick:     tick,
		onA:      onA,
		onB:      onB,
	}, nil
}

// PeriodTicks returns the compare-A register value.
func (g *Generator) PeriodTicks() uint8 { return g.compareA }

// HalfTicks returns the compare-B register value (period/2, truncated).
func (g *Generator) HalfTicks() uint8 { return g.compareB }

// Armed reports whether trigger events are currently firing.
func (g *Generator) Armed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.armed
}

// Arm resets the counter to its phase origin and starts firing trigger
// events. If the generator is already armed, the running cycle is stopped
// first so the phase always restarts from zero.
func (g *Generator) Arm() {
	g.mu.Lock()
	if g.armed {
		g.stopLocked()
	}
	g.stop = make(chan struct{})
	g.done = make(chan struct{})
	g.armed = true
	go g.run(g.stop, g.done)
	g.mu.Unlock()

	debug.Trace("pulse: armed (A=%d B=%d ticks)", g.compareA, g.compareB)
}

// Disarm stops the trigger events and blocks until the event goroutine has
// exited: after Disarm returns, no handler will be invoked again until the
// next Arm.
func (g *Generator) Disarm() {
	g.mu.Lock()
	g.stopLocked()
	g.mu.Unlock()

	debug.Trace("pulse: disarmed")
}

func (g *Generator) stopLocked() {
	if !g.armed {
		return
	}
	close(g.stop)
	<-g.done
	g.armed = false
}

// run emulates the free-running counter. Each cycle sleeps to the B compare,
// fires B, sleeps the remainder to the A compare, fires A, and wraps.
func (g *Generator) run(stop, done chan struct{}) {
	defer close(done)

	toB := time.Duration(g.compareB) * g.tick
	toA := time.Duration(g.compareA-g.compareB) * g.tick

	timer := time.NewTimer(toB)
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return
		case <-timer.C:
		}
		g.onB()

		timer.Reset(toA)
		select {
		case <-stop:
			return
		case <-timer.C:
		}
		g.onA()

		timer.Reset(toB)
	}
}
