package crank

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cjeanneret/ChokeGo/internal/debug"
	"github.com/cjeanneret/ChokeGo/internal/hw/gpio"
)

const defaultPollInterval = time.Millisecond

// Monitor tracks whether the engine is currently cranking, from an
// edge-detected GPIO input with inverted sense: the sensing circuit pulls
// the line low while cranking is electrically active.
//
// On every latched edge the monitor re-samples the level instead of trusting
// the edge direction, so a bounce leaves the state consistent with the
// line's resting level. No software debouncing is done; that is the sensing
// circuit's job.
//
// The monitor is the only writer of the cranking state. Readers either poll
// Active or block in WaitFor.
type Monitor struct {
	gpio gpio.Driver
	pin  int
	poll time.Duration

	active atomic.Bool
	// 1-buffered wake token: the state is stored before the token is
	// sent, so a waiter that re-checks after each receive never misses a
	// change.
	changed chan struct{}
}

// NewMonitor configures the crank-sense pin as a pulled-up input with edge
// detection armed, and samples the initial level.
func NewMonitor(g gpio.Driver, pin int, poll time.Duration) (*Monitor, error) {
	if poll <= 0 {
		poll = defaultPollInterval
	}
	if err := g.SetupPin(pin, gpio.Input); err != nil {
		return nil, err
	}
	if err := g.DetectEdges(pin, true); err != nil {
		return nil, err
	}

	m := &Monitor{
		gpio:    g,
		pin:     pin,
		poll:    poll,
		changed: make(chan struct{}, 1),
	}

	level, err := g.ReadPin(pin)
	if err != nil {
		return nil, err
	}
	m.active.Store(level == gpio.Low)

	return m, nil
}

// Run services the edge-detection latch until the context is cancelled.
// It must not run concurrently with itself.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.poll)
	defer ticker.Stop()
	defer func() {
		_ = m.gpio.DetectEdges(m.pin, false)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			edge, err := m.gpio.EdgeDetected(m.pin)
			if err != nil {
				return err
			}
			if edge {
				m.resample()
			}
		}
	}
}

// resample reads the current level and publishes the inverted state.
func (m *Monitor) resample() {
	level, err := m.gpio.ReadPin(m.pin)
	if err != nil {
		debug.Error(err)
		return
	}
	active := level == gpio.Low
	if m.active.Swap(active) != active {
		select {
		case m.changed <- struct{}{}:
		default:
		}
		debug.Edge(m.pin, active)
	}
}

// Active reports whether cranking is currently sensed.
func (m *Monitor) Active() bool {
	return m.active.Load()
}

// WaitFor blocks until the cranking state equals want, or the context is
// cancelled.
func (m *Monitor) WaitFor(ctx context.Context, want bool) error {
	for {
		if m.active.Load() == want {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.changed:
		}
	}
}
