package cycle

import (
	"context"
	"sync/atomic"

	"github.com/cjeanneret/ChokeGo/internal/debug"
	"github.com/cjeanneret/ChokeGo/internal/hw/gpio"
	"github.com/cjeanneret/ChokeGo/internal/logic/crank"
	"github.com/cjeanneret/ChokeGo/internal/logic/motion"
)

// State is the sequencer position within one choke cycle.
type State int32

const (
	StateIdle    State = iota // choke closed, waiting for cranking
	StateOpening              // driving the plate open
	StateHolding              // plate open, cranking still active
	StateClosing              // driving the plate closed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOpening:
		return "opening"
	case StateHolding:
		return "holding"
	case StateClosing:
		return "closing"
	}
	return "unknown"
}

// Runner sequences choke cycles: on a crank-active edge the plate opens by
// the configured angle, stays open while cranking lasts, and closes again
// when cranking stops. It is the single foreground execution context; it
// only ever reads the cranking state and never touches the step counter or
// coil assignment directly.
type Runner struct {
	monitor   *crank.Monitor
	motion    *motion.Controller
	gpio      gpio.Driver
	statusPin int // indicator LED, on during a cycle. 0 = not used.
	openAngle uint32

	state atomic.Int32
}

// NewRunner wires the sequencer. If statusPin is non-zero it is configured
// as an output and driven low (cycle inactive).
func NewRunner(m *crank.Monitor, mc *motion.Controller, g gpio.Driver, statusPin int, openAngleDeg uint32) (*Runner, error) {
	r := &Runner{
		monitor:   m,
		motion:    mc,
		gpio:      g,
		statusPin: statusPin,
		openAngle: openAngleDeg,
	}
	if statusPin > 0 {
		if err := g.SetupPin(statusPin, gpio.Output); err != nil {
			return nil, err
		}
		if err := g.WritePin(statusPin, gpio.Low); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// State returns the sequencer's current position, for diagnostics.
func (r *Runner) State() State {
	return State(r.state.Load())
}

func (r *Runner) setState(s State) {
	old := State(r.state.Swap(int32(s)))
	if old != s {
		debug.State(old.String(), s.String())
	}
}

func (r *Runner) setStatus(on bool) {
	if r.statusPin <= 0 {
		return
	}
	level := gpio.Low
	if on {
		level = gpio.High
	}
	if err := r.gpio.WritePin(r.statusPin, level); err != nil {
		debug.Error(err)
	}
}

// Run executes choke cycles until the context is cancelled. It never runs
// concurrently with itself.
func (r *Runner) Run(ctx context.Context) error {
	defer r.setStatus(false)

	for {
		if err := r.runCycle(ctx); err != nil {
			return err
		}
	}
}

// runCycle performs one idle -> opening -> holding -> closing pass.
func (r *Runner) runCycle(ctx context.Context) error {
	r.setState(StateIdle)
	if err := r.monitor.WaitFor(ctx, true); err != nil {
		return err
	}

	r.setStatus(true)

	r.setState(StateOpening)
	if err := r.motion.Move(ctx, motion.Forward, r.openAngle); err != nil {
		return err
	}

	r.setState(StateHolding)
	if err := r.monitor.WaitFor(ctx, false); err != nil {
		return err
	}

	r.setState(StateClosing)
	if err := r.motion.Move(ctx, motion.Reverse, r.openAngle); err != nil {
		return err
	}

	r.setStatus(false)
	return nil
}
