package coil

import (
	"sync/atomic"

	"github.com/cjeanneret/ChokeGo/internal/debug"
	"github.com/cjeanneret/ChokeGo/internal/hw/gpio"
)

// Assignment maps the two compare channels to physical coil lines.
// Swapping the pair reverses the rotation direction: the same trigger
// sequence then energizes the coils in the opposite order.
type Assignment struct {
	APin int // line toggled by compare-A events
	BPin int // line toggled by compare-B events
}

// Swapped returns the assignment with the two lines exchanged.
func (a Assignment) Swapped() Assignment {
	return Assignment{APin: a.BPin, BPin: a.APin}
}

// Driver owns the two coil output lines and the shared step counter.
//
// HandleA and HandleB are the compare-event handlers: they run on the pulse
// generator's event goroutine and do only a line toggle, a counter
// increment and a non-blocking wake. The step counter is incremented only
// here; it is reset only by the motion controller, and only while the
// generator is disarmed. The assignment lives in a lock-free cell so a
// handler never observes a torn pair.
type Driver struct {
	gpio       gpio.Driver
	assignment atomic.Pointer[Assignment]
	steps      atomic.Uint32
	// 1-buffered: an increment is published before the token is sent, so
	// a waiter that re-checks the counter after each receive cannot miss
	// a wake.
	stepped chan struct{}
}

// NewDriver configures both coil pins as outputs, driven low, and installs
// the initial channel-to-line assignment.
func NewDriver(g gpio.Driver, initial Assignment) (*Driver, error) {
	for _, pin := range []int{initial.APin, initial.BPin} {
		if err := g.SetupPin(pin, gpio.Output); err != nil {
			return nil, err
		}
		if err := g.WritePin(pin, gpio.Low); err != nil {
			return nil, err
		}
	}

	d := &Driver{
		gpio:    g,
		stepped: make(chan struct{}, 1),
	}
	d.assignment.Store(&initial)
	return d, nil
}

// SetAssignment installs a new channel-to-line mapping. Only the motion
// controller calls this, and only while the pulse generator is disarmed.
func (d *Driver) SetAssignment(a Assignment) {
	d.assignment.Store(&a)
	debug.Verbose("coil: assignment A->pin%d B->pin%d", a.APin, a.BPin)
}

// CurrentAssignment returns the active channel-to-line mapping.
func (d *Driver) CurrentAssignment() Assignment {
	return *d.assignment.Load()
}

// HandleA is the compare-A trigger handler: toggle the assigned line,
// record the step.
func (d *Driver) HandleA() {
	a := d.assignment.Load()
	_ = d.gpio.TogglePin(a.APin)
	d.recordStep("A", a.APin)
}

// HandleB is the compare-B trigger handler.
func (d *Driver) HandleB() {
	a := d.assignment.Load()
	_ = d.gpio.TogglePin(a.BPin)
	d.recordStep("B", a.BPin)
}

func (d *Driver) recordStep(channel string, pin int) {
	d.steps.Add(1)
	select {
	case d.stepped <- struct{}{}:
	default:
	}
	debug.Toggle(channel, pin)
}

// Steps returns the number of steps recorded since the last reset.
func (d *Driver) Steps() uint32 {
	return d.steps.Load()
}

// ResetSteps zeroes the step counter. Must only be called while the pulse
// generator is disarmed, so the reset is observed before any new increment.
func (d *Driver) ResetSteps() {
	d.steps.Store(0)
	// Drain a stale wake token left over from the previous move.
	select {
	case <-d.stepped:
	default:
	}
}

// StepEvents returns the wake channel: it carries a token whenever at least
// one step has been recorded since the waiter last looked at the counter.
func (d *Driver) StepEvents() <-chan struct{} {
	return d.stepped
}
