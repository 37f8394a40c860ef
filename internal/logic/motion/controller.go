package motion

import (
	"context"
	"fmt"

	"github.com/cjeanneret/ChokeGo/internal/debug"
	"github.com/cjeanneret/ChokeGo/internal/hw/coil"
	"github.com/cjeanneret/ChokeGo/internal/hw/pulse"
	"github.com/cjeanneret/ChokeGo/internal/logic/geometry"
)

// Direction selects the rotation sense of a move. It is resolved once per
// move into a concrete channel-to-line assignment: Reverse simply swaps
// which physical line answers to which compare channel.
type Direction int

const (
	Forward Direction = iota // opens the choke plate
	Reverse                  // closes the choke plate
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// Controller executes one bounded rotation at a time and blocks the caller
// until the motor is quiescent again. It is the only entity that arms or
// disarms the pulse generator, the only writer of the coil assignment and
// the only resetter of the step counter.
type Controller struct {
	gen     *pulse.Generator
	coils   *coil.Driver
	calc    *geometry.Calculator
	forward coil.Assignment
}

// NewController wires a motion controller over the pulse generator and coil
// driver. forward is the assignment that opens the choke plate.
func NewController(gen *pulse.Generator, coils *coil.Driver, calc *geometry.Calculator, forward coil.Assignment) *Controller {
	return &Controller{
		gen:     gen,
		coils:   coils,
		calc:    calc,
		forward: forward,
	}
}

// Resolve maps a direction to its concrete coil assignment.
func (c *Controller) Resolve(dir Direction) coil.Assignment {
	if dir == Reverse {
		return c.forward.Swapped()
	}
	return c.forward
}

// Move rotates the motor by angleDeg degrees in the given direction and
// returns once the motor is quiescent. A zero step target (angles smaller
// than one full step) returns immediately without any motion.
//
// On return the motor has advanced by at least the target step count,
// possibly one step more: the stop check runs after each increment, and a
// compare event already in flight when the target is reached still lands.
// The context is a shutdown path only; cancelling it disarms the generator
// mid-move.
func (c *Controller) Move(ctx context.Context, dir Direction, angleDeg uint32) error {
	target, err := c.calc.StepsFromAngle(angleDeg)
	if err != nil {
		return fmt.Errorf("compute step target: %w", err)
	}
	if target == 0 {
		debug.Verbose("motion: %d° is below one full step, no motion", angleDeg)
		return nil
	}

	// Install the direction and zero the counter before arming, so the
	// wait below can never observe steps left over from a previous move.
	c.coils.SetAssignment(c.Resolve(dir))
	c.coils.ResetSteps()

	debug.Move(dir.String(), target)

	c.gen.Arm()
	defer c.gen.Disarm()

	for c.coils.Steps() < target {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.coils.StepEvents():
		}
	}

	debug.Verbose("motion: done, %d steps recorded", c.coils.Steps())
	return nil
}
