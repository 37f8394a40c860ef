package geometry

import (
	"fmt"
	"math"
)

// Calculator converts angular displacement requests into motor step counts.
type Calculator struct {
	stepsPerRev uint32
}

// NewCalculator creates a step calculator for a motor with the given number
// of full steps per revolution (200 for a standard 1.8° stepper).
func NewCalculator(stepsPerRev uint32) (*Calculator, error) {
	if stepsPerRev == 0 {
		return nil, fmt.Errorf("steps per revolution must be positive")
	}
	return &Calculator{stepsPerRev: stepsPerRev}, nil
}

// StepsPerRev returns the configured motor resolution.
func (c *Calculator) StepsPerRev() uint32 {
	return c.stepsPerRev
}

// StepsFromAngle converts an angle in degrees to a step count, multiplying
// before dividing so sub-revolution angles keep their precision:
// 90° on a 200-step motor yields 50 steps. The division still truncates, so
// angles smaller than one full step (360/stepsPerRev degrees) yield zero
// steps and produce no motion.
//
// Angles whose step count would not fit the shared 32-bit step counter are
// rejected rather than clamped, keeping the counter overflow-free by
// construction.
func (c *Calculator) StepsFromAngle(angleDeg uint32) (uint32, error) {
	steps := uint64(angleDeg) * uint64(c.stepsPerRev) / 360
	if steps > math.MaxUint32 {
		return 0, fmt.Errorf("angle %d° exceeds the step counter range (%d steps)", angleDeg, steps)
	}
	return uint32(steps), nil
}
