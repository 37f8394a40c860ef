package geometry

import (
	"math"
	"testing"
)

func TestNewCalculator_ZeroStepsPerRev(t *testing.T) {
	if _, err := NewCalculator(0); err == nil {
		t.Error("expected error for 0 steps per revolution, got nil")
	}
}

func TestStepsFromAngle(t *testing.T) {
	cases := []struct {
		name        string
		stepsPerRev uint32
		angle       uint32
		want        uint32
	}{
		{"quarter_turn", 200, 90, 50},
		{"full_turn", 200, 360, 200},
		{"eighth_turn", 200, 45, 25},
		{"one_step", 200, 2, 1}, // 2° > 1.8°, multiply-before-divide keeps it
		{"truncates_down", 200, 359, 199},
		{"sub_step_angle", 200, 1, 0}, // below one full step: no motion
		{"zero_angle", 200, 0, 0},
		{"two_turns", 200, 720, 400},
		{"high_res_motor", 400, 90, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			calc, err := NewCalculator(tc.stepsPerRev)
			if err != nil {
				t.Fatal(err)
			}
			got, err := calc.StepsFromAngle(tc.angle)
			if err != nil {
				t.Fatalf("StepsFromAngle(%d): %v", tc.angle, err)
			}
			if got != tc.want {
				t.Errorf("StepsFromAngle(%d) = %d, want %d", tc.angle, got, tc.want)
			}
		})
	}
}

func TestStepsFromAngle_OverflowRejected(t *testing.T) {
	calc, err := NewCalculator(math.MaxUint32)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := calc.StepsFromAngle(math.MaxUint32); err == nil {
		t.Error("expected overflow error, got nil")
	}
}

func TestStepsFromAngle_MaxAngleFits(t *testing.T) {
	calc, err := NewCalculator(200)
	if err != nil {
		t.Fatal(err)
	}
	// Even the largest representable angle stays well inside uint32 for a
	// 200-step motor: MaxUint32 * 200 / 360 < MaxUint32.
	got, err := calc.StepsFromAngle(math.MaxUint32)
	if err != nil {
		t.Fatalf("StepsFromAngle(MaxUint32): %v", err)
	}
	want := uint32(uint64(math.MaxUint32) * 200 / 360)
	if got != want {
		t.Errorf("StepsFromAngle(MaxUint32) = %d, want %d", got, want)
	}
}
