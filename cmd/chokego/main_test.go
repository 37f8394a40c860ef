package main

import (
	"testing"

	"github.com/cjeanneret/ChokeGo/internal/config"
)

// ---------- validateCLIOverrides ----------

func TestValidateCLIOverrides_AllDefaults(t *testing.T) {
	if err := validateCLIOverrides(0, -1); err != nil {
		t.Errorf("defaults should be valid (use config values), got: %v", err)
	}
}

func TestValidateCLIOverrides_ValidBoundary(t *testing.T) {
	cases := []struct {
		name       string
		openAngle  int
		debugLevel int
	}{
		{"min_angle", 1, -1},
		{"max_angle", 360, -1},
		{"min_debug", 0, 0},
		{"max_debug", 0, 4},
		{"both", 90, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := validateCLIOverrides(tc.openAngle, tc.debugLevel); err != nil {
				t.Errorf("expected valid, got: %v", err)
			}
		})
	}
}

func TestValidateCLIOverrides_OutOfRange(t *testing.T) {
	cases := []struct {
		name       string
		openAngle  int
		debugLevel int
	}{
		{"angle_too_large", 361, -1},
		{"angle_negative", -5, -1},
		{"debug_too_large", 0, 5},
		{"debug_negative", 0, -2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := validateCLIOverrides(tc.openAngle, tc.debugLevel); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

// ---------- applyOverrides ----------

func baseConfig() *config.Config {
	return &config.Config{
		Motor:    config.MotorConfig{StepsPerRev: 200, OpenAngleDeg: 90},
		Defaults: config.DefaultsConfig{DebugLevel: 1},
	}
}

func TestApplyOverrides_NoOverrides(t *testing.T) {
	cfg := baseConfig()
	applyOverrides(cfg, 0, -1, false)

	if cfg.Motor.OpenAngleDeg != 90 {
		t.Errorf("open angle changed to %d without override", cfg.Motor.OpenAngleDeg)
	}
	if cfg.Defaults.DebugLevel != 1 {
		t.Errorf("debug level changed to %d without override", cfg.Defaults.DebugLevel)
	}
	if cfg.Defaults.MockGPIO {
		t.Error("mock forced on without override")
	}
}

func TestApplyOverrides_All(t *testing.T) {
	cfg := baseConfig()
	applyOverrides(cfg, 45, 0, true)

	if cfg.Motor.OpenAngleDeg != 45 {
		t.Errorf("open angle = %d, want 45", cfg.Motor.OpenAngleDeg)
	}
	if cfg.Defaults.DebugLevel != 0 {
		t.Errorf("debug level = %d, want 0", cfg.Defaults.DebugLevel)
	}
	if !cfg.Defaults.MockGPIO {
		t.Error("mock should be forced on")
	}
}

func TestApplyOverrides_MockNeverForcedOff(t *testing.T) {
	cfg := baseConfig()
	cfg.Defaults.MockGPIO = true
	applyOverrides(cfg, 0, -1, false)

	if !cfg.Defaults.MockGPIO {
		t.Error("config-enabled mock must survive a false flag")
	}
}
