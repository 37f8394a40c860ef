package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// PinsConfig holds the BCM pin numbers for all external lines.
type PinsConfig struct {
	CoilAPin  int `yaml:"coil_a_pin"`  // stepper coil phase A (H-bridge input)
	CoilBPin  int `yaml:"coil_b_pin"`  // stepper coil phase B (H-bridge input)
	CrankPin  int `yaml:"crank_pin"`   // crank-sense input, inverted (low = cranking)
	StatusPin int `yaml:"status_pin"`  // indicator LED, on while a cycle is running. 0 = not used.
}

// TimerConfig defines the pulse generator timing.
// PeriodTicks mirrors a one-byte compare register: the half-period compare
// is derived from it by integer division.
type TimerConfig struct {
	PeriodTicks int `yaml:"period_ticks"` // compare-A period, 1-255
	TickUs      int `yaml:"tick_us"`      // duration of one timer tick in microseconds
}

// MotorConfig describes the choke stepper geometry.
type MotorConfig struct {
	StepsPerRev  int `yaml:"steps_per_rev"`  // full steps per revolution (200 = 1.8°/step)
	OpenAngleDeg int `yaml:"open_angle_deg"` // choke plate travel per cycle, degrees
}

// DefaultsConfig contains generic parameters.
type DefaultsConfig struct {
	DebugLevel int  `yaml:"debug_level"` // debug level 0-4 (0=off, 1=info, 2=live, 3=verbose, 4=trace)
	MockGPIO   bool `yaml:"mock_gpio"`   // use mock GPIO (true=dev/test, false=real Raspberry Pi)
}

// Config aggregates all application configuration.
type Config struct {
	Pins     PinsConfig     `yaml:"pins"`
	Timer    TimerConfig    `yaml:"timer"`
	Motor    MotorConfig    `yaml:"motor"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	// Basic validation
	if cfg.Pins.CoilAPin <= 0 || cfg.Pins.CoilBPin <= 0 {
		return nil, fmt.Errorf("pins.coil_a_pin and pins.coil_b_pin are required")
	}
	if cfg.Pins.CoilAPin == cfg.Pins.CoilBPin {
		return nil, fmt.Errorf("coil pins must be distinct, both are %d", cfg.Pins.CoilAPin)
	}
	if cfg.Pins.CrankPin <= 0 {
		return nil, fmt.Errorf("pins.crank_pin is required")
	}
	if cfg.Pins.CrankPin == cfg.Pins.CoilAPin || cfg.Pins.CrankPin == cfg.Pins.CoilBPin {
		return nil, fmt.Errorf("crank_pin %d collides with a coil pin", cfg.Pins.CrankPin)
	}

	if cfg.Timer.PeriodTicks == 0 {
		cfg.Timer.PeriodTicks = 128 // reasonable default
	}
	if cfg.Timer.PeriodTicks < 1 || cfg.Timer.PeriodTicks > 255 {
		return nil, fmt.Errorf("timer.period_ticks must be 1-255, got %d", cfg.Timer.PeriodTicks)
	}
	if cfg.Timer.TickUs == 0 {
		cfg.Timer.TickUs = 50 // reasonable default
	}
	if cfg.Timer.TickUs < 0 {
		return nil, fmt.Errorf("timer.tick_us must be positive, got %d", cfg.Timer.TickUs)
	}

	if cfg.Motor.StepsPerRev == 0 {
		cfg.Motor.StepsPerRev = 200 // standard 1.8° stepper
	}
	if cfg.Motor.StepsPerRev < 0 {
		return nil, fmt.Errorf("motor.steps_per_rev must be positive, got %d", cfg.Motor.StepsPerRev)
	}
	if cfg.Motor.OpenAngleDeg == 0 {
		cfg.Motor.OpenAngleDeg = 90 // default choke travel
	}
	if cfg.Motor.OpenAngleDeg < 0 || cfg.Motor.OpenAngleDeg > 360 {
		return nil, fmt.Errorf("motor.open_angle_deg must be between 1 and 360, got %d", cfg.Motor.OpenAngleDeg)
	}

	if cfg.Defaults.DebugLevel < 0 || cfg.Defaults.DebugLevel > 4 {
		return nil, fmt.Errorf("debug_level must be 0-4, got %d", cfg.Defaults.DebugLevel)
	}

	return &cfg, nil
}

// ValidateConfigPath ensures a user-provided config path stays inside the
// configs/ directory and points at a .yaml file.
func ValidateConfigPath(path string) error {
	if path == "" {
		return fmt.Errorf("config path is empty")
	}
	if filepath.Ext(path) != ".yaml" {
		return fmt.Errorf("config file must have .yaml extension: %s", path)
	}

	clean := filepath.Clean(path)
	if strings.Contains(clean, "..") {
		return fmt.Errorf("config path must not traverse directories: %s", path)
	}
	if filepath.Base(filepath.Dir(clean)) != "configs" {
		return fmt.Errorf("config file must live in a configs/ directory: %s", path)
	}
	return nil
}

// TickDuration returns the duration of one pulse-generator tick.
func (c *Config) TickDuration() time.Duration {
	return time.Duration(c.Timer.TickUs) * time.Microsecond
}

// PeriodTicks returns the compare-A period as a register-sized value.
func (c *Config) PeriodTicks() uint8 {
	return uint8(c.Timer.PeriodTicks)
}

// OpenAngleDeg returns the choke travel per cycle in degrees.
func (c *Config) OpenAngleDeg() uint32 {
	return uint32(c.Motor.OpenAngleDeg)
}

// StepsPerRev returns the motor's full steps per revolution.
func (c *Config) StepsPerRev() uint32 {
	return uint32(c.Motor.StepsPerRev)
}
