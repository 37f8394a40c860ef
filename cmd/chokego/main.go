package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/cjeanneret/ChokeGo/internal/config"
	"github.com/cjeanneret/ChokeGo/internal/debug"
	"github.com/cjeanneret/ChokeGo/internal/hw/coil"
	"github.com/cjeanneret/ChokeGo/internal/hw/gpio"
	"github.com/cjeanneret/ChokeGo/internal/hw/pulse"
	"github.com/cjeanneret/ChokeGo/internal/logic/crank"
	"github.com/cjeanneret/ChokeGo/internal/logic/cycle"
	"github.com/cjeanneret/ChokeGo/internal/logic/geometry"
	"github.com/cjeanneret/ChokeGo/internal/logic/motion"
)

func main() {
	// CLI flags
	cfgPath := flag.String("config", filepath.Join("configs", "default.yaml"), "path to config file")
	openAngleDeg := flag.Int("open_angle_deg", 0, "override choke travel in degrees (1-360)")
	debugLevel := flag.Int("debug_level", -1, "override debug level (0-4)")
	mock := flag.Bool("mock", false, "force the mock GPIO driver (development on PC)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	if err := config.ValidateConfigPath(*cfgPath); err != nil {
		log.Fatalf("invalid config path: %v", err)
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	// Validate CLI overrides (only non-zero values are applied; zero means "use config default")
	if err := validateCLIOverrides(*openAngleDeg, *debugLevel); err != nil {
		log.Fatalf("invalid CLI override: %v", err)
	}
	applyOverrides(cfg, *openAngleDeg, *debugLevel, *mock)

	// Initialize debug system
	debug.Init(cfg.Defaults.DebugLevel)
	debug.Section("Initialization")
	debug.Value("Config path", *cfgPath)
	debug.Value("Debug level", cfg.Defaults.DebugLevel)

	// Initialize GPIO driver
	debug.Value("Mock GPIO", cfg.Defaults.MockGPIO)
	debug.Step(1, "Initializing GPIO driver")
	gpioDriver, err := gpio.NewDriver(cfg.Defaults.MockGPIO)
	if err != nil {
		log.Fatalf("init GPIO failed: %v", err)
	}
	defer func() {
		if err := gpioDriver.Close(); err != nil {
			log.Printf("closing GPIO driver failed: %v", err)
		}
	}()

	// Initialize coil driver and pulse generator
	debug.Step(2, "Configuring coil driver")
	forward := coil.Assignment{APin: cfg.Pins.CoilAPin, BPin: cfg.Pins.CoilBPin}
	coils, err := coil.NewDriver(gpioDriver, forward)
	if err != nil {
		log.Fatalf("init coil driver failed: %v", err)
	}
	debug.PrintStruct("Coil assignment", forward)

	debug.Step(3, "Configuring pulse generator")
	gen, err := pulse.NewGenerator(cfg.PeriodTicks(), cfg.TickDuration(), coils.HandleA, coils.HandleB)
	if err != nil {
		log.Fatalf("init pulse generator failed: %v", err)
	}
	debug.Value("Compare A (ticks)", gen.PeriodTicks())
	debug.Value("Compare B (ticks)", gen.HalfTicks())
	debug.Value("Tick duration", cfg.TickDuration())

	// Start the crank-sense monitor
	debug.Step(4, "Starting crank-sense monitor")
	monitor, err := crank.NewMonitor(gpioDriver, cfg.Pins.CrankPin, 0)
	if err != nil {
		log.Fatalf("init crank monitor failed: %v", err)
	}
	monitorErr := make(chan error, 1)
	go func() {
		monitorErr <- monitor.Run(ctx)
	}()

	// Motion controller and cycle runner
	debug.Step(5, "Creating motion controller and cycle runner")
	calc, err := geometry.NewCalculator(cfg.StepsPerRev())
	if err != nil {
		log.Fatalf("init step calculator: %v", err)
	}
	ctrl := motion.NewController(gen, coils, calc, forward)
	runner, err := cycle.NewRunner(monitor, ctrl, gpioDriver, cfg.Pins.StatusPin, cfg.OpenAngleDeg())
	if err != nil {
		log.Fatalf("init cycle runner: %v", err)
	}
	debug.Value("Open angle (deg)", cfg.OpenAngleDeg())
	debug.Value("Steps per rev", cfg.StepsPerRev())

	debug.Section("Starting Choke Control Loop")
	err = runner.Run(ctx)
	cancel()
	if merr := <-monitorErr; merr != nil && !errors.Is(merr, context.Canceled) {
		log.Printf("crank monitor: %v", merr)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("control loop failed: %v", err)
	}

	debug.Section("Shutdown Complete")
}

// validateCLIOverrides checks that non-zero CLI overrides are within valid ranges.
// Zero values are ignored (they mean "use config default").
func validateCLIOverrides(openAngle, debugLevel int) error {
	if openAngle != 0 {
		if openAngle < 1 || openAngle > 360 {
			return fmt.Errorf("open_angle_deg must be between 1 and 360, got %d", openAngle)
		}
	}
	if debugLevel != -1 {
		if debugLevel < 0 || debugLevel > 4 {
			return fmt.Errorf("debug_level must be between 0 and 4, got %d", debugLevel)
		}
	}
	return nil
}

// applyOverrides mutates cfg with CLI overrides. Only non-default values are applied.
func applyOverrides(cfg *config.Config, openAngle, debugLevel int, mock bool) {
	if openAngle > 0 {
		cfg.Motor.OpenAngleDeg = openAngle
	}
	if debugLevel >= 0 {
		cfg.Defaults.DebugLevel = debugLevel
	}
	if mock {
		cfg.Defaults.MockGPIO = true
	}
}
