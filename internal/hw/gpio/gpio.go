package gpio

import (
	"sync"

	"github.com/cjeanneret/ChokeGo/internal/debug"
)

// Level represents the logical state of a GPIO pin.
type Level bool

const (
	Low  Level = false
	High Level = true
)

// PinMode indicates whether a GPIO is input or output.
// Inputs are configured with the internal pull-up enabled, matching the
// open-collector crank-sense circuit.
type PinMode int

const (
	Input PinMode = iota
	Output
)

// Driver defines the abstract interface for controlling GPIOs.
// This allows plugging in a real Raspberry Pi implementation
// or a mock for development on PC.
type Driver interface {
	SetupPin(pin int, mode PinMode) error
	WritePin(pin int, level Level) error
	ReadPin(pin int) (Level, error)
	// TogglePin inverts the current output level of the pin.
	// It is called from the pulse generator's event goroutine and must
	// stay cheap: one read-modify-write, no allocation.
	TogglePin(pin int) error
	// DetectEdges arms (or disarms) edge detection on an input pin.
	// Both rising and falling edges are latched.
	DetectEdges(pin int, enable bool) error
	// EdgeDetected reports whether an edge was latched on the pin since
	// the last call, clearing the latch.
	EdgeDetected(pin int) (bool, error)
	Close() error
}

// MockDriver is a test implementation that logs actions and tracks pin
// levels in memory, so toggles and reads behave consistently.
// Used for development on PC or testing.
type MockDriver struct {
	mu     sync.Mutex
	levels map[int]Level
	edges  map[int]bool
}

// NewDriver creates a GPIO driver based on the chosen mode.
// If mock is true, returns a MockDriver (for dev/test).
// If mock is false, returns a real RPiDriver (for Raspberry Pi).
func NewDriver(mock bool) (Driver, error) {
	if mock {
		debug.Info("Using MOCK GPIO driver (development mode)")
		return NewMockDriver(), nil
	}
	return NewRPiRealDriver()
}

// NewMockDriver creates an in-memory driver.
func NewMockDriver() *MockDriver {
	return &MockDriver{
		levels: make(map[int]Level),
		edges:  make(map[int]bool),
	}
}

func (m *MockDriver) SetupPin(pin int, mode PinMode) error {
	debug.GPIO("SetupPin", pin, mode)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.levels[pin]; !ok {
		// Inputs rest high: the pull-up is what a floating crank-sense
		// line would read.
		if mode == Input {
			m.levels[pin] = High
		} else {
			m.levels[pin] = Low
		}
	}
	return nil
}

func (m *MockDriver) WritePin(pin int, level Level) error {
	debug.GPIO("WritePin", pin, level)
	m.mu.Lock()
	m.levels[pin] = level
	m.mu.Unlock()
	return nil
}

func (m *MockDriver) ReadPin(pin int) (Level, error) {
	m.mu.Lock()
	l := m.levels[pin]
	m.mu.Unlock()
	debug.GPIO("ReadPin", pin, l)
	return l, nil
}

func (m *MockDriver) TogglePin(pin int) error {
	m.mu.Lock()
	m.levels[pin] = !m.levels[pin]
	l := m.levels[pin]
	m.mu.Unlock()
	debug.GPIO("TogglePin", pin, l)
	return nil
}

func (m *MockDriver) DetectEdges(pin int, enable bool) error {
	debug.GPIO("DetectEdges", pin, enable)
	if !enable {
		m.mu.Lock()
		delete(m.edges, pin)
		m.mu.Unlock()
	}
	return nil
}

func (m *MockDriver) EdgeDetected(pin int) (bool, error) {
	m.mu.Lock()
	e := m.edges[pin]
	m.edges[pin] = false
	m.mu.Unlock()
	return e, nil
}

// SetInput simulates an external signal driving an input pin, latching an
// edge when the level actually changes.
func (m *MockDriver) SetInput(pin int, level Level) {
	m.mu.Lock()
	old, known := m.levels[pin]
	m.levels[pin] = level
	if known && old != level {
		m.edges[pin] = true
	}
	m.mu.Unlock()
	debug.GPIO("SetInput", pin, level)
}

func (m *MockDriver) Close() error {
	debug.Trace("GPIO Close (mock)")
	return nil
}
