package gpio

import "testing"

func TestMockDriver_TogglePin(t *testing.T) {
	m := NewMockDriver()
	if err := m.SetupPin(4, Output); err != nil {
		t.Fatal(err)
	}

	if l, _ := m.ReadPin(4); l != Low {
		t.Fatal("output should start low")
	}
	if err := m.TogglePin(4); err != nil {
		t.Fatal(err)
	}
	if l, _ := m.ReadPin(4); l != High {
		t.Error("toggle should flip low to high")
	}
	if err := m.TogglePin(4); err != nil {
		t.Fatal(err)
	}
	if l, _ := m.ReadPin(4); l != Low {
		t.Error("second toggle should flip back to low")
	}
}

func TestMockDriver_InputRestsHigh(t *testing.T) {
	m := NewMockDriver()
	if err := m.SetupPin(22, Input); err != nil {
		t.Fatal(err)
	}
	if l, _ := m.ReadPin(22); l != High {
		t.Error("input should rest high through the pull-up")
	}
}

func TestMockDriver_EdgeLatch(t *testing.T) {
	m := NewMockDriver()
	if err := m.SetupPin(22, Input); err != nil {
		t.Fatal(err)
	}
	if err := m.DetectEdges(22, true); err != nil {
		t.Fatal(err)
	}

	// No transition yet: no edge.
	if e, _ := m.EdgeDetected(22); e {
		t.Error("no edge should be latched before a transition")
	}

	m.SetInput(22, Low)
	if e, _ := m.EdgeDetected(22); !e {
		t.Error("transition should latch an edge")
	}
	// The latch clears on read.
	if e, _ := m.EdgeDetected(22); e {
		t.Error("EdgeDetected should clear the latch")
	}

	// Writing the same level again is not a transition.
	m.SetInput(22, Low)
	if e, _ := m.EdgeDetected(22); e {
		t.Error("same-level write should not latch an edge")
	}
}

func TestMockDriver_WriteRead(t *testing.T) {
	m := NewMockDriver()
	if err := m.WritePin(9, High); err != nil {
		t.Fatal(err)
	}
	if l, _ := m.ReadPin(9); l != High {
		t.Error("ReadPin should return the written level")
	}
}
