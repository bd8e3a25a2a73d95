package behaviour

import (
	"testing"
)

type MockBehaviour struct {
	name        string
	startCalls  int
	updateCalls int
	lastElapsed float64
	log         *[]string
}

func (b *MockBehaviour) Start() {
	b.startCalls++
}

func (b *MockBehaviour) Update(elapsed float64) {
	b.updateCalls++
	b.lastElapsed = elapsed
	if b.log != nil {
		*b.log = append(*b.log, b.name)
	}
}

func TestManagerStartsOnce(t *testing.T) {
	m := NewManager()
	b := &MockBehaviour{}
	m.Add(b)

	m.UpdateAll(0.5)
	m.UpdateAll(1.0)

	if b.startCalls != 1 {
		t.Errorf("Expected Start once, got %d", b.startCalls)
	}
	if b.updateCalls != 2 {
		t.Errorf("Expected 2 updates, got %d", b.updateCalls)
	}
	if b.lastElapsed != 1.0 {
		t.Errorf("Expected elapsed 1.0, got %v", b.lastElapsed)
	}
}

func TestManagerPreservesOrder(t *testing.T) {
	var log []string
	m := NewManager()
	m.Add(&MockBehaviour{name: "red", log: &log})
	m.Add(&MockBehaviour{name: "green", log: &log})
	m.Add(&MockBehaviour{name: "blue", log: &log})

	m.UpdateAll(0)

	if len(log) != 3 || log[0] != "red" || log[1] != "green" || log[2] != "blue" {
		t.Errorf("Expected red, green, blue order, got %v", log)
	}
}

func TestManagerLen(t *testing.T) {
	m := NewManager()
	if m.Len() != 0 {
		t.Fatalf("New manager should be empty, got %d", m.Len())
	}

	m.Add(&MockBehaviour{})
	m.Add(&MockBehaviour{})

	if m.Len() != 2 {
		t.Errorf("Expected 2 behaviours, got %d", m.Len())
	}
}

func TestManagerClear(t *testing.T) {
	m := NewManager()
	b := &MockBehaviour{}
	m.Add(b)

	m.Clear()
	m.UpdateAll(0)

	if b.updateCalls != 0 {
		t.Error("Cleared behaviour should not update")
	}
	if m.Len() != 0 {
		t.Errorf("Expected empty manager after Clear, got %d", m.Len())
	}
}
