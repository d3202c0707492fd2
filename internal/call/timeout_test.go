package call

import (
	"sync"
	"testing"
	"time"
)

type fireCounter struct {
	mu    sync.Mutex
	fired map[string]int
}

func newFireCounter() *fireCounter {
	return &fireCounter{fired: make(map[string]int)}
}

func (f *fireCounter) fire(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fired[sessionID]++
}

func (f *fireCounter) count(sessionID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fired[sessionID]
}

func TestSupervisorFiresOnce(t *testing.T) {
	fc := newFireCounter()
	s := NewSupervisor(fc.fire)
	defer s.Stop()

	s.Arm("s1", 10*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	if got := fc.count("s1"); got != 1 {
		t.Fatalf("expected 1 fire, got %d", got)
	}
}

func TestSupervisorDisarmPreventsFire(t *testing.T) {
	fc := newFireCounter()
	s := NewSupervisor(fc.fire)
	defer s.Stop()

	s.Arm("s1", 30*time.Millisecond)
	s.Disarm("s1")

	time.Sleep(100 * time.Millisecond)
	if got := fc.count("s1"); got != 0 {
		t.Fatalf("disarmed timer fired %d times", got)
	}
}

func TestSupervisorDisarmIdempotent(t *testing.T) {
	fc := newFireCounter()
	s := NewSupervisor(fc.fire)
	defer s.Stop()

	s.Disarm("never-armed")
	s.Arm("s1", 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	s.Disarm("s1") // already fired
	s.Disarm("s1")

	if got := fc.count("s1"); got != 1 {
		t.Fatalf("expected 1 fire, got %d", got)
	}
}

func TestSupervisorRearmReplacesDeadline(t *testing.T) {
	fc := newFireCounter()
	s := NewSupervisor(fc.fire)
	defer s.Stop()

	s.Arm("s1", 10*time.Millisecond)
	s.Arm("s1", 300*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	if got := fc.count("s1"); got != 0 {
		t.Fatalf("replaced timer fired early %d times", got)
	}
}

func TestSupervisorStopDisarmsAll(t *testing.T) {
	fc := newFireCounter()
	s := NewSupervisor(fc.fire)

	s.Arm("s1", 30*time.Millisecond)
	s.Arm("s2", 30*time.Millisecond)
	s.Stop()

	time.Sleep(100 * time.Millisecond)
	if fc.count("s1")+fc.count("s2") != 0 {
		t.Fatalf("stopped supervisor fired timers")
	}
}
