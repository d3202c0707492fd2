package call

import (
	"sync"
	"time"
)

// Supervisor schedules one-shot expiry callbacks for ringing sessions.
// Disarm is idempotent and race-safe against a concurrently firing
// timer: the fired callback runs without the supervisor lock held, and
// the session manager's own state gate makes a late fire a no-op.
type Supervisor struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	fire   func(sessionID string)
}

// NewSupervisor creates a supervisor calling fire when a deadline hits
func NewSupervisor(fire func(sessionID string)) *Supervisor {
	return &Supervisor{
		timers: make(map[string]*time.Timer),
		fire:   fire,
	}
}

// Arm schedules the expiry callback for a session. Re-arming an already
// armed session replaces its deadline.
func (s *Supervisor) Arm(sessionID string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[sessionID]; ok {
		t.Stop()
	}
	s.timers[sessionID] = time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, sessionID)
		s.mu.Unlock()

		s.fire(sessionID)
	})
}

// Disarm cancels a pending expiry. No-op if the timer already fired or
// was never armed.
func (s *Supervisor) Disarm(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[sessionID]; ok {
		t.Stop()
		delete(s.timers, sessionID)
	}
}

// Stop disarms every pending expiry
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}
