package call

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RRM006/NexusCRM-sub000/internal/models"
)

// Outcomes of the state-machine entry points. ErrAlreadyResolved is the
// defined result for a receiver losing the accept race, not a fault.
var (
	ErrNotFound        = errors.New("call: session not found")
	ErrAlreadyResolved = errors.New("call: session already resolved")
	ErrForbidden       = errors.New("call: operation not permitted")
	ErrAlreadyRejected = errors.New("call: receiver already rejected this call")
)

// Recorder mirrors session lifecycle transitions into the durable call
// record collaborator. Implementations must not block the caller.
type Recorder interface {
	OnInitiated(s Session)
	OnConnected(s Session)
	OnEnded(s Session, status models.CallStatus, durationSeconds int)
}

// Swept describes one session terminated by a disconnect sweep
type Swept struct {
	Session         Session
	Status          models.CallStatus
	DurationSeconds int
}

// Manager owns every live call session. It is the single mutual
// exclusion boundary of the subsystem: all state transitions run under
// its lock, which is what makes the accept check-and-set atomic with
// respect to cancel, expiry and disconnect sweeps.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*session

	rec      Recorder
	timeouts *Supervisor

	ringTimeout time.Duration
	expired     func(Session)

	now func() time.Time
}

// NewManager creates a session manager. rec receives lifecycle
// transitions; ringTimeout bounds how long a session may stay RINGING.
func NewManager(ringTimeout time.Duration, rec Recorder) *Manager {
	m := &Manager{
		sessions:    make(map[string]*session),
		rec:         rec,
		ringTimeout: ringTimeout,
		now:         time.Now,
	}
	m.timeouts = NewSupervisor(m.expire)
	return m
}

// OnExpired registers the callback invoked when a ringing session times
// out. Must be set during wiring, before any session is created.
func (m *Manager) OnExpired(fn func(Session)) {
	m.expired = fn
}

// CreateBroadcast creates a ringing session that fans out to every
// eligible receiver of the tenant. notified is the set of user ids the
// incoming-call event is sent to.
func (m *Manager) CreateBroadcast(callerUserID, callerName, callerHandle, tenantID string, notified []string) Session {
	return m.create(callerUserID, callerName, callerHandle, tenantID, "", models.CallTypeBroadcast, notified)
}

// CreateDirect creates a ringing session dialing a single user. Only
// the dialed user may accept it.
func (m *Manager) CreateDirect(callerUserID, callerName, callerHandle, tenantID, targetUserID string) Session {
	return m.create(callerUserID, callerName, callerHandle, tenantID, targetUserID, models.CallTypeDirect, []string{targetUserID})
}

func (m *Manager) create(callerUserID, callerName, callerHandle, tenantID, targetUserID string, callType models.CallType, notified []string) Session {
	sess := &session{
		Session: Session{
			ID:           uuid.NewString(),
			TenantID:     tenantID,
			Type:         callType,
			State:        StateRinging,
			CallerUserID: callerUserID,
			CallerName:   callerName,
			CallerHandle: callerHandle,
			TargetUserID: targetUserID,
			CreatedAt:    m.now(),
		},
		notified: make(map[string]struct{}, len(notified)),
		rejected: make(map[string]struct{}),
	}
	for _, userID := range notified {
		sess.notified[userID] = struct{}{}
	}

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	snap := sess.snapshot()
	m.mu.Unlock()

	m.timeouts.Arm(sess.ID, m.ringTimeout)
	m.rec.OnInitiated(snap)

	log.Printf("[Call] Session created: %s type=%s caller=%s tenant=%s", snap.ID, callType, callerUserID, tenantID)
	return snap
}

// TryAccept is the race-critical accept. Exactly one call per session
// ever succeeds; every later attempt observes ErrAlreadyResolved (or
// ErrNotFound once the session is gone).
func (m *Manager) TryAccept(sessionID, receiverUserID, receiverName, receiverHandle string) (Session, error) {
	m.mu.Lock()
	sess, ok := m.sessions[sessionID]
	if !ok {
		m.mu.Unlock()
		return Session{}, ErrNotFound
	}
	if sess.State != StateRinging {
		snap := sess.snapshot()
		m.mu.Unlock()
		return snap, ErrAlreadyResolved
	}
	if receiverUserID == sess.CallerUserID {
		m.mu.Unlock()
		return Session{}, ErrForbidden
	}
	if sess.TargetUserID != "" && receiverUserID != sess.TargetUserID {
		m.mu.Unlock()
		return Session{}, ErrForbidden
	}
	if _, rejected := sess.rejected[receiverUserID]; rejected {
		m.mu.Unlock()
		return Session{}, ErrAlreadyRejected
	}

	sess.State = StateConnected
	sess.ReceiverUserID = receiverUserID
	sess.ReceiverName = receiverName
	sess.ReceiverHandle = receiverHandle
	sess.ConnectedAt = m.now()
	snap := sess.snapshot()
	m.mu.Unlock()

	m.timeouts.Disarm(sessionID)
	m.rec.OnConnected(snap)

	log.Printf("[Call] Session accepted: %s receiver=%s", sessionID, receiverUserID)
	return snap, nil
}

// Reject records that one receiver declined. The session keeps ringing
// for the others; a rejecting receiver may not accept later. When every
// notified receiver has declined the session ends.
func (m *Manager) Reject(sessionID, receiverUserID string) (Session, bool, error) {
	m.mu.Lock()
	sess, ok := m.sessions[sessionID]
	if !ok {
		m.mu.Unlock()
		return Session{}, false, ErrNotFound
	}
	if sess.State != StateRinging {
		m.mu.Unlock()
		return Session{}, false, ErrAlreadyResolved
	}
	if receiverUserID == sess.CallerUserID {
		m.mu.Unlock()
		return Session{}, false, ErrForbidden
	}

	sess.rejected[receiverUserID] = struct{}{}
	if !sess.rejectedByAll() {
		snap := sess.snapshot()
		m.mu.Unlock()
		return snap, false, nil
	}

	snap := m.endLocked(sess)
	m.mu.Unlock()

	m.timeouts.Disarm(sessionID)
	m.rec.OnEnded(snap, models.CallStatusRejected, 0)

	log.Printf("[Call] Session rejected by all receivers: %s", sessionID)
	return snap, true, nil
}

// Cancel ends a still-ringing session. Only the original caller may
// cancel.
func (m *Manager) Cancel(sessionID, byUserID string) (Session, error) {
	m.mu.Lock()
	sess, ok := m.sessions[sessionID]
	if !ok {
		m.mu.Unlock()
		return Session{}, ErrNotFound
	}
	if byUserID != sess.CallerUserID {
		m.mu.Unlock()
		return Session{}, ErrForbidden
	}
	if sess.State != StateRinging {
		m.mu.Unlock()
		return Session{}, ErrAlreadyResolved
	}

	snap := m.endLocked(sess)
	m.mu.Unlock()

	m.timeouts.Disarm(sessionID)
	m.rec.OnEnded(snap, models.CallStatusCancelled, 0)

	log.Printf("[Call] Session cancelled: %s by=%s", sessionID, byUserID)
	return snap, nil
}

// End terminates a connected session from either party and returns the
// recorded duration. A caller ending their own still-ringing session is
// routed to cancel semantics.
func (m *Manager) End(sessionID, byUserID string) (Session, models.CallStatus, int, error) {
	m.mu.Lock()
	sess, ok := m.sessions[sessionID]
	if !ok {
		m.mu.Unlock()
		return Session{}, "", 0, ErrNotFound
	}

	if sess.State == StateRinging {
		if byUserID != sess.CallerUserID {
			m.mu.Unlock()
			return Session{}, "", 0, ErrForbidden
		}
		snap := m.endLocked(sess)
		m.mu.Unlock()

		m.timeouts.Disarm(sessionID)
		m.rec.OnEnded(snap, models.CallStatusCancelled, 0)
		return snap, models.CallStatusCancelled, 0, nil
	}

	if byUserID != sess.CallerUserID && byUserID != sess.ReceiverUserID {
		m.mu.Unlock()
		return Session{}, "", 0, ErrForbidden
	}

	snap := m.endLocked(sess)
	duration := sess.durationSeconds(snap.EndedAt)
	m.mu.Unlock()

	m.rec.OnEnded(snap, models.CallStatusCompleted, duration)

	log.Printf("[Call] Session ended: %s by=%s duration=%ds", sessionID, byUserID, duration)
	return snap, models.CallStatusCompleted, duration, nil
}

// expire is invoked by the timeout supervisor. It is gated on the
// session still ringing, so an expiry racing a near-simultaneous accept
// resolves to whichever transition takes the lock first.
func (m *Manager) expire(sessionID string) {
	m.mu.Lock()
	sess, ok := m.sessions[sessionID]
	if !ok || sess.State != StateRinging {
		m.mu.Unlock()
		return
	}
	snap := m.endLocked(sess)
	m.mu.Unlock()

	m.rec.OnEnded(snap, models.CallStatusMissed, 0)
	log.Printf("[Call] Session expired: %s", sessionID)

	if m.expired != nil {
		m.expired(snap)
	}
}

// DisconnectSweep terminates every session the dropped handle takes
// part in and returns them so the other party of each can be notified.
// After the sweep no live session references the handle.
func (m *Manager) DisconnectSweep(handle string) []Swept {
	m.mu.Lock()
	var swept []Swept
	for _, sess := range m.sessions {
		if sess.CallerHandle != handle && sess.ReceiverHandle != handle {
			continue
		}

		status := models.CallStatusCancelled
		if sess.State == StateConnected {
			status = models.CallStatusCompleted
		}
		snap := m.endLocked(sess)
		swept = append(swept, Swept{
			Session:         snap,
			Status:          status,
			DurationSeconds: sess.durationSeconds(snap.EndedAt),
		})
	}
	m.mu.Unlock()

	for _, s := range swept {
		m.timeouts.Disarm(s.Session.ID)
		m.rec.OnEnded(s.Session, s.Status, s.DurationSeconds)
		log.Printf("[Call] Session swept on disconnect: %s status=%s", s.Session.ID, s.Status)
	}
	return swept
}

// endLocked transitions a session to ENDED and removes it from the
// live table. Terminal sessions survive only as durable records.
func (m *Manager) endLocked(sess *session) Session {
	sess.State = StateEnded
	sess.EndedAt = m.now()
	delete(m.sessions, sess.ID)
	return sess.snapshot()
}

// Get returns a snapshot of a live session
func (m *Manager) Get(sessionID string) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return Session{}, false
	}
	return sess.snapshot(), true
}

// ActiveSessions returns snapshots of every live session
func (m *Manager) ActiveSessions() []Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, sess.snapshot())
	}
	return out
}

// ActiveCount returns the number of live sessions
func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close disarms all pending ring timeouts
func (m *Manager) Close() {
	m.timeouts.Stop()
}
