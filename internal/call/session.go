// Package call owns the live call sessions: their state machine, the
// ring timeout supervision and the bridge to the durable call records.
package call

import (
	"time"

	"github.com/RRM006/NexusCRM-sub000/internal/models"
)

// State is the lifecycle state of a call session
type State string

const (
	// StateRinging is the initial state, waiting for a receiver
	StateRinging State = "RINGING"
	// StateConnected means exactly one receiver accepted
	StateConnected State = "CONNECTED"
	// StateEnded is terminal; ended sessions are removed from the manager
	StateEnded State = "ENDED"
)

// Session is an immutable snapshot of a call session. The manager hands
// out snapshots only; the live record never leaves its lock.
type Session struct {
	ID       string          `json:"session_id"`
	TenantID string          `json:"tenant_id"`
	Type     models.CallType `json:"call_type"`
	State    State           `json:"state"`

	CallerUserID string `json:"caller_user_id"`
	CallerName   string `json:"caller_name"`
	CallerHandle string `json:"caller_handle"`

	// Receiver fields are set once a receiver wins the accept race
	ReceiverUserID string `json:"receiver_user_id,omitempty"`
	ReceiverName   string `json:"receiver_name,omitempty"`
	ReceiverHandle string `json:"receiver_handle,omitempty"`

	// TargetUserID is the dialed user for direct calls, empty for broadcast
	TargetUserID string `json:"target_user_id,omitempty"`

	// Notified holds the user ids the incoming-call event was fanned out to
	Notified []string `json:"notified,omitempty"`

	CreatedAt   time.Time `json:"created_at"`
	ConnectedAt time.Time `json:"connected_at,omitzero"`
	EndedAt     time.Time `json:"ended_at,omitzero"`
}

// session is the mutable record. All access goes through the manager's
// lock; the per-receiver reject set never escapes.
type session struct {
	Session

	notified map[string]struct{}
	rejected map[string]struct{}
}

func (s *session) snapshot() Session {
	snap := s.Session
	snap.Notified = make([]string, 0, len(s.notified))
	for userID := range s.notified {
		snap.Notified = append(snap.Notified, userID)
	}
	return snap
}

// rejectedByAll reports whether every notified receiver has declined.
// A session nobody was notified about can only end by cancel or timeout.
func (s *session) rejectedByAll() bool {
	if len(s.notified) == 0 {
		return false
	}
	for userID := range s.notified {
		if _, ok := s.rejected[userID]; !ok {
			return false
		}
	}
	return true
}

// durationSeconds computes the connected duration; sessions that never
// reached CONNECTED have duration 0.
func (s *session) durationSeconds(endedAt time.Time) int {
	if s.ConnectedAt.IsZero() {
		return 0
	}
	d := int(endedAt.Sub(s.ConnectedAt).Seconds())
	if d < 0 {
		return 0
	}
	return d
}
