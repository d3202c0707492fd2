package server

import (
	"encoding/json"

	"github.com/RRM006/NexusCRM-sub000/internal/models"
)

// Event is the wire envelope for every signaling message, both
// directions
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound event names
const (
	EvRegister           = "register"
	EvCallInitiate       = "call-initiate"
	EvCallAccept         = "call-accept"
	EvCallReject         = "call-reject"
	EvCallCancel         = "call-cancel"
	EvCallEnd            = "call-end"
	EvWebRTCOffer        = "webrtc-offer"
	EvWebRTCAnswer       = "webrtc-answer"
	EvWebRTCICECandidate = "webrtc-ice-candidate"
)

// Outbound event names
const (
	EvRegistered      = "registered"
	EvIncomingCall    = "incoming-call"
	EvCallRinging     = "call-ringing"
	EvCallAccepted    = "call-accepted"
	EvCallConnected   = "call-connected"
	EvCallRejectedAck = "call-rejected-ack"
	EvCallCancelled   = "call-cancelled"
	EvCallUnavailable = "call-unavailable"
	EvCallEnded       = "call-ended"
	EvError           = "error"
)

// Reasons carried by call-ended
const (
	ReasonEnded        = "ended"
	ReasonNoAnswer     = "no-answer"
	ReasonDisconnected = "disconnected"
)

// Error codes carried by error events
const (
	CodeInvalidPayload  = "invalid-payload"
	CodeNotRegistered   = "not-registered"
	CodeAuthFailed      = "auth-failed"
	CodeTargetOffline   = "target-offline"
	CodeForbidden       = "forbidden"
	CodeAlreadyRejected = "already-rejected"
	CodeNotFound        = "not-found"
)

// RegisterPayload carries the connection token
type RegisterPayload struct {
	Token string `json:"token"`
}

// RegisteredPayload acknowledges a registration with the handle the
// client is addressable by
type RegisteredPayload struct {
	Handle      string      `json:"handle"`
	UserID      string      `json:"user_id"`
	DisplayName string      `json:"display_name"`
	Role        models.Role `json:"role"`
	TenantID    string      `json:"tenant_id"`
}

// InitiatePayload starts a call. An empty TargetUserID rings every
// eligible receiver of the caller's tenant.
type InitiatePayload struct {
	TargetUserID string `json:"target_user_id,omitempty"`
}

// SessionRef addresses an existing session
type SessionRef struct {
	SessionID string `json:"session_id"`
}

// IncomingCallPayload is fanned out to eligible receivers
type IncomingCallPayload struct {
	SessionID         string          `json:"session_id"`
	CallerUserID      string          `json:"caller_user_id"`
	CallerDisplayName string          `json:"caller_display_name"`
	CallType          models.CallType `json:"call_type"`
}

// PeerInfoPayload tells one party how to address the other for the
// WebRTC handshake
type PeerInfoPayload struct {
	SessionID       string `json:"session_id"`
	PeerHandle      string `json:"peer_handle"`
	PeerUserID      string `json:"peer_user_id"`
	PeerDisplayName string `json:"peer_display_name"`
}

// CallEndedPayload reports a terminal session to its parties
type CallEndedPayload struct {
	SessionID       string `json:"session_id"`
	Reason          string `json:"reason"`
	DurationSeconds int    `json:"duration_seconds"`
}

// SignalPayload is a relayed connection-negotiation message. SDP and
// Candidate are opaque blobs understood only by the two endpoints.
type SignalPayload struct {
	SessionID    string          `json:"session_id"`
	TargetHandle string          `json:"target_handle"`
	SenderHandle string          `json:"sender_handle,omitempty"`
	SDP          json.RawMessage `json:"sdp,omitempty"`
	Candidate    json.RawMessage `json:"candidate,omitempty"`
}

// ErrorPayload is sent to the offending sender only
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
