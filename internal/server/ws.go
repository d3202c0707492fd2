// Package server implements the WebSocket signaling server: connection
// registration, call lifecycle events and peer-to-peer relay of the
// WebRTC negotiation messages.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/RRM006/NexusCRM-sub000/internal/auth"
	"github.com/RRM006/NexusCRM-sub000/internal/call"
	"github.com/RRM006/NexusCRM-sub000/internal/config"
	"github.com/RRM006/NexusCRM-sub000/internal/models"
	"github.com/RRM006/NexusCRM-sub000/internal/presence"
	"github.com/RRM006/NexusCRM-sub000/internal/routing"
)

// Server handles signaling over WebSocket connections
type Server struct {
	config   *config.Config
	auth     *auth.Manager
	presence *presence.Registry
	calls    *call.Manager
	resolver *routing.Resolver
	hub      *Hub

	upgrader websocket.Upgrader
}

// NewServer creates the signaling server and hooks it up to the call
// manager's expiry callback
func NewServer(cfg *config.Config, authMgr *auth.Manager, reg *presence.Registry, calls *call.Manager, resolver *routing.Resolver) *Server {
	s := &Server{
		config:   cfg,
		auth:     authMgr,
		presence: reg,
		calls:    calls,
		resolver: resolver,
		hub:      NewHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}

	calls.OnExpired(s.handleExpired)
	return s
}

// Hub exposes the peer index, mainly for tests
func (s *Server) Hub() *Hub {
	return s.hub
}

// ConnectionCount returns the number of live connections
func (s *Server) ConnectionCount() int {
	return s.hub.Count()
}

// HandleWS upgrades an HTTP request and serves the connection until it
// drops
func (s *Server) HandleWS(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade failed: %v", err)
		return
	}

	peer := newWSPeer(conn, s.config.WSWriteTimeout)
	s.hub.Add(peer)
	log.Printf("[WS] Connection opened: %s", peer.Handle())

	done := make(chan struct{})
	go s.pingLoop(peer, done)

	defer func() {
		close(done)
		s.Disconnect(peer)
		_ = conn.Close()
	}()

	_ = conn.SetReadDeadline(time.Now().Add(s.config.WSReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.config.WSReadTimeout))
	})

	for {
		var evt Event
		if err := conn.ReadJSON(&evt); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Read error on %s: %v", peer.Handle(), err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(s.config.WSReadTimeout))

		s.Dispatch(peer, evt)
	}
}

func (s *Server) pingLoop(peer *wsPeer, done chan struct{}) {
	ticker := time.NewTicker(s.config.WSPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := peer.ping(); err != nil {
				return
			}
		}
	}
}

// Dispatch routes one inbound event. Every event except register
// requires the connection to have registered a principal first.
func (s *Server) Dispatch(peer Peer, evt Event) {
	if evt.Event == EvRegister {
		s.handleRegister(peer, evt)
		return
	}

	principal, ok := s.presence.Principal(peer.Handle())
	if !ok {
		s.sendError(peer, CodeNotRegistered, "connection is not registered")
		return
	}

	switch evt.Event {
	case EvCallInitiate:
		s.handleInitiate(peer, principal, evt)
	case EvCallAccept:
		s.handleAccept(peer, principal, evt)
	case EvCallReject:
		s.handleReject(peer, principal, evt)
	case EvCallCancel:
		s.handleCancel(peer, principal, evt)
	case EvCallEnd:
		s.handleEnd(peer, principal, evt)
	case EvWebRTCOffer, EvWebRTCAnswer, EvWebRTCICECandidate:
		s.handleSignal(peer, evt)
	default:
		s.sendError(peer, CodeInvalidPayload, "unknown event: "+evt.Event)
	}
}

// Disconnect tears down everything bound to a dropped connection:
// the peer index, the presence entry and every session the handle took
// part in. It runs synchronously so a re-registration for the same user
// never observes a stale handle.
func (s *Server) Disconnect(peer Peer) {
	handle := peer.Handle()
	s.hub.Remove(handle)

	if p, ok := s.presence.Unregister(handle); ok {
		log.Printf("[WS] Connection closed: %s user=%s", handle, p.UserID)
	} else {
		log.Printf("[WS] Connection closed: %s (unregistered)", handle)
	}

	for _, swept := range s.calls.DisconnectSweep(handle) {
		sess := swept.Session

		if sess.ConnectedAt.IsZero() {
			// Ringing session: the caller dropped, tell the receivers
			s.hub.Broadcast(s.resolver.HandlesForUsers(sess.Notified), EvCallCancelled, SessionRef{SessionID: sess.ID})
			continue
		}

		other := sess.CallerHandle
		if other == handle {
			other = sess.ReceiverHandle
		}
		s.hub.Send(other, EvCallEnded, CallEndedPayload{
			SessionID:       sess.ID,
			Reason:          ReasonDisconnected,
			DurationSeconds: swept.DurationSeconds,
		})
	}
}

func (s *Server) handleRegister(peer Peer, evt Event) {
	var payload RegisterPayload
	if err := unmarshal(evt, &payload); err != nil || payload.Token == "" {
		s.sendError(peer, CodeInvalidPayload, "register requires a token")
		return
	}

	principal, err := s.auth.Verify(payload.Token, time.Now())
	if err != nil {
		log.Printf("[WS] Registration rejected on %s: %v", peer.Handle(), err)
		s.sendError(peer, CodeAuthFailed, "token verification failed")
		return
	}

	s.presence.Register(peer.Handle(), principal)
	log.Printf("[WS] Registered %s as user=%s tenant=%s role=%s", peer.Handle(), principal.UserID, principal.TenantID, principal.Role)

	_ = peer.Send(EvRegistered, RegisteredPayload{
		Handle:      peer.Handle(),
		UserID:      principal.UserID,
		DisplayName: principal.DisplayName,
		Role:        principal.Role,
		TenantID:    principal.TenantID,
	})
}

func (s *Server) handleInitiate(peer Peer, principal models.Principal, evt Event) {
	var payload InitiatePayload
	if err := unmarshal(evt, &payload); err != nil {
		s.sendError(peer, CodeInvalidPayload, "malformed call-initiate payload")
		return
	}

	if payload.TargetUserID != "" {
		target, ok := s.resolver.ResolveDirect(principal.TenantID, payload.TargetUserID)
		if !ok {
			s.sendError(peer, CodeTargetOffline, "dialed user is not connected")
			return
		}

		sess := s.calls.CreateDirect(principal.UserID, principal.DisplayName, peer.Handle(), principal.TenantID, payload.TargetUserID)
		s.hub.Send(target.Handle, EvIncomingCall, IncomingCallPayload{
			SessionID:         sess.ID,
			CallerUserID:      sess.CallerUserID,
			CallerDisplayName: sess.CallerName,
			CallType:          sess.Type,
		})
		_ = peer.Send(EvCallRinging, SessionRef{SessionID: sess.ID})
		return
	}

	targets := s.resolver.ResolveBroadcast(principal.TenantID, principal.UserID)
	userIDs := make([]string, 0, len(targets))
	handles := make([]string, 0, len(targets))
	for _, t := range targets {
		userIDs = append(userIDs, t.UserID)
		handles = append(handles, t.Handle)
	}

	sess := s.calls.CreateBroadcast(principal.UserID, principal.DisplayName, peer.Handle(), principal.TenantID, userIDs)
	s.hub.Broadcast(handles, EvIncomingCall, IncomingCallPayload{
		SessionID:         sess.ID,
		CallerUserID:      sess.CallerUserID,
		CallerDisplayName: sess.CallerName,
		CallType:          sess.Type,
	})
	_ = peer.Send(EvCallRinging, SessionRef{SessionID: sess.ID})
}

func (s *Server) handleAccept(peer Peer, principal models.Principal, evt Event) {
	var ref SessionRef
	if err := unmarshal(evt, &ref); err != nil || ref.SessionID == "" {
		s.sendError(peer, CodeInvalidPayload, "call-accept requires a session id")
		return
	}

	sess, err := s.calls.TryAccept(ref.SessionID, principal.UserID, principal.DisplayName, peer.Handle())
	switch {
	case err == nil:
	case errors.Is(err, call.ErrAlreadyResolved), errors.Is(err, call.ErrNotFound):
		// Lost the accept race; a defined outcome, not a fault
		_ = peer.Send(EvCallUnavailable, SessionRef{SessionID: ref.SessionID})
		return
	case errors.Is(err, call.ErrAlreadyRejected):
		s.sendError(peer, CodeAlreadyRejected, "call was already rejected on this account")
		return
	default:
		s.sendError(peer, CodeForbidden, "call cannot be accepted by this user")
		return
	}

	s.hub.Send(sess.CallerHandle, EvCallAccepted, PeerInfoPayload{
		SessionID:       sess.ID,
		PeerHandle:      sess.ReceiverHandle,
		PeerUserID:      sess.ReceiverUserID,
		PeerDisplayName: sess.ReceiverName,
	})
	_ = peer.Send(EvCallConnected, PeerInfoPayload{
		SessionID:       sess.ID,
		PeerHandle:      sess.CallerHandle,
		PeerUserID:      sess.CallerUserID,
		PeerDisplayName: sess.CallerName,
	})
}

func (s *Server) handleReject(peer Peer, principal models.Principal, evt Event) {
	var ref SessionRef
	if err := unmarshal(evt, &ref); err != nil || ref.SessionID == "" {
		s.sendError(peer, CodeInvalidPayload, "call-reject requires a session id")
		return
	}

	sess, exhausted, err := s.calls.Reject(ref.SessionID, principal.UserID)
	switch {
	case err == nil:
	case errors.Is(err, call.ErrNotFound), errors.Is(err, call.ErrAlreadyResolved):
		_ = peer.Send(EvCallUnavailable, SessionRef{SessionID: ref.SessionID})
		return
	default:
		s.sendError(peer, CodeForbidden, "call cannot be rejected by this user")
		return
	}

	_ = peer.Send(EvCallRejectedAck, SessionRef{SessionID: ref.SessionID})

	if exhausted {
		s.hub.Send(sess.CallerHandle, EvCallEnded, CallEndedPayload{
			SessionID: sess.ID,
			Reason:    ReasonNoAnswer,
		})
	}
}

func (s *Server) handleCancel(peer Peer, principal models.Principal, evt Event) {
	var ref SessionRef
	if err := unmarshal(evt, &ref); err != nil || ref.SessionID == "" {
		s.sendError(peer, CodeInvalidPayload, "call-cancel requires a session id")
		return
	}

	sess, err := s.calls.Cancel(ref.SessionID, principal.UserID)
	if err != nil {
		s.sendCallError(peer, err)
		return
	}

	_ = peer.Send(EvCallEnded, CallEndedPayload{SessionID: sess.ID, Reason: ReasonEnded})
	s.hub.Broadcast(s.resolver.HandlesForUsers(sess.Notified), EvCallCancelled, SessionRef{SessionID: sess.ID})
}

func (s *Server) handleEnd(peer Peer, principal models.Principal, evt Event) {
	var ref SessionRef
	if err := unmarshal(evt, &ref); err != nil || ref.SessionID == "" {
		s.sendError(peer, CodeInvalidPayload, "call-end requires a session id")
		return
	}

	sess, status, duration, err := s.calls.End(ref.SessionID, principal.UserID)
	if err != nil {
		s.sendCallError(peer, err)
		return
	}

	if status == models.CallStatusCancelled {
		// The caller hung up while still ringing
		_ = peer.Send(EvCallEnded, CallEndedPayload{SessionID: sess.ID, Reason: ReasonEnded})
		s.hub.Broadcast(s.resolver.HandlesForUsers(sess.Notified), EvCallCancelled, SessionRef{SessionID: sess.ID})
		return
	}

	ended := CallEndedPayload{SessionID: sess.ID, Reason: ReasonEnded, DurationSeconds: duration}
	s.hub.Send(sess.CallerHandle, EvCallEnded, ended)
	s.hub.Send(sess.ReceiverHandle, EvCallEnded, ended)
}

// handleSignal forwards a negotiation message verbatim to the target
// handle, tagged with the sender's handle. A target that is no longer
// live drops the message; peers tolerate lost signaling.
func (s *Server) handleSignal(peer Peer, evt Event) {
	var payload SignalPayload
	if err := unmarshal(evt, &payload); err != nil || payload.SessionID == "" || payload.TargetHandle == "" {
		s.sendError(peer, CodeInvalidPayload, evt.Event+" requires session id and target handle")
		return
	}

	payload.SenderHandle = peer.Handle()
	s.hub.Send(payload.TargetHandle, evt.Event, payload)
}

// handleExpired runs on the timeout supervisor's goroutine when a
// ringing session hits its deadline
func (s *Server) handleExpired(sess call.Session) {
	s.hub.Send(sess.CallerHandle, EvCallEnded, CallEndedPayload{
		SessionID: sess.ID,
		Reason:    ReasonNoAnswer,
	})
	s.hub.Broadcast(s.resolver.HandlesForUsers(sess.Notified), EvCallCancelled, SessionRef{SessionID: sess.ID})
}

func (s *Server) sendError(peer Peer, code, message string) {
	_ = peer.Send(EvError, ErrorPayload{Code: code, Message: message})
}

// sendCallError maps a state-machine outcome to an error event for the
// sender only
func (s *Server) sendCallError(peer Peer, err error) {
	switch {
	case errors.Is(err, call.ErrNotFound):
		s.sendError(peer, CodeNotFound, "no such call session")
	case errors.Is(err, call.ErrAlreadyResolved):
		s.sendError(peer, CodeNotFound, "call session already resolved")
	case errors.Is(err, call.ErrForbidden):
		s.sendError(peer, CodeForbidden, "operation not permitted for this user")
	default:
		s.sendError(peer, CodeInvalidPayload, err.Error())
	}
}

func unmarshal(evt Event, v any) error {
	if len(evt.Data) == 0 {
		return nil
	}
	return json.Unmarshal(evt.Data, v)
}
