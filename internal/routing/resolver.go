// Package routing decides which live connections an incoming call rings
package routing

import (
	"github.com/RRM006/NexusCRM-sub000/internal/models"
	"github.com/RRM006/NexusCRM-sub000/internal/presence"
)

// ReceiverRoles are the roles eligible to pick up a broadcast call
var ReceiverRoles = []models.Role{models.RoleAdmin, models.RoleStaff}

// Target is one connection an incoming-call notification goes to
type Target struct {
	UserID string
	Handle string
}

// Resolver computes the notification fan-out set for a call from the
// presence registry
type Resolver struct {
	presence *presence.Registry
}

// NewResolver creates a new fan-out resolver
func NewResolver(reg *presence.Registry) *Resolver {
	return &Resolver{presence: reg}
}

// ResolveBroadcast returns every eligible receiver connection in the
// tenant, excluding the caller's own registration
func (r *Resolver) ResolveBroadcast(tenantID, callerUserID string) []Target {
	handles := r.presence.ListByTenantAndRoles(tenantID, ReceiverRoles...)

	var targets []Target
	for _, handle := range handles {
		p, ok := r.presence.Principal(handle)
		if !ok || p.UserID == callerUserID {
			continue
		}
		targets = append(targets, Target{UserID: p.UserID, Handle: handle})
	}
	return targets
}

// ResolveDirect returns the single live connection of a dialed user in
// the tenant. A miss means the user is currently offline.
func (r *Resolver) ResolveDirect(tenantID, targetUserID string) (Target, bool) {
	handle, ok := r.presence.Lookup(targetUserID)
	if !ok {
		return Target{}, false
	}
	p, ok := r.presence.Principal(handle)
	if !ok || p.TenantID != tenantID {
		return Target{}, false
	}
	return Target{UserID: targetUserID, Handle: handle}, true
}

// HandlesForUsers maps user ids to their currently-live handles,
// skipping users that have gone offline
func (r *Resolver) HandlesForUsers(userIDs []string) []string {
	var handles []string
	for _, userID := range userIDs {
		if handle, ok := r.presence.Lookup(userID); ok {
			handles = append(handles, handle)
		}
	}
	return handles
}
