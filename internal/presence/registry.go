// Package presence tracks which users currently have a live connection
package presence

import (
	"sync"

	"github.com/RRM006/NexusCRM-sub000/internal/models"
)

// Registry maps connection handles to principals, with a reverse index
// from user id to its single live handle. Entries are removed
// synchronously on disconnect; every entry has a live connection behind
// it.
type Registry struct {
	mu       sync.RWMutex
	byHandle map[string]models.Principal
	byUser   map[string]string
}

// NewRegistry creates an empty presence registry
func NewRegistry() *Registry {
	return &Registry{
		byHandle: make(map[string]models.Principal),
		byUser:   make(map[string]string),
	}
}

// Register binds a principal to a connection handle. A later
// registration for the same user id silently drops the prior handle's
// mapping; a later registration on the same handle supersedes its
// previous principal.
func (r *Registry) Register(handle string, p models.Principal) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byHandle[handle]; ok && r.byUser[prev.UserID] == handle {
		delete(r.byUser, prev.UserID)
	}
	if old, ok := r.byUser[p.UserID]; ok {
		delete(r.byHandle, old)
	}

	r.byHandle[handle] = p
	r.byUser[p.UserID] = handle
}

// Unregister removes both index entries for a handle. It returns the
// principal that was bound to it, if any.
func (r *Registry) Unregister(handle string) (models.Principal, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byHandle[handle]
	if !ok {
		return models.Principal{}, false
	}

	delete(r.byHandle, handle)
	if r.byUser[p.UserID] == handle {
		delete(r.byUser, p.UserID)
	}
	return p, true
}

// Lookup returns the live handle for a user id. A miss means the user
// is currently offline, not a fault.
func (r *Registry) Lookup(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handle, ok := r.byUser[userID]
	return handle, ok
}

// Principal returns the principal registered on a handle
func (r *Registry) Principal(handle string) (models.Principal, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byHandle[handle]
	return p, ok
}

// ListByTenantAndRoles returns the handles of every registered
// connection in the tenant whose role is one of the given roles.
// Order is unspecified.
func (r *Registry) ListByTenantAndRoles(tenantID string, roles ...models.Role) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var handles []string
	for handle, p := range r.byHandle {
		if p.TenantID != tenantID {
			continue
		}
		for _, role := range roles {
			if p.Role == role {
				handles = append(handles, handle)
				break
			}
		}
	}
	return handles
}

// Count returns the number of registered connections
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byHandle)
}
