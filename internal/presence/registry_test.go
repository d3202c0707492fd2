package presence

import (
	"sort"
	"testing"

	"github.com/RRM006/NexusCRM-sub000/internal/models"
)

func principal(userID string, role models.Role, tenantID string) models.Principal {
	return models.Principal{
		UserID:      userID,
		DisplayName: "User " + userID,
		Role:        role,
		TenantID:    tenantID,
	}
}

func TestRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	r.Register("h1", principal("u1", models.RoleStaff, "tnt"))

	handle, ok := r.Lookup("u1")
	if !ok || handle != "h1" {
		t.Fatalf("expected h1, got %q ok=%v", handle, ok)
	}
	p, ok := r.Principal("h1")
	if !ok || p.UserID != "u1" {
		t.Fatalf("expected principal u1, got %+v ok=%v", p, ok)
	}
	if r.Count() != 1 {
		t.Fatalf("expected 1 connection, got %d", r.Count())
	}
}

func TestReRegisterSameUserMovesHandle(t *testing.T) {
	r := NewRegistry()
	r.Register("h1", principal("u1", models.RoleStaff, "tnt"))
	r.Register("h2", principal("u1", models.RoleStaff, "tnt"))

	handle, ok := r.Lookup("u1")
	if !ok || handle != "h2" {
		t.Fatalf("expected h2, got %q ok=%v", handle, ok)
	}
	if _, ok := r.Principal("h1"); ok {
		t.Fatalf("stale handle h1 still registered")
	}
	if r.Count() != 1 {
		t.Fatalf("expected 1 connection, got %d", r.Count())
	}
}

func TestReRegisterSameHandleSupersedesPrincipal(t *testing.T) {
	r := NewRegistry()
	r.Register("h1", principal("u1", models.RoleStaff, "tnt"))
	r.Register("h1", principal("u2", models.RoleAdmin, "tnt"))

	p, ok := r.Principal("h1")
	if !ok || p.UserID != "u2" {
		t.Fatalf("expected u2 on h1, got %+v", p)
	}
	if _, ok := r.Lookup("u1"); ok {
		t.Fatalf("u1 still resolves after being superseded")
	}
}

func TestUnregister(t *testing.T) {
	r := NewRegistry()
	r.Register("h1", principal("u1", models.RoleCustomer, "tnt"))

	p, ok := r.Unregister("h1")
	if !ok || p.UserID != "u1" {
		t.Fatalf("expected u1, got %+v ok=%v", p, ok)
	}
	if _, ok := r.Lookup("u1"); ok {
		t.Fatalf("u1 still online after unregister")
	}
	if _, ok := r.Unregister("h1"); ok {
		t.Fatalf("second unregister reported a principal")
	}
	if r.Count() != 0 {
		t.Fatalf("expected empty registry, got %d", r.Count())
	}
}

func TestUnregisterStaleHandleKeepsCurrentMapping(t *testing.T) {
	r := NewRegistry()
	r.Register("h1", principal("u1", models.RoleStaff, "tnt"))
	r.Register("h2", principal("u1", models.RoleStaff, "tnt"))

	// h1 was already superseded; a late disconnect of it must not
	// knock the user's current handle offline
	r.Unregister("h1")

	handle, ok := r.Lookup("u1")
	if !ok || handle != "h2" {
		t.Fatalf("expected u1 still on h2, got %q ok=%v", handle, ok)
	}
}

func TestListByTenantAndRoles(t *testing.T) {
	r := NewRegistry()
	r.Register("h-admin", principal("u1", models.RoleAdmin, "tnt-a"))
	r.Register("h-staff", principal("u2", models.RoleStaff, "tnt-a"))
	r.Register("h-cust", principal("u3", models.RoleCustomer, "tnt-a"))
	r.Register("h-other", principal("u4", models.RoleStaff, "tnt-b"))

	got := r.ListByTenantAndRoles("tnt-a", models.RoleAdmin, models.RoleStaff)
	sort.Strings(got)

	want := []string{"h-admin", "h-staff"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	if got := r.ListByTenantAndRoles("tnt-missing", models.RoleAdmin); len(got) != 0 {
		t.Fatalf("expected no handles for unknown tenant, got %v", got)
	}
}
