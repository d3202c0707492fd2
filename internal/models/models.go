// Package models defines the domain models for nexus-rtc
package models

import (
	"time"
)

// Role is the CRM role carried by an authenticated principal
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleStaff    Role = "STAFF"
	RoleCustomer Role = "CUSTOMER"
)

// Valid reports whether the role is one of the known CRM roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleCustomer:
		return true
	}
	return false
}

// Principal is the authenticated identity bound to a live connection.
// It is created by token verification at registration time and lives
// exactly as long as the connection it is bound to.
type Principal struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
	TenantID    string `json:"tenant_id"`
}

// CallStatus represents the persisted state of a call record
type CallStatus string

const (
	CallStatusInitiated CallStatus = "initiated"
	CallStatusAnswered  CallStatus = "answered"
	CallStatusCompleted CallStatus = "completed"
	CallStatusCancelled CallStatus = "cancelled"
	CallStatusMissed    CallStatus = "missed"
	CallStatusRejected  CallStatus = "rejected"
)

// CallType distinguishes how the callee set was selected
type CallType string

const (
	// CallTypeBroadcast rings every admin/staff connection of the tenant
	CallTypeBroadcast CallType = "broadcast"
	// CallTypeDirect rings a single dialed user
	CallTypeDirect CallType = "direct"
)

// CallRecord is the durable call detail record written by the record
// bridge. Records are updated by SessionID so the signaling path never
// waits on the insert's generated id.
type CallRecord struct {
	ID              string     `json:"id" db:"id"`
	TenantID        string     `json:"tenant_id" db:"tenant_id"`
	SessionID       string     `json:"session_id" db:"session_id"`
	CallerUserID    string     `json:"caller_user_id" db:"caller_user_id"`
	CalleeUserID    *string    `json:"callee_user_id,omitempty" db:"callee_user_id"`
	CallType        CallType   `json:"call_type" db:"call_type"`
	Status          CallStatus `json:"status" db:"status"`
	StartTime       time.Time  `json:"start_time" db:"start_time"`
	AnswerTime      *time.Time `json:"answer_time,omitempty" db:"answer_time"`
	EndTime         *time.Time `json:"end_time,omitempty" db:"end_time"`
	DurationSeconds *int       `json:"duration_seconds,omitempty" db:"duration_seconds"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}
