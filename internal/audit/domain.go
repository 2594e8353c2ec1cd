// Package audit records administrative permission changes for a venue.
// The log is append-only and written on a best-effort basis: a failed
// write must never fail or roll back the mutation that triggered it.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action types recorded in the audit log.
const (
	ActionRoleAssigned        = "role_assigned"
	ActionRoleRemoved         = "role_removed"
	ActionPermissionsAssigned = "permissions_assigned"
	ActionPermissionsRemoved  = "permissions_removed"
	ActionOverrideAdded       = "override_added"
	ActionOverrideRemoved     = "override_removed"
)

// Entry describes one administrative action to be appended to the log.
type Entry struct {
	VenueID      uuid.UUID
	Action       string
	ActorID      uuid.UUID
	TargetUserID *uuid.UUID
	RoleID       *int64
	PermissionID *int64
	Details      map[string]any
}

// LogEntry is a persisted audit record.
type LogEntry struct {
	ID           int64
	VenueID      uuid.UUID
	Action       string
	ActorID      uuid.UUID
	TargetUserID *uuid.UUID
	RoleID       *int64
	PermissionID *int64
	Details      map[string]any
	CreatedAt    time.Time
}
