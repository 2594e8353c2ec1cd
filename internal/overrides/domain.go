// Package overrides manages explicit per-user permission decisions. An
// override is either a grant or a deny for one (venue, user, permission)
// triple and beats whatever the user's roles say. Overrides may expire;
// an expired row is treated as absent at read time.
package overrides

import (
	"time"

	"github.com/google/uuid"

	"github.com/venuedesk/venuedesk/internal/permissions"
)

// Override is one explicit grant/deny decision.
type Override struct {
	ID           int64
	VenueID      uuid.UUID
	UserID       uuid.UUID
	PermissionID int64
	IsGranted    bool
	Reason       string
	GrantedBy    uuid.UUID
	ExpiresAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OverrideWithPermission pairs an override with its catalog permission.
type OverrideWithPermission struct {
	Override
	Permission permissions.Permission
}

// GrantOverrideInput carries the fields needed to upsert an override.
type GrantOverrideInput struct {
	VenueID      uuid.UUID
	UserID       uuid.UUID
	PermissionID int64
	IsGranted    bool
	Reason       string
	ExpiresAt    *time.Time
}
