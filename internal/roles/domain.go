// Package roles manages venue-scoped roles and their permission bindings.
// Roles are soft-deleted (is_active flag) so assignment history stays
// intact; bindings are plain configuration and are hard-deleted.
package roles

import (
	"time"

	"github.com/google/uuid"

	"github.com/venuedesk/venuedesk/internal/permissions"
)

// Role is a venue-scoped authority level. Level orders roles for display
// (higher means more authority); it does not imply permission inheritance.
type Role struct {
	ID          int64
	VenueID     uuid.UUID
	Name        string
	Description string
	Level       int
	IsActive    bool
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RoleWithPermissions pairs a role with its bound permissions. A role with
// no bindings carries an empty list.
type RoleWithPermissions struct {
	Role
	Permissions []permissions.Permission
}

// CreateRoleInput carries the fields needed to create a role.
type CreateRoleInput struct {
	VenueID     uuid.UUID
	Name        string
	Description string
	Level       int
	CreatedBy   uuid.UUID
}

// RolePatch is a partial update; nil fields are left unchanged.
type RolePatch struct {
	Name        *string
	Description *string
	Level       *int
}
