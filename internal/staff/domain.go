// Package staff manages user-role assignments within a venue. Assignments
// are soft-revoked (is_active flag) so the who-held-what history survives.
package staff

import (
	"time"

	"github.com/google/uuid"

	"github.com/venuedesk/venuedesk/internal/roles"
)

// Assignment links a user to a role within a venue. A user may hold any
// number of roles; resolved permissions are the union across active ones.
type Assignment struct {
	ID         int64
	VenueID    uuid.UUID
	UserID     uuid.UUID
	RoleID     int64
	AssignedBy uuid.UUID
	Notes      string
	IsActive   bool
	AssignedAt time.Time
	RevokedAt  *time.Time
}

// AssignmentWithRole pairs an assignment with its role row.
type AssignmentWithRole struct {
	Assignment
	Role roles.Role
}

// AssignUserRoleInput carries the fields needed to assign a role.
type AssignUserRoleInput struct {
	VenueID uuid.UUID
	UserID  uuid.UUID
	RoleID  int64
	Notes   string
}

// Member is one user of the venue with their active roles and eagerly
// resolved permission names.
type Member struct {
	UserID      uuid.UUID
	Roles       []roles.Role
	Permissions []string
}
