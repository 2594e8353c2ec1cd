// Package rbac resolves authorization decisions for a venue. A decision
// combines two sources: permissions conferred by the user's active role
// assignments and explicit per-user overrides. A live override always wins;
// without one, the role-derived set decides.
package rbac

import (
	"github.com/venuedesk/venuedesk/internal/overrides"
	"github.com/venuedesk/venuedesk/internal/staff"
)

// OverrideDecision is one live override projected to its permission name.
type OverrideDecision struct {
	PermissionName string
	Granted        bool
}

// UserPermissionsData aggregates the raw inputs and the resolved output
// for one user. It is a projection for administrative UIs, not a separate
// computation.
type UserPermissionsData struct {
	Roles       []staff.AssignmentWithRole
	Overrides   []overrides.OverrideWithPermission
	Permissions []string
}
