package staff

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/venuedesk/venuedesk/internal/audit"
	"github.com/venuedesk/venuedesk/internal/platform/httpx"
)

// RepositoryPort defines data access methods for assignments.
type RepositoryPort interface {
	GetUserRoles(ctx context.Context, venueID, userID uuid.UUID) ([]AssignmentWithRole, error)
	InsertAssignment(ctx context.Context, input AssignUserRoleInput, assignedBy uuid.UUID) (Assignment, error)
	DeactivateAssignments(ctx context.Context, venueID, userID uuid.UUID, roleID int64) (int64, error)
	ListMembers(ctx context.Context, venueID uuid.UUID) ([]Member, error)
}

// AuditRecorder appends audit entries on a best-effort basis.
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

// PermissionResolver resolves a user's effective permission names. It is
// used to eagerly decorate member listings for administrative UIs.
type PermissionResolver interface {
	GetUserPermissions(ctx context.Context, venueID, userID uuid.UUID) ([]string, error)
}

// Service orchestrates user-role assignments for a venue.
type Service struct {
	repo     RepositoryPort
	recorder AuditRecorder
	resolver PermissionResolver
	logger   *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, recorder AuditRecorder, resolver PermissionResolver, logger *slog.Logger) *Service {
	return &Service{repo: repo, recorder: recorder, resolver: resolver, logger: logger}
}

// GetUserRoles returns the user's active assignments joined with roles.
func (s *Service) GetUserRoles(ctx context.Context, venueID, userID uuid.UUID) ([]AssignmentWithRole, error) {
	return s.repo.GetUserRoles(ctx, venueID, userID)
}

// AssignUserRole inserts a new assignment row and logs role_assigned.
// Assigning a role the user already holds inserts a second row: each
// assignment is independently attributable and revocable.
func (s *Service) AssignUserRole(ctx context.Context, input AssignUserRoleInput, assignedBy uuid.UUID) (Assignment, error) {
	if input.VenueID == uuid.Nil || input.UserID == uuid.Nil || input.RoleID == 0 {
		return Assignment{}, fmt.Errorf("%w: venue, user and role are required", httpx.ErrValidation)
	}
	assignment, err := s.repo.InsertAssignment(ctx, input, assignedBy)
	if err != nil {
		return Assignment{}, err
	}
	targetUser := input.UserID
	s.recorder.Record(ctx, audit.Entry{
		VenueID:      input.VenueID,
		Action:       audit.ActionRoleAssigned,
		ActorID:      assignedBy,
		TargetUserID: &targetUser,
		RoleID:       &input.RoleID,
		Details:      map[string]any{"notes": input.Notes},
	})
	return assignment, nil
}

// RemoveUserRole soft-revokes matching assignments and logs role_removed.
func (s *Service) RemoveUserRole(ctx context.Context, venueID, userID uuid.UUID, roleID int64, removedBy uuid.UUID) error {
	revoked, err := s.repo.DeactivateAssignments(ctx, venueID, userID, roleID)
	if err != nil {
		return err
	}
	targetUser := userID
	s.recorder.Record(ctx, audit.Entry{
		VenueID:      venueID,
		Action:       audit.ActionRoleRemoved,
		ActorID:      removedBy,
		TargetUserID: &targetUser,
		RoleID:       &roleID,
		Details:      map[string]any{"assignments_revoked": revoked},
	})
	return nil
}

// GetUsersWithRoles returns every user with an active assignment in the
// venue, each carrying their role list and resolved permission names.
func (s *Service) GetUsersWithRoles(ctx context.Context, venueID uuid.UUID) ([]Member, error) {
	members, err := s.repo.ListMembers(ctx, venueID)
	if err != nil {
		return nil, err
	}
	for i := range members {
		perms, err := s.resolver.GetUserPermissions(ctx, venueID, members[i].UserID)
		if err != nil {
			return nil, fmt.Errorf("staff: resolve permissions for %s: %w", members[i].UserID, err)
		}
		members[i].Permissions = perms
	}
	return members, nil
}
