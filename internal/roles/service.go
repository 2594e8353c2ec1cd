package roles

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/venuedesk/venuedesk/internal/audit"
	"github.com/venuedesk/venuedesk/internal/permissions"
)

// RepositoryPort defines data access methods for roles and bindings.
type RepositoryPort interface {
	ListRoles(ctx context.Context, venueID uuid.UUID) ([]Role, error)
	GetRole(ctx context.Context, roleID int64) (Role, error)
	CreateRole(ctx context.Context, input CreateRoleInput) (Role, error)
	UpdateRole(ctx context.Context, roleID int64, patch RolePatch) (Role, error)
	DeactivateRole(ctx context.Context, roleID int64) error
	GetRolePermissions(ctx context.Context, roleID int64) ([]permissions.Permission, error)
	UpsertRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64, grantedBy uuid.UUID) error
	DeleteRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error
	CreateDefaultRoles(ctx context.Context, venueID uuid.UUID, createdBy uuid.UUID, defs []DefaultRole) ([]Role, error)
}

// AuditRecorder appends audit entries on a best-effort basis.
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

// Service orchestrates role management for a venue.
type Service struct {
	repo     RepositoryPort
	recorder AuditRecorder
	logger   *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, recorder AuditRecorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, recorder: recorder, logger: logger}
}

// ListRoles returns active roles for the venue in display order
// (level descending, name ascending).
func (s *Service) ListRoles(ctx context.Context, venueID uuid.UUID) ([]Role, error) {
	return s.repo.ListRoles(ctx, venueID)
}

// GetRole fetches a single role.
func (s *Service) GetRole(ctx context.Context, roleID int64) (Role, error) {
	return s.repo.GetRole(ctx, roleID)
}

// GetRoleWithPermissions returns a role together with its bound
// permissions. Zero bindings yields an empty list, not an error.
func (s *Service) GetRoleWithPermissions(ctx context.Context, roleID int64) (RoleWithPermissions, error) {
	role, err := s.repo.GetRole(ctx, roleID)
	if err != nil {
		return RoleWithPermissions{}, err
	}
	perms, err := s.repo.GetRolePermissions(ctx, roleID)
	if err != nil {
		return RoleWithPermissions{}, err
	}
	if perms == nil {
		perms = []permissions.Permission{}
	}
	return RoleWithPermissions{Role: role, Permissions: perms}, nil
}

// CreateRole inserts a new venue-scoped role.
func (s *Service) CreateRole(ctx context.Context, input CreateRoleInput) (Role, error) {
	if err := s.validateCreate(&input); err != nil {
		return Role{}, err
	}
	return s.repo.CreateRole(ctx, input)
}

// UpdateRole applies a partial update.
func (s *Service) UpdateRole(ctx context.Context, roleID int64, patch RolePatch) (Role, error) {
	if err := s.validatePatch(&patch); err != nil {
		return Role{}, err
	}
	return s.repo.UpdateRole(ctx, roleID, patch)
}

// DeleteRole soft-deletes a role. Bindings and assignments survive; they
// become inert because resolution only considers active roles.
func (s *Service) DeleteRole(ctx context.Context, roleID int64) error {
	return s.repo.DeactivateRole(ctx, roleID)
}

// AssignPermissionsToRole upserts one binding per permission id. Re-binding
// an already-bound permission is idempotent; attribution is last-writer-wins.
func (s *Service) AssignPermissionsToRole(ctx context.Context, roleID int64, permissionIDs []int64, grantedBy uuid.UUID) error {
	if len(permissionIDs) == 0 {
		return nil
	}
	role, err := s.repo.GetRole(ctx, roleID)
	if err != nil {
		return err
	}
	if err := s.repo.UpsertRolePermissions(ctx, roleID, permissionIDs, grantedBy); err != nil {
		return err
	}
	s.recorder.Record(ctx, audit.Entry{
		VenueID: role.VenueID,
		Action:  audit.ActionPermissionsAssigned,
		ActorID: grantedBy,
		RoleID:  &roleID,
		Details: map[string]any{"permission_ids": permissionIDs},
	})
	return nil
}

// RemovePermissionsFromRole deletes matching bindings. Removing a binding
// that does not exist is a no-op.
func (s *Service) RemovePermissionsFromRole(ctx context.Context, roleID int64, permissionIDs []int64, removedBy uuid.UUID) error {
	if len(permissionIDs) == 0 {
		return nil
	}
	role, err := s.repo.GetRole(ctx, roleID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteRolePermissions(ctx, roleID, permissionIDs); err != nil {
		return err
	}
	s.recorder.Record(ctx, audit.Entry{
		VenueID: role.VenueID,
		Action:  audit.ActionPermissionsRemoved,
		ActorID: removedBy,
		RoleID:  &roleID,
		Details: map[string]any{"permission_ids": permissionIDs},
	})
	return nil
}

// CreateDefaultRoles seeds the stock role hierarchy for a newly onboarded
// venue.
func (s *Service) CreateDefaultRoles(ctx context.Context, venueID uuid.UUID, createdBy uuid.UUID) ([]Role, error) {
	return s.repo.CreateDefaultRoles(ctx, venueID, createdBy, DefaultRoles())
}
