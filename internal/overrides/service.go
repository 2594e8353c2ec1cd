package overrides

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/venuedesk/venuedesk/internal/audit"
	"github.com/venuedesk/venuedesk/internal/platform/httpx"
)

// RepositoryPort defines data access methods for overrides.
type RepositoryPort interface {
	UpsertOverride(ctx context.Context, input GrantOverrideInput, grantedBy uuid.UUID) (Override, error)
	DeleteOverride(ctx context.Context, venueID, userID uuid.UUID, permissionID int64) (bool, error)
	ListActiveOverrides(ctx context.Context, venueID, userID uuid.UUID) ([]OverrideWithPermission, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

// AuditRecorder appends audit entries on a best-effort basis.
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

// Service orchestrates per-user permission overrides.
type Service struct {
	repo     RepositoryPort
	recorder AuditRecorder
	logger   *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, recorder AuditRecorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, recorder: recorder, logger: logger}
}

// GrantPermissionOverride upserts the override for the input's
// (venue, user, permission) triple and logs override_added. The same call
// serves both grants and denies; re-granting replaces the previous row.
func (s *Service) GrantPermissionOverride(ctx context.Context, input GrantOverrideInput, grantedBy uuid.UUID) (Override, error) {
	if input.VenueID == uuid.Nil || input.UserID == uuid.Nil || input.PermissionID == 0 {
		return Override{}, fmt.Errorf("%w: venue, user and permission are required", httpx.ErrValidation)
	}
	override, err := s.repo.UpsertOverride(ctx, input, grantedBy)
	if err != nil {
		return Override{}, err
	}
	targetUser := input.UserID
	details := map[string]any{
		"is_granted": input.IsGranted,
		"reason":     input.Reason,
	}
	if input.ExpiresAt != nil {
		details["expires_at"] = input.ExpiresAt.UTC()
	}
	s.recorder.Record(ctx, audit.Entry{
		VenueID:      input.VenueID,
		Action:       audit.ActionOverrideAdded,
		ActorID:      grantedBy,
		TargetUserID: &targetUser,
		PermissionID: &input.PermissionID,
		Details:      details,
	})
	return override, nil
}

// RemovePermissionOverride hard-deletes the override row and logs
// override_removed. Removing an absent override is a no-op.
func (s *Service) RemovePermissionOverride(ctx context.Context, venueID, userID uuid.UUID, permissionID int64, removedBy uuid.UUID) error {
	existed, err := s.repo.DeleteOverride(ctx, venueID, userID, permissionID)
	if err != nil {
		return err
	}
	targetUser := userID
	s.recorder.Record(ctx, audit.Entry{
		VenueID:      venueID,
		Action:       audit.ActionOverrideRemoved,
		ActorID:      removedBy,
		TargetUserID: &targetUser,
		PermissionID: &permissionID,
		Details:      map[string]any{"existed": existed},
	})
	return nil
}

// GetUserPermissionOverrides returns the user's live overrides joined with
// their permissions. Expired rows are filtered out by the store query.
func (s *Service) GetUserPermissionOverrides(ctx context.Context, venueID, userID uuid.UUID) ([]OverrideWithPermission, error) {
	return s.repo.ListActiveOverrides(ctx, venueID, userID)
}

// PurgeExpired removes rows whose expiry has passed. Resolution already
// ignores them; the purge only reclaims storage.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx)
}
