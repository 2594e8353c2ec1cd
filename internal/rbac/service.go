package rbac

import (
	"context"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/venuedesk/venuedesk/internal/overrides"
	"github.com/venuedesk/venuedesk/internal/staff"
)

// ResolverRepository provides the reads behind permission resolution.
type ResolverRepository interface {
	RolePermissionNames(ctx context.Context, venueID, userID uuid.UUID) ([]string, error)
	ActiveOverrides(ctx context.Context, venueID, userID uuid.UUID) ([]OverrideDecision, error)
}

// AssignmentSource supplies the raw role assignments for the aggregate read.
type AssignmentSource interface {
	GetUserRoles(ctx context.Context, venueID, userID uuid.UUID) ([]staff.AssignmentWithRole, error)
}

// OverrideSource supplies the raw overrides for the aggregate read.
type OverrideSource interface {
	GetUserPermissionOverrides(ctx context.Context, venueID, userID uuid.UUID) ([]overrides.OverrideWithPermission, error)
}

// DecisionCounter counts resolver outcomes.
type DecisionCounter interface {
	PermissionDecision(decision string)
}

// Service resolves authorization decisions. It never mutates state.
type Service struct {
	repo        ResolverRepository
	assignments AssignmentSource
	overrides   OverrideSource
	logger      *slog.Logger
	metrics     DecisionCounter
}

// NewService builds a Service instance. metrics may be nil.
func NewService(repo ResolverRepository, assignments AssignmentSource, overrideSource OverrideSource, logger *slog.Logger, metrics DecisionCounter) *Service {
	return &Service{repo: repo, assignments: assignments, overrides: overrideSource, logger: logger, metrics: metrics}
}

// UserHasPermission reports whether the user holds the named permission in
// the venue. A live override decides outright; otherwise the role-derived
// set does. Any resolution failure yields false: a transient read error
// must never grant access, and gating callers cannot handle errors anyway.
func (s *Service) UserHasPermission(ctx context.Context, venueID, userID uuid.UUID, permissionName string) bool {
	granted, err := s.resolveOne(ctx, venueID, userID, permissionName)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("permission check failed closed",
				slog.String("permission", permissionName),
				slog.String("venue_id", venueID.String()),
				slog.String("user_id", userID.String()),
				slog.Any("error", err))
		}
		s.count("error")
		return false
	}
	if granted {
		s.count("allow")
	} else {
		s.count("deny")
	}
	return granted
}

func (s *Service) resolveOne(ctx context.Context, venueID, userID uuid.UUID, permissionName string) (bool, error) {
	decisions, err := s.repo.ActiveOverrides(ctx, venueID, userID)
	if err != nil {
		return false, err
	}
	for _, d := range decisions {
		if d.PermissionName == permissionName {
			return d.Granted, nil
		}
	}
	names, err := s.repo.RolePermissionNames(ctx, venueID, userID)
	if err != nil {
		return false, err
	}
	for _, name := range names {
		if name == permissionName {
			return true, nil
		}
	}
	return false, nil
}

// GetUserPermissions returns the user's full resolved permission set:
// role-derived names plus granted overrides, minus denied overrides,
// sorted. Unlike UserHasPermission this is a display read and propagates
// errors.
func (s *Service) GetUserPermissions(ctx context.Context, venueID, userID uuid.UUID) ([]string, error) {
	names, err := s.repo.RolePermissionNames(ctx, venueID, userID)
	if err != nil {
		return nil, err
	}
	decisions, err := s.repo.ActiveOverrides(ctx, venueID, userID)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	for _, d := range decisions {
		if d.Granted {
			set[d.PermissionName] = struct{}{}
		} else {
			delete(set, d.PermissionName)
		}
	}

	resolved := make([]string, 0, len(set))
	for name := range set {
		resolved = append(resolved, name)
	}
	sort.Strings(resolved)
	return resolved, nil
}

// GetUserPermissionsData combines raw assignments, raw overrides and the
// resolved permission list in one aggregate read.
func (s *Service) GetUserPermissionsData(ctx context.Context, venueID, userID uuid.UUID) (UserPermissionsData, error) {
	var data UserPermissionsData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		roles, err := s.assignments.GetUserRoles(gctx, venueID, userID)
		if err != nil {
			return err
		}
		data.Roles = roles
		return nil
	})
	g.Go(func() error {
		ovr, err := s.overrides.GetUserPermissionOverrides(gctx, venueID, userID)
		if err != nil {
			return err
		}
		data.Overrides = ovr
		return nil
	})
	g.Go(func() error {
		perms, err := s.GetUserPermissions(gctx, venueID, userID)
		if err != nil {
			return err
		}
		data.Permissions = perms
		return nil
	})
	if err := g.Wait(); err != nil {
		return UserPermissionsData{}, err
	}
	return data, nil
}

func (s *Service) count(decision string) {
	if s.metrics != nil {
		s.metrics.PermissionDecision(decision)
	}
}
