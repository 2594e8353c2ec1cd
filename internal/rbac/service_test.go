package rbac

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/venuedesk/venuedesk/internal/overrides"
	"github.com/venuedesk/venuedesk/internal/staff"
)

// memoryResolverRepo models the store state the resolver queries: roles
// with an active flag, assignments with an active flag, bindings, and
// overrides with optional expiry.
type memoryResolverRepo struct {
	roleActive  map[int64]bool
	rolePerms   map[int64][]string
	assignments []resolverAssignment
	overrides   []resolverOverride
	now         func() time.Time
	failing     bool
}

type resolverAssignment struct {
	venueID uuid.UUID
	userID  uuid.UUID
	roleID  int64
	active  bool
}

type resolverOverride struct {
	venueID   uuid.UUID
	userID    uuid.UUID
	name      string
	granted   bool
	expiresAt *time.Time
}

func newMemoryResolverRepo() *memoryResolverRepo {
	return &memoryResolverRepo{
		roleActive: make(map[int64]bool),
		rolePerms:  make(map[int64][]string),
		now:        time.Now,
	}
}

func (r *memoryResolverRepo) addRole(id int64, perms ...string) {
	r.roleActive[id] = true
	r.rolePerms[id] = perms
}

func (r *memoryResolverRepo) assign(venueID, userID uuid.UUID, roleID int64) {
	r.assignments = append(r.assignments, resolverAssignment{venueID, userID, roleID, true})
}

func (r *memoryResolverRepo) override(venueID, userID uuid.UUID, name string, granted bool, expiresAt *time.Time) {
	r.overrides = append(r.overrides, resolverOverride{venueID, userID, name, granted, expiresAt})
}

func (r *memoryResolverRepo) removeOverride(venueID, userID uuid.UUID, name string) {
	kept := r.overrides[:0]
	for _, o := range r.overrides {
		if o.venueID == venueID && o.userID == userID && o.name == name {
			continue
		}
		kept = append(kept, o)
	}
	r.overrides = kept
}

func (r *memoryResolverRepo) RolePermissionNames(ctx context.Context, venueID, userID uuid.UUID) ([]string, error) {
	if r.failing {
		return nil, errors.New("store unavailable")
	}
	seen := make(map[string]struct{})
	var names []string
	for _, a := range r.assignments {
		if a.venueID != venueID || a.userID != userID || !a.active || !r.roleActive[a.roleID] {
			continue
		}
		for _, name := range r.rolePerms[a.roleID] {
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				names = append(names, name)
			}
		}
	}
	return names, nil
}

func (r *memoryResolverRepo) ActiveOverrides(ctx context.Context, venueID, userID uuid.UUID) ([]OverrideDecision, error) {
	if r.failing {
		return nil, errors.New("store unavailable")
	}
	var out []OverrideDecision
	for _, o := range r.overrides {
		if o.venueID != venueID || o.userID != userID {
			continue
		}
		if o.expiresAt != nil && !o.expiresAt.After(r.now()) {
			continue
		}
		out = append(out, OverrideDecision{PermissionName: o.name, Granted: o.granted})
	}
	return out, nil
}

type emptyAssignments struct{}

func (emptyAssignments) GetUserRoles(ctx context.Context, venueID, userID uuid.UUID) ([]staff.AssignmentWithRole, error) {
	return nil, nil
}

type emptyOverrides struct{}

func (emptyOverrides) GetUserPermissionOverrides(ctx context.Context, venueID, userID uuid.UUID) ([]overrides.OverrideWithPermission, error) {
	return nil, nil
}

type countingDecisions struct {
	byDecision map[string]int
}

func (c *countingDecisions) PermissionDecision(decision string) {
	if c.byDecision == nil {
		c.byDecision = make(map[string]int)
	}
	c.byDecision[decision]++
}

func newResolver(repo *memoryResolverRepo) (*Service, *countingDecisions) {
	metrics := &countingDecisions{}
	return NewService(repo, emptyAssignments{}, emptyOverrides{}, slog.Default(), metrics), metrics
}

func TestRoleDerivedGrant(t *testing.T) {
	repo := newMemoryResolverRepo()
	repo.addRole(1, "manage_staff")
	venueID, userID := uuid.New(), uuid.New()
	repo.assign(venueID, userID, 1)
	svc, metrics := newResolver(repo)

	require.True(t, svc.UserHasPermission(context.Background(), venueID, userID, "manage_staff"))
	require.False(t, svc.UserHasPermission(context.Background(), venueID, userID, "view_finances"))
	require.Equal(t, 1, metrics.byDecision["allow"])
	require.Equal(t, 1, metrics.byDecision["deny"])
}

func TestDenyOverrideBeatsRoleGrant(t *testing.T) {
	repo := newMemoryResolverRepo()
	repo.addRole(1, "manage_staff")
	venueID, userID := uuid.New(), uuid.New()
	repo.assign(venueID, userID, 1)
	repo.override(venueID, userID, "manage_staff", false, nil)
	svc, _ := newResolver(repo)

	require.False(t, svc.UserHasPermission(context.Background(), venueID, userID, "manage_staff"))
}

func TestGrantOverrideBeatsRoleSilence(t *testing.T) {
	repo := newMemoryResolverRepo()
	venueID, userID := uuid.New(), uuid.New()
	repo.override(venueID, userID, "view_finances", true, nil)
	svc, _ := newResolver(repo)

	require.True(t, svc.UserHasPermission(context.Background(), venueID, userID, "view_finances"))
}

func TestExpiredOverrideIsAbsent(t *testing.T) {
	repo := newMemoryResolverRepo()
	repo.addRole(1, "manage_staff")
	venueID, userID := uuid.New(), uuid.New()
	repo.assign(venueID, userID, 1)
	past := time.Now().Add(-time.Hour)
	repo.override(venueID, userID, "manage_staff", false, &past)
	svc, _ := newResolver(repo)

	// The deny has expired, so the role-derived grant resurfaces.
	require.True(t, svc.UserHasPermission(context.Background(), venueID, userID, "manage_staff"))
}

func TestUnionAcrossRoles(t *testing.T) {
	repo := newMemoryResolverRepo()
	repo.addRole(1, "manage_events")
	repo.addRole(2, "view_finances")
	venueID, userID := uuid.New(), uuid.New()
	repo.assign(venueID, userID, 1)
	repo.assign(venueID, userID, 2)
	svc, _ := newResolver(repo)

	perms, err := svc.GetUserPermissions(context.Background(), venueID, userID)
	require.NoError(t, err)
	require.Equal(t, []string{"manage_events", "view_finances"}, perms)
}

func TestSoftDeletedRoleStopsContributing(t *testing.T) {
	repo := newMemoryResolverRepo()
	repo.addRole(1, "manage_staff")
	venueID, userID := uuid.New(), uuid.New()
	repo.assign(venueID, userID, 1)
	svc, _ := newResolver(repo)

	require.True(t, svc.UserHasPermission(context.Background(), venueID, userID, "manage_staff"))

	// Deactivating the role leaves the assignment row in place but removes
	// its contribution.
	repo.roleActive[1] = false
	require.False(t, svc.UserHasPermission(context.Background(), venueID, userID, "manage_staff"))
	require.Len(t, repo.assignments, 1)
}

func TestResolvedSetAppliesOverridePrecedence(t *testing.T) {
	repo := newMemoryResolverRepo()
	repo.addRole(1, "manage_events", "view_finances")
	venueID, userID := uuid.New(), uuid.New()
	repo.assign(venueID, userID, 1)
	repo.override(venueID, userID, "view_finances", false, nil)
	repo.override(venueID, userID, "manage_marketing", true, nil)
	svc, _ := newResolver(repo)

	perms, err := svc.GetUserPermissions(context.Background(), venueID, userID)
	require.NoError(t, err)
	require.Equal(t, []string{"manage_events", "manage_marketing"}, perms)
}

func TestUnknownUserResolvesToNothing(t *testing.T) {
	repo := newMemoryResolverRepo()
	svc, _ := newResolver(repo)

	require.False(t, svc.UserHasPermission(context.Background(), uuid.New(), uuid.New(), "manage_staff"))

	perms, err := svc.GetUserPermissions(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	require.Empty(t, perms)
}

func TestUserHasPermissionFailsClosed(t *testing.T) {
	repo := newMemoryResolverRepo()
	repo.addRole(1, "manage_staff")
	venueID, userID := uuid.New(), uuid.New()
	repo.assign(venueID, userID, 1)
	repo.failing = true
	svc, metrics := newResolver(repo)

	require.False(t, svc.UserHasPermission(context.Background(), venueID, userID, "manage_staff"))
	require.Equal(t, 1, metrics.byDecision["error"])
}

func TestGetUserPermissionsPropagatesErrors(t *testing.T) {
	repo := newMemoryResolverRepo()
	repo.failing = true
	svc, _ := newResolver(repo)

	_, err := svc.GetUserPermissions(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
}

// Mirrors the suspension scenario: a deny override silences a role-derived
// grant until it is removed.
func TestSuspensionRoundTrip(t *testing.T) {
	repo := newMemoryResolverRepo()
	repo.addRole(1, "manage_staff")
	venueID, userID := uuid.New(), uuid.New()
	repo.assign(venueID, userID, 1)
	svc, _ := newResolver(repo)
	ctx := context.Background()

	require.True(t, svc.UserHasPermission(ctx, venueID, userID, "manage_staff"))

	repo.override(venueID, userID, "manage_staff", false, nil)
	require.False(t, svc.UserHasPermission(ctx, venueID, userID, "manage_staff"))

	repo.removeOverride(venueID, userID, "manage_staff")
	require.True(t, svc.UserHasPermission(ctx, venueID, userID, "manage_staff"))
}

func TestGetUserPermissionsData(t *testing.T) {
	repo := newMemoryResolverRepo()
	repo.addRole(1, "manage_events")
	venueID, userID := uuid.New(), uuid.New()
	repo.assign(venueID, userID, 1)
	repo.override(venueID, userID, "view_finances", true, nil)
	svc := NewService(repo, emptyAssignments{}, emptyOverrides{}, slog.Default(), nil)

	data, err := svc.GetUserPermissionsData(context.Background(), venueID, userID)
	require.NoError(t, err)
	require.Equal(t, []string{"manage_events", "view_finances"}, data.Permissions)
}
