package rbac

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides the read-only queries behind permission resolution.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// RolePermissionNames returns the distinct permission names conferred on
// the user by active assignments of active roles.
func (r *Repository) RolePermissionNames(ctx context.Context, venueID, userID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT p.name
		FROM venue_user_roles ur
		JOIN venue_roles vr ON vr.id = ur.role_id AND vr.is_active
		JOIN venue_role_permissions rp ON rp.role_id = vr.id
		JOIN venue_permissions p ON p.id = rp.permission_id
		WHERE ur.venue_id = $1 AND ur.user_id = $2 AND ur.is_active
		ORDER BY p.name`,
		venueID, userID)
	if err != nil {
		return nil, fmt.Errorf("rbac: role permission names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("rbac: scan name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rbac: role permission names: %w", err)
	}
	return names, nil
}

// ActiveOverrides returns the user's non-expired overrides projected to
// permission names.
func (r *Repository) ActiveOverrides(ctx context.Context, venueID, userID uuid.UUID) ([]OverrideDecision, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.name, o.is_granted
		FROM venue_user_permission_overrides o
		JOIN venue_permissions p ON p.id = o.permission_id
		WHERE o.venue_id = $1 AND o.user_id = $2
		  AND (o.expires_at IS NULL OR o.expires_at > NOW())`,
		venueID, userID)
	if err != nil {
		return nil, fmt.Errorf("rbac: active overrides: %w", err)
	}
	defer rows.Close()

	var decisions []OverrideDecision
	for rows.Next() {
		var d OverrideDecision
		if err := rows.Scan(&d.PermissionName, &d.Granted); err != nil {
			return nil, fmt.Errorf("rbac: scan override: %w", err)
		}
		decisions = append(decisions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rbac: active overrides: %w", err)
	}
	return decisions, nil
}
