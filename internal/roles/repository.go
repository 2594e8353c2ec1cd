package roles

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/venuedesk/venuedesk/internal/permissions"
	"github.com/venuedesk/venuedesk/internal/platform/db"
	"github.com/venuedesk/venuedesk/internal/platform/httpx"
)

const roleColumns = `id, venue_id, name, description, level, is_active, created_by, created_at, updated_at`

// Repository provides PostgreSQL backed persistence for roles and bindings.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListRoles returns active roles for a venue ordered by level descending
// then name ascending.
func (r *Repository) ListRoles(ctx context.Context, venueID uuid.UUID) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+roleColumns+`
		FROM venue_roles
		WHERE venue_id = $1 AND is_active
		ORDER BY level DESC, name ASC`,
		venueID)
	if err != nil {
		return nil, fmt.Errorf("roles: list: %w", err)
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("roles: scan: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("roles: list: %w", err)
	}
	return roles, nil
}

// GetRole fetches a role by id regardless of its active flag.
func (r *Repository) GetRole(ctx context.Context, roleID int64) (Role, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+roleColumns+`
		FROM venue_roles
		WHERE id = $1`,
		roleID)
	role, err := scanRole(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, httpx.ErrNotFound
		}
		return Role{}, fmt.Errorf("roles: get: %w", err)
	}
	return role, nil
}

// CreateRole inserts a new role scoped to the input's venue.
func (r *Repository) CreateRole(ctx context.Context, input CreateRoleInput) (Role, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO venue_roles (venue_id, name, description, level, is_active, created_by)
		VALUES ($1, $2, $3, $4, TRUE, $5)
		RETURNING `+roleColumns,
		input.VenueID, input.Name, input.Description, input.Level, input.CreatedBy)
	role, err := scanRole(row)
	if err != nil {
		return Role{}, fmt.Errorf("roles: create: %w", err)
	}
	return role, nil
}

// UpdateRole applies a partial update and returns the updated row.
func (r *Repository) UpdateRole(ctx context.Context, roleID int64, patch RolePatch) (Role, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE venue_roles
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    level = COALESCE($4, level),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+roleColumns,
		roleID, patch.Name, patch.Description, patch.Level)
	role, err := scanRole(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, httpx.ErrNotFound
		}
		return Role{}, fmt.Errorf("roles: update: %w", err)
	}
	return role, nil
}

// DeactivateRole flips is_active to false. Bindings and assignments are
// left in place; the resolver ignores inactive roles.
func (r *Repository) DeactivateRole(ctx context.Context, roleID int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE venue_roles
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND is_active`,
		roleID)
	if err != nil {
		return fmt.Errorf("roles: deactivate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// GetRolePermissions returns the permissions bound to a role, ordered by
// category then name.
func (r *Repository) GetRolePermissions(ctx context.Context, roleID int64) ([]permissions.Permission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.name, p.category, p.description, p.is_system, p.created_at
		FROM venue_role_permissions rp
		JOIN venue_permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = $1
		ORDER BY p.category, p.name`,
		roleID)
	if err != nil {
		return nil, fmt.Errorf("roles: role permissions: %w", err)
	}
	defer rows.Close()

	var perms []permissions.Permission
	for rows.Next() {
		var perm permissions.Permission
		if err := rows.Scan(&perm.ID, &perm.Name, &perm.Category, &perm.Description, &perm.IsSystem, &perm.CreatedAt); err != nil {
			return nil, fmt.Errorf("roles: scan permission: %w", err)
		}
		perms = append(perms, perm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("roles: role permissions: %w", err)
	}
	return perms, nil
}

// UpsertRolePermissions binds permissions to a role. Bindings are keyed on
// (role_id, permission_id); re-binding overwrites the grant attribution.
func (r *Repository) UpsertRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64, grantedBy uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, permissionID := range permissionIDs {
			if _, err := tx.Exec(ctx, `
				INSERT INTO venue_role_permissions (role_id, permission_id, granted_by)
				VALUES ($1, $2, $3)
				ON CONFLICT (role_id, permission_id) DO UPDATE
				SET granted_by = EXCLUDED.granted_by, granted_at = NOW()`,
				roleID, permissionID, grantedBy); err != nil {
				return fmt.Errorf("roles: upsert binding: %w", err)
			}
		}
		return nil
	})
}

// DeleteRolePermissions removes bindings. Missing bindings are a no-op.
func (r *Repository) DeleteRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM venue_role_permissions
		WHERE role_id = $1 AND permission_id = ANY($2)`,
		roleID, permissionIDs)
	if err != nil {
		return fmt.Errorf("roles: delete bindings: %w", err)
	}
	return nil
}

// CreateDefaultRoles inserts the stock role hierarchy for a venue and binds
// each role to its default permissions by catalog name, all in one
// transaction.
func (r *Repository) CreateDefaultRoles(ctx context.Context, venueID uuid.UUID, createdBy uuid.UUID, defs []DefaultRole) ([]Role, error) {
	var created []Role
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, def := range defs {
			row := tx.QueryRow(ctx, `
				INSERT INTO venue_roles (venue_id, name, description, level, is_active, created_by)
				VALUES ($1, $2, $3, $4, TRUE, $5)
				RETURNING `+roleColumns,
				venueID, def.Name, def.Description, def.Level, createdBy)
			role, err := scanRole(row)
			if err != nil {
				return fmt.Errorf("roles: create default %q: %w", def.Name, err)
			}
			if len(def.Permissions) > 0 {
				if _, err := tx.Exec(ctx, `
					INSERT INTO venue_role_permissions (role_id, permission_id, granted_by)
					SELECT $1, p.id, $3
					FROM venue_permissions p
					WHERE p.name = ANY($2)
					ON CONFLICT (role_id, permission_id) DO NOTHING`,
					role.ID, def.Permissions, createdBy); err != nil {
					return fmt.Errorf("roles: bind defaults for %q: %w", def.Name, err)
				}
			}
			created = append(created, role)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRole(row rowScanner) (Role, error) {
	var role Role
	err := row.Scan(&role.ID, &role.VenueID, &role.Name, &role.Description,
		&role.Level, &role.IsActive, &role.CreatedBy, &role.CreatedAt, &role.UpdatedAt)
	return role, err
}
