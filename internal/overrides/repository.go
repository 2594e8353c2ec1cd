package overrides

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const overrideColumns = `o.id, o.venue_id, o.user_id, o.permission_id, o.is_granted, o.reason, o.granted_by, o.expires_at, o.created_at, o.updated_at`

// Repository provides PostgreSQL backed persistence for overrides.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertOverride inserts or replaces the override for the input's
// (venue, user, permission) triple. Last writer wins.
func (r *Repository) UpsertOverride(ctx context.Context, input GrantOverrideInput, grantedBy uuid.UUID) (Override, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO venue_user_permission_overrides
			(venue_id, user_id, permission_id, is_granted, reason, granted_by, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (venue_id, user_id, permission_id) DO UPDATE
		SET is_granted = EXCLUDED.is_granted,
		    reason = EXCLUDED.reason,
		    granted_by = EXCLUDED.granted_by,
		    expires_at = EXCLUDED.expires_at,
		    updated_at = NOW()
		RETURNING id, venue_id, user_id, permission_id, is_granted, reason, granted_by, expires_at, created_at, updated_at`,
		input.VenueID, input.UserID, input.PermissionID, input.IsGranted, input.Reason, grantedBy, input.ExpiresAt)
	var o Override
	if err := row.Scan(&o.ID, &o.VenueID, &o.UserID, &o.PermissionID, &o.IsGranted,
		&o.Reason, &o.GrantedBy, &o.ExpiresAt, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return Override{}, fmt.Errorf("overrides: upsert: %w", err)
	}
	return o, nil
}

// DeleteOverride hard-deletes the override row and reports whether a row
// existed.
func (r *Repository) DeleteOverride(ctx context.Context, venueID, userID uuid.UUID, permissionID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM venue_user_permission_overrides
		WHERE venue_id = $1 AND user_id = $2 AND permission_id = $3`,
		venueID, userID, permissionID)
	if err != nil {
		return false, fmt.Errorf("overrides: delete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListActiveOverrides returns the user's overrides that are non-expiring or
// not yet expired, each joined with its permission.
func (r *Repository) ListActiveOverrides(ctx context.Context, venueID, userID uuid.UUID) ([]OverrideWithPermission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+overrideColumns+`,
		       p.id, p.name, p.category, p.description, p.is_system, p.created_at
		FROM venue_user_permission_overrides o
		JOIN venue_permissions p ON p.id = o.permission_id
		WHERE o.venue_id = $1 AND o.user_id = $2
		  AND (o.expires_at IS NULL OR o.expires_at > NOW())
		ORDER BY p.category, p.name`,
		venueID, userID)
	if err != nil {
		return nil, fmt.Errorf("overrides: list active: %w", err)
	}
	defer rows.Close()

	var out []OverrideWithPermission
	for rows.Next() {
		var item OverrideWithPermission
		if err := rows.Scan(
			&item.ID, &item.VenueID, &item.UserID, &item.PermissionID, &item.IsGranted,
			&item.Reason, &item.GrantedBy, &item.ExpiresAt, &item.CreatedAt, &item.UpdatedAt,
			&item.Permission.ID, &item.Permission.Name, &item.Permission.Category,
			&item.Permission.Description, &item.Permission.IsSystem, &item.Permission.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("overrides: scan: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("overrides: list active: %w", err)
	}
	return out, nil
}

// DeleteExpired removes override rows whose expiry has passed. Expired rows
// are already invisible to resolution; this only reclaims storage.
func (r *Repository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM venue_user_permission_overrides
		WHERE expires_at IS NOT NULL AND expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("overrides: delete expired: %w", err)
	}
	return tag.RowsAffected(), nil
}
