package permissions

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/venuedesk/venuedesk/internal/platform/httpx"
)

const selectColumns = `id, name, category, description, is_system, created_at`

// Repository provides PostgreSQL backed persistence for the catalog.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListSystemPermissions returns all system permissions ordered by category
// then name.
func (r *Repository) ListSystemPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+selectColumns+`
		FROM venue_permissions
		WHERE is_system
		ORDER BY category, name`)
	if err != nil {
		return nil, fmt.Errorf("permissions: list system: %w", err)
	}
	return scanPermissions(rows)
}

// ListByCategory returns permissions in one category ordered by name.
func (r *Repository) ListByCategory(ctx context.Context, category string) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+selectColumns+`
		FROM venue_permissions
		WHERE category = $1
		ORDER BY name`,
		category)
	if err != nil {
		return nil, fmt.Errorf("permissions: list by category: %w", err)
	}
	return scanPermissions(rows)
}

// GetByName fetches one permission by its stable name.
func (r *Repository) GetByName(ctx context.Context, name string) (Permission, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+selectColumns+`
		FROM venue_permissions
		WHERE name = $1`,
		name)
	perm, err := scanPermission(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Permission{}, httpx.ErrNotFound
		}
		return Permission{}, fmt.Errorf("permissions: get by name: %w", err)
	}
	return perm, nil
}

// CreatePermission inserts a new catalog row. Names are unique; inserting
// an existing name reports httpx.ErrDuplicate.
func (r *Repository) CreatePermission(ctx context.Context, name, category, description string, isSystem bool) (Permission, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO venue_permissions (name, category, description, is_system)
		VALUES ($1, $2, $3, $4)
		RETURNING `+selectColumns,
		name, category, description, isSystem)
	perm, err := scanPermission(row)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			return Permission{}, httpx.ErrDuplicate
		}
		return Permission{}, fmt.Errorf("permissions: create: %w", err)
	}
	return perm, nil
}

// EnsurePermission upserts a catalog row keyed on name. Used by the seeder;
// re-running it refreshes category and description in place.
func (r *Repository) EnsurePermission(ctx context.Context, name, category, description string, isSystem bool) (Permission, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO venue_permissions (name, category, description, is_system)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE
		SET category = EXCLUDED.category,
		    description = EXCLUDED.description,
		    is_system = EXCLUDED.is_system
		RETURNING `+selectColumns,
		name, category, description, isSystem)
	perm, err := scanPermission(row)
	if err != nil {
		return Permission{}, fmt.Errorf("permissions: ensure: %w", err)
	}
	return perm, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPermission(row rowScanner) (Permission, error) {
	var perm Permission
	err := row.Scan(&perm.ID, &perm.Name, &perm.Category, &perm.Description, &perm.IsSystem, &perm.CreatedAt)
	return perm, err
}

func scanPermissions(rows pgx.Rows) ([]Permission, error) {
	defer rows.Close()
	var perms []Permission
	for rows.Next() {
		perm, err := scanPermission(rows)
		if err != nil {
			return nil, fmt.Errorf("permissions: scan: %w", err)
		}
		perms = append(perms, perm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("permissions: rows: %w", err)
	}
	return perms, nil
}
