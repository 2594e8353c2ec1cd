package staff

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/venuedesk/venuedesk/internal/roles"
)

const assignmentColumns = `ur.id, ur.venue_id, ur.user_id, ur.role_id, ur.assigned_by, ur.notes, ur.is_active, ur.assigned_at, ur.revoked_at`
const roleJoinColumns = `r.id, r.venue_id, r.name, r.description, r.level, r.is_active, r.created_by, r.created_at, r.updated_at`

// Repository provides PostgreSQL backed persistence for assignments.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetUserRoles returns the user's active assignments in a venue, each
// joined with its role.
func (r *Repository) GetUserRoles(ctx context.Context, venueID, userID uuid.UUID) ([]AssignmentWithRole, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+assignmentColumns+`, `+roleJoinColumns+`
		FROM venue_user_roles ur
		JOIN venue_roles r ON r.id = ur.role_id
		WHERE ur.venue_id = $1 AND ur.user_id = $2 AND ur.is_active
		ORDER BY r.level DESC, r.name ASC`,
		venueID, userID)
	if err != nil {
		return nil, fmt.Errorf("staff: get user roles: %w", err)
	}
	defer rows.Close()

	var out []AssignmentWithRole
	for rows.Next() {
		var item AssignmentWithRole
		if err := rows.Scan(
			&item.ID, &item.VenueID, &item.UserID, &item.RoleID, &item.AssignedBy,
			&item.Notes, &item.IsActive, &item.AssignedAt, &item.RevokedAt,
			&item.Role.ID, &item.Role.VenueID, &item.Role.Name, &item.Role.Description,
			&item.Role.Level, &item.Role.IsActive, &item.Role.CreatedBy,
			&item.Role.CreatedAt, &item.Role.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("staff: scan assignment: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("staff: get user roles: %w", err)
	}
	return out, nil
}

// InsertAssignment inserts a new assignment row. The caller decides whether
// duplicates matter; this always inserts.
func (r *Repository) InsertAssignment(ctx context.Context, input AssignUserRoleInput, assignedBy uuid.UUID) (Assignment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO venue_user_roles (venue_id, user_id, role_id, assigned_by, notes, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING id, venue_id, user_id, role_id, assigned_by, notes, is_active, assigned_at, revoked_at`,
		input.VenueID, input.UserID, input.RoleID, assignedBy, input.Notes)
	var a Assignment
	if err := row.Scan(&a.ID, &a.VenueID, &a.UserID, &a.RoleID, &a.AssignedBy,
		&a.Notes, &a.IsActive, &a.AssignedAt, &a.RevokedAt); err != nil {
		return Assignment{}, fmt.Errorf("staff: insert assignment: %w", err)
	}
	return a, nil
}

// DeactivateAssignments soft-revokes every active assignment matching
// (venue, user, role) and reports how many rows changed.
func (r *Repository) DeactivateAssignments(ctx context.Context, venueID, userID uuid.UUID, roleID int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE venue_user_roles
		SET is_active = FALSE, revoked_at = NOW()
		WHERE venue_id = $1 AND user_id = $2 AND role_id = $3 AND is_active`,
		venueID, userID, roleID)
	if err != nil {
		return 0, fmt.Errorf("staff: deactivate assignments: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListMembers returns every distinct user holding an active assignment in
// the venue, with their active roles.
func (r *Repository) ListMembers(ctx context.Context, venueID uuid.UUID) ([]Member, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ur.user_id, `+roleJoinColumns+`
		FROM venue_user_roles ur
		JOIN venue_roles r ON r.id = ur.role_id
		WHERE ur.venue_id = $1 AND ur.is_active
		ORDER BY ur.user_id, r.level DESC, r.name ASC`,
		venueID)
	if err != nil {
		return nil, fmt.Errorf("staff: list members: %w", err)
	}
	defer rows.Close()

	var (
		members []Member
		current *Member
	)
	for rows.Next() {
		var (
			userID uuid.UUID
			role   roles.Role
		)
		if err := rows.Scan(&userID,
			&role.ID, &role.VenueID, &role.Name, &role.Description, &role.Level,
			&role.IsActive, &role.CreatedBy, &role.CreatedAt, &role.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("staff: scan member: %w", err)
		}
		if current == nil || current.UserID != userID {
			members = append(members, Member{UserID: userID})
			current = &members[len(members)-1]
		}
		current.Roles = append(current.Roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("staff: list members: %w", err)
	}
	return members, nil
}
