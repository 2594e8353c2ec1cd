package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for the audit log.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InsertEntry appends one audit record.
func (r *Repository) InsertEntry(ctx context.Context, entry Entry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("audit: marshal details: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO venue_permission_audit_log
			(venue_id, action, actor_id, target_user_id, role_id, permission_id, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.VenueID, entry.Action, entry.ActorID, entry.TargetUserID, entry.RoleID, entry.PermissionID, details)
	if err != nil {
		return fmt.Errorf("audit: insert entry: %w", err)
	}
	return nil
}

// ListEntries returns the most recent entries for a venue, newest first.
func (r *Repository) ListEntries(ctx context.Context, venueID uuid.UUID, limit int) ([]LogEntry, error) {
	return r.ListEntriesPage(ctx, venueID, limit, 0)
}

// CountEntries returns the total number of entries for a venue.
func (r *Repository) CountEntries(ctx context.Context, venueID uuid.UUID) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM venue_permission_audit_log WHERE venue_id = $1`,
		venueID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("audit: count entries: %w", err)
	}
	return total, nil
}

// ListEntriesPage returns one page of entries, newest first.
func (r *Repository) ListEntriesPage(ctx context.Context, venueID uuid.UUID, limit, offset int) ([]LogEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, venue_id, action, actor_id, target_user_id, role_id, permission_id, details, created_at
		FROM venue_permission_audit_log
		WHERE venue_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		venueID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("audit: list entries: %w", err)
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var (
			entry   LogEntry
			details []byte
		)
		if err := rows.Scan(&entry.ID, &entry.VenueID, &entry.Action, &entry.ActorID,
			&entry.TargetUserID, &entry.RoleID, &entry.PermissionID, &details, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("audit: scan entry: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &entry.Details); err != nil {
				return nil, fmt.Errorf("audit: unmarshal details: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: list entries: %w", err)
	}
	return entries, nil
}
