package audit

import (
	"context"

	"github.com/google/uuid"

	"github.com/venuedesk/venuedesk/internal/shared"
)

const (
	defaultLimit = 20
	maxLimit     = 200
)

// ReaderPort provides read access to persisted audit entries.
type ReaderPort interface {
	ListEntries(ctx context.Context, venueID uuid.UUID, limit int) ([]LogEntry, error)
	ListEntriesPage(ctx context.Context, venueID uuid.UUID, limit, offset int) ([]LogEntry, error)
	CountEntries(ctx context.Context, venueID uuid.UUID) (int, error)
}

// Service exposes audit log reads for administrative UIs.
type Service struct {
	reader ReaderPort
}

// NewService builds a Service instance.
func NewService(reader ReaderPort) *Service {
	return &Service{reader: reader}
}

// GetAuditLog returns the most recent entries for a venue, newest first.
// The limit is clamped to [1, 200]; zero or negative means the default.
func (s *Service) GetAuditLog(ctx context.Context, venueID uuid.UUID, limit int) ([]LogEntry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return s.reader.ListEntries(ctx, venueID, limit)
}

// GetAuditLogPage returns one page of entries plus pagination metadata.
// Page and perPage fall back to sane defaults; perPage is clamped like limit.
func (s *Service) GetAuditLogPage(ctx context.Context, venueID uuid.UUID, page, perPage int) ([]LogEntry, shared.Pagination, error) {
	if perPage <= 0 {
		perPage = defaultLimit
	}
	if perPage > maxLimit {
		perPage = maxLimit
	}
	if page <= 0 {
		page = 1
	}
	total, err := s.reader.CountEntries(ctx, venueID)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	entries, err := s.reader.ListEntriesPage(ctx, venueID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return entries, shared.NewPagination(page, perPage, total), nil
}
