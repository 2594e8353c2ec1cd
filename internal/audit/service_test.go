package audit

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type memoryAuditRepo struct {
	entries []LogEntry
	failing bool
	nextID  int64
}

func (r *memoryAuditRepo) InsertEntry(ctx context.Context, entry Entry) error {
	if r.failing {
		return errors.New("store unavailable")
	}
	r.nextID++
	r.entries = append(r.entries, LogEntry{
		ID:           r.nextID,
		VenueID:      entry.VenueID,
		Action:       entry.Action,
		ActorID:      entry.ActorID,
		TargetUserID: entry.TargetUserID,
		RoleID:       entry.RoleID,
		PermissionID: entry.PermissionID,
		Details:      entry.Details,
		CreatedAt:    time.Now(),
	})
	return nil
}

func (r *memoryAuditRepo) ListEntries(ctx context.Context, venueID uuid.UUID, limit int) ([]LogEntry, error) {
	return r.ListEntriesPage(ctx, venueID, limit, 0)
}

func (r *memoryAuditRepo) ListEntriesPage(ctx context.Context, venueID uuid.UUID, limit, offset int) ([]LogEntry, error) {
	var matched []LogEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].VenueID == venueID {
			matched = append(matched, r.entries[i])
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *memoryAuditRepo) CountEntries(ctx context.Context, venueID uuid.UUID) (int, error) {
	total := 0
	for _, entry := range r.entries {
		if entry.VenueID == venueID {
			total++
		}
	}
	return total, nil
}

type countingMetrics struct {
	failures int
}

func (m *countingMetrics) AuditWriteFailure() { m.failures++ }

func TestRecorderAppendsEntry(t *testing.T) {
	repo := &memoryAuditRepo{}
	recorder := NewRecorder(repo, slog.Default(), nil)
	venueID := uuid.New()
	actor := uuid.New()

	recorder.Record(context.Background(), Entry{
		VenueID: venueID,
		Action:  ActionRoleAssigned,
		ActorID: actor,
		Details: map[string]any{"role": "Manager"},
	})

	require.Len(t, repo.entries, 1)
	require.Equal(t, ActionRoleAssigned, repo.entries[0].Action)
	require.Equal(t, actor, repo.entries[0].ActorID)
}

func TestRecorderSwallowsWriteFailure(t *testing.T) {
	repo := &memoryAuditRepo{failing: true}
	metrics := &countingMetrics{}
	recorder := NewRecorder(repo, slog.Default(), metrics)

	// Must not panic or surface the error in any way.
	recorder.Record(context.Background(), Entry{
		VenueID: uuid.New(),
		Action:  ActionOverrideAdded,
		ActorID: uuid.New(),
	})

	require.Empty(t, repo.entries)
	require.Equal(t, 1, metrics.failures)
}

func TestRecorderSurvivesCancelledContext(t *testing.T) {
	repo := &memoryAuditRepo{}
	recorder := NewRecorder(repo, slog.Default(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	recorder.Record(ctx, Entry{VenueID: uuid.New(), Action: ActionRoleRemoved, ActorID: uuid.New()})

	require.Len(t, repo.entries, 1)
}

func TestGetAuditLogClampsLimit(t *testing.T) {
	repo := &memoryAuditRepo{}
	venueID := uuid.New()
	for i := 0; i < 30; i++ {
		require.NoError(t, repo.InsertEntry(context.Background(), Entry{
			VenueID: venueID,
			Action:  ActionOverrideRemoved,
			ActorID: uuid.New(),
		}))
	}
	svc := NewService(repo)

	entries, err := svc.GetAuditLog(context.Background(), venueID, 0)
	require.NoError(t, err)
	require.Len(t, entries, defaultLimit)

	entries, err = svc.GetAuditLog(context.Background(), venueID, 5)
	require.NoError(t, err)
	require.Len(t, entries, 5)
}

func TestGetAuditLogNewestFirst(t *testing.T) {
	repo := &memoryAuditRepo{}
	venueID := uuid.New()
	for _, action := range []string{ActionRoleAssigned, ActionOverrideAdded, ActionRoleRemoved} {
		require.NoError(t, repo.InsertEntry(context.Background(), Entry{
			VenueID: venueID,
			Action:  action,
			ActorID: uuid.New(),
		}))
	}
	svc := NewService(repo)

	entries, err := svc.GetAuditLog(context.Background(), venueID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, ActionRoleRemoved, entries[0].Action)
	require.Equal(t, ActionRoleAssigned, entries[2].Action)
}

func TestGetAuditLogPage(t *testing.T) {
	repo := &memoryAuditRepo{}
	venueID := uuid.New()
	for i := 0; i < 25; i++ {
		require.NoError(t, repo.InsertEntry(context.Background(), Entry{
			VenueID: venueID,
			Action:  ActionPermissionsAssigned,
			ActorID: uuid.New(),
		}))
	}
	svc := NewService(repo)

	entries, pagination, err := svc.GetAuditLogPage(context.Background(), venueID, 2, 10)
	require.NoError(t, err)
	require.Len(t, entries, 10)
	require.Equal(t, 2, pagination.Page)
	require.Equal(t, 25, pagination.Total)
	require.Equal(t, 3, pagination.TotalPages)

	entries, pagination, err = svc.GetAuditLogPage(context.Background(), venueID, 3, 10)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	require.Equal(t, 3, pagination.TotalPages)
}
