package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/venuedesk/venuedesk/internal/roles"
)

// DefaultRoleSeeder is the slice of the roles service venue provisioning needs.
type DefaultRoleSeeder interface {
	CreateDefaultRoles(ctx context.Context, venueID uuid.UUID, createdBy uuid.UUID) ([]roles.Role, error)
}

// VenueDefaultsJob seeds the stock role hierarchy for a new venue.
type VenueDefaultsJob struct {
	Roles  DefaultRoleSeeder
	Logger *slog.Logger
}

// NewVenueDefaultsJob initialises the provisioning handler.
func NewVenueDefaultsJob(seeder DefaultRoleSeeder, logger *slog.Logger) *VenueDefaultsJob {
	return &VenueDefaultsJob{Roles: seeder, Logger: logger}
}

// Handle provisions default roles for the venue named in the payload.
// Seeding is idempotent on the repository side, so redelivery is safe.
func (j *VenueDefaultsJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Roles == nil {
		return errors.New("venue defaults: handler not configured")
	}
	var payload SeedVenueDefaultsPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.VenueID == uuid.Nil {
		return asynq.SkipRetry
	}
	created, err := j.Roles.CreateDefaultRoles(ctx, payload.VenueID, payload.CreatedBy)
	if err != nil {
		j.logger().Error("seeding failed",
			slog.String("venue_id", payload.VenueID.String()),
			slog.Any("error", err))
		return err
	}
	j.logger().Info("seeded default roles",
		slog.String("venue_id", payload.VenueID.String()),
		slog.Int("roles", len(created)),
	)
	return nil
}

func (j *VenueDefaultsJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskSeedVenueDefaults))
	}
	return slog.Default().With(slog.String("job", TaskSeedVenueDefaults))
}
