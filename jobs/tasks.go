package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPurgeExpiredOverrides reclaims storage from permission overrides
	// whose expiry has passed. Expired overrides are already invisible to
	// resolution; this only trims dead rows.
	TaskPurgeExpiredOverrides = "rbac:purge_expired_overrides"
	// TaskSeedVenueDefaults provisions the stock role hierarchy for a
	// freshly onboarded venue.
	TaskSeedVenueDefaults = "venue:seed_default_roles"
)

// SeedVenueDefaultsPayload names the venue to provision and who asked for it.
type SeedVenueDefaultsPayload struct {
	VenueID   uuid.UUID `json:"venue_id"`
	CreatedBy uuid.UUID `json:"created_by"`
}

// NewPurgeExpiredOverridesTask constructs the purge task. It carries no
// payload; the handler sweeps every venue.
func NewPurgeExpiredOverridesTask() *asynq.Task {
	return asynq.NewTask(TaskPurgeExpiredOverrides, nil)
}

// NewSeedVenueDefaultsTask constructs a venue provisioning task.
func NewSeedVenueDefaultsTask(payload SeedVenueDefaultsPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSeedVenueDefaults, data), nil
}
