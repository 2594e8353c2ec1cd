package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// OverridePurger is the slice of the overrides service the purge job needs.
type OverridePurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// OverridePurgeJob deletes permission overrides whose expiry has passed.
type OverridePurgeJob struct {
	Overrides OverridePurger
	Logger    *slog.Logger
}

// NewOverridePurgeJob initialises the purge handler.
func NewOverridePurgeJob(overrides OverridePurger, logger *slog.Logger) *OverridePurgeJob {
	return &OverridePurgeJob{Overrides: overrides, Logger: logger}
}

// Handle executes one purge sweep.
func (j *OverridePurgeJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Overrides == nil {
		return errors.New("override purge: handler not configured")
	}
	start := time.Now()
	purged, err := j.Overrides.PurgeExpired(ctx)
	if err != nil {
		j.logger().Error("purge failed", slog.Any("error", err))
		return err
	}
	j.logger().Info("purged expired overrides",
		slog.Int64("purged", purged),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *OverridePurgeJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskPurgeExpiredOverrides))
	}
	return slog.Default().With(slog.String("job", TaskPurgeExpiredOverrides))
}
