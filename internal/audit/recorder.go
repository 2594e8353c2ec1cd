package audit

import (
	"context"
	"log/slog"
)

// WriterPort persists audit entries.
type WriterPort interface {
	InsertEntry(ctx context.Context, entry Entry) error
}

// FailureCounter counts dropped audit writes.
type FailureCounter interface {
	AuditWriteFailure()
}

// Recorder appends audit entries, swallowing any store error. Callers
// invoke Record inline with their mutation and never observe a failure.
type Recorder struct {
	writer  WriterPort
	logger  *slog.Logger
	metrics FailureCounter
}

// NewRecorder builds a Recorder. metrics may be nil.
func NewRecorder(writer WriterPort, logger *slog.Logger, metrics FailureCounter) *Recorder {
	return &Recorder{writer: writer, logger: logger, metrics: metrics}
}

// Record appends one entry. Failures are logged and counted, then dropped.
func (r *Recorder) Record(ctx context.Context, entry Entry) {
	if r == nil || r.writer == nil {
		return
	}
	// The mutation may already be committed; a cancelled request context
	// must not take the audit write down with it.
	if err := r.writer.InsertEntry(context.WithoutCancel(ctx), entry); err != nil {
		if r.logger != nil {
			r.logger.Error("audit write dropped",
				slog.String("action", entry.Action),
				slog.String("venue_id", entry.VenueID.String()),
				slog.Any("error", err))
		}
		if r.metrics != nil {
			r.metrics.AuditWriteFailure()
		}
	}
}
