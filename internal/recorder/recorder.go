// Package recorder appends best-effort interaction records for reporting.
// Failures here are logged and never propagate to the conversation.
package recorder

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/domain"
)

// persistTimeout bounds how long an append may hold up a turn.
const persistTimeout = 5 * time.Second

// Store is the persistence backend for interaction records. Retention is
// the backend's concern: each append may drop the oldest records beyond
// the configured bound.
type Store interface {
	Append(ctx context.Context, rec *domain.InteractionRecord) error
	List(ctx context.Context, limit int) ([]*domain.InteractionRecord, error)
	Stats(ctx context.Context) (*domain.InteractionStats, error)
}

// Option configures the recorder.
type Option func(*Recorder)

// WithLogger sets the logger for the recorder.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithClock overrides the clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
	}
}

// Recorder is the fire-and-forget wrapper the engine talks to.
type Recorder struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// New creates a recorder over the given backend.
func New(store Store, opts ...Option) *Recorder {
	r := &Recorder{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record appends a milestone. Persistence is decoupled from the request
// lifecycle by a detached, bounded context; errors are logged only.
func (r *Recorder) Record(ctx context.Context, sessionID string, milestone domain.Milestone, snapshot map[string]string) {
	rec := &domain.InteractionRecord{
		ID:        "int_" + uuid.New().String(),
		SessionID: sessionID,
		Milestone: milestone,
		Snapshot:  snapshot,
		Timestamp: r.now(),
	}

	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if err := r.store.Append(persistCtx, rec); err != nil {
		r.logger.Error("failed to append interaction record",
			slog.String("session_id", sessionID),
			slog.String("milestone", string(milestone)),
			slog.String("error", err.Error()),
		)
	}
}

// List returns the most recent records, newest first.
func (r *Recorder) List(ctx context.Context, limit int) ([]*domain.InteractionRecord, error) {
	return r.store.List(ctx, limit)
}

// Stats aggregates the retained records for the reporting surface.
func (r *Recorder) Stats(ctx context.Context) (*domain.InteractionStats, error) {
	return r.store.Stats(ctx)
}
