// Package store defines the durable session store and the layered
// primary/fallback composition used by the conversation engine.
package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/domain"
)

// SessionStore is the durable key -> session mapping with sliding TTL.
//
// Get never fails with "not found": an unseen or expired id yields a fresh
// session. Save must stamp LastUpdatedAt before persisting and refresh the
// TTL on every write.
type SessionStore interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, sess *domain.Session) error
	Delete(ctx context.Context, id string) error

	// List enumerates sessions ordered by LastUpdatedAt descending. It is
	// best-effort operational tooling: partial results are preferred over
	// total failure.
	List(ctx context.Context, limit int) ([]*domain.Session, error)
}

// LayeredOption configures the layered store.
type LayeredOption func(*Layered)

// WithLogger sets the logger for the layered store.
func WithLogger(logger *slog.Logger) LayeredOption {
	return func(l *Layered) {
		l.logger = logger
	}
}

// WithClock overrides the clock, for tests.
func WithClock(now func() time.Time) LayeredOption {
	return func(l *Layered) {
		l.now = now
	}
}

// Layered composes the networked primary store with an in-process fallback.
// Every save writes the fallback first (synchronous, cannot realistically
// fail) and then the primary; if the primary is unreachable the save still
// reports success, degrading durability to single-process lifetime rather
// than failing the conversation.
type Layered struct {
	primary  SessionStore
	fallback SessionStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewLayered builds a layered store. primary may be nil (fallback-only
// mode for local development).
func NewLayered(primary, fallback SessionStore, opts ...LayeredOption) *Layered {
	l := &Layered{
		primary:  primary,
		fallback: fallback,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Layered) Get(ctx context.Context, id string) (*domain.Session, error) {
	if l.primary != nil {
		sess, err := l.primary.Get(ctx, id)
		if err == nil {
			return sess, nil
		}
		l.logger.Warn("primary session store unreachable on get, using fallback",
			slog.String("session_id", id),
			slog.String("error", err.Error()),
		)
	}

	sess, err := l.fallback.Get(ctx, id)
	if err != nil {
		// Both layers failed; a fresh session is still a coherent answer.
		l.logger.Error("fallback session store failed on get",
			slog.String("session_id", id),
			slog.String("error", err.Error()),
		)
		return domain.NewSession(id, l.now()), nil
	}
	return sess, nil
}

func (l *Layered) Save(ctx context.Context, sess *domain.Session) error {
	sess.LastUpdatedAt = l.now()

	if err := l.fallback.Save(ctx, sess); err != nil {
		l.logger.Error("fallback session store failed on save",
			slog.String("session_id", sess.ID),
			slog.String("error", err.Error()),
		)
	}

	if l.primary != nil {
		if err := l.primary.Save(ctx, sess); err != nil {
			l.logger.Warn("primary session store unreachable on save, fallback only",
				slog.String("session_id", sess.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

func (l *Layered) Delete(ctx context.Context, id string) error {
	if err := l.fallback.Delete(ctx, id); err != nil {
		l.logger.Warn("fallback session store failed on delete",
			slog.String("session_id", id),
			slog.String("error", err.Error()),
		)
	}
	if l.primary != nil {
		if err := l.primary.Delete(ctx, id); err != nil {
			l.logger.Warn("primary session store unreachable on delete",
				slog.String("session_id", id),
				slog.String("error", err.Error()),
			)
			return err
		}
	}
	return nil
}

func (l *Layered) List(ctx context.Context, limit int) ([]*domain.Session, error) {
	if l.primary != nil {
		sessions, err := l.primary.List(ctx, limit)
		if err == nil {
			return sessions, nil
		}
		l.logger.Warn("primary session store unreachable on list, using fallback",
			slog.String("error", err.Error()),
		)
	}
	return l.fallback.List(ctx, limit)
}
