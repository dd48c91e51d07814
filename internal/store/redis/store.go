// Package redis is the networked primary session store, backed by a
// TTL-capable Redis instance.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/domain"
)

const keyPrefix = "session:"

// scanBatch is the COUNT hint passed to SCAN while listing sessions.
const scanBatch = 100

// Store persists sessions as JSON values under session:<id> with a sliding
// TTL refreshed on every save.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// Option configures the store.
type Option func(*Store)

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock overrides the clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a Redis-backed session store.
func New(client *redis.Client, ttl time.Duration, opts ...Option) *Store {
	s := &Store{
		client: client,
		ttl:    ttl,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func sessionKey(id string) string {
	return keyPrefix + id
}

func (s *Store) Get(ctx context.Context, id string) (*domain.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		// Unseen or expired id: fresh session, never an error.
		return domain.NewSession(id, s.now()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", id, err)
	}

	sess, ok := s.decode(id, data)
	if !ok {
		return domain.NewSession(id, s.now()), nil
	}
	return sess, nil
}

// decode unmarshals a stored session, treating malformed payloads and
// unknown states as a contract violation that degrades to fresh.
func (s *Store) decode(id string, data []byte) (*domain.Session, bool) {
	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		s.logger.Error("malformed session payload, treating as fresh",
			slog.String("session_id", id),
			slog.String("error", err.Error()),
		)
		return nil, false
	}
	if !sess.State.Valid() {
		s.logger.Error("unknown session state, treating as fresh",
			slog.String("session_id", id),
			slog.String("state", string(sess.State)),
		)
		return nil, false
	}
	if sess.Fields == nil {
		sess.Fields = make(map[string]string)
	}
	return &sess, true
}

func (s *Store) Save(ctx context.Context, sess *domain.Session) error {
	if sess.LastUpdatedAt.IsZero() {
		sess.LastUpdatedAt = s.now()
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", sess.ID, err)
	}

	if err := s.client.Set(ctx, sessionKey(sess.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", sess.ID, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", id, err)
	}
	return nil
}

// List scans session keys and returns decoded sessions ordered by
// LastUpdatedAt descending. A partial scan failure returns what was read
// so far rather than nothing.
func (s *Store) List(ctx context.Context, limit int) ([]*domain.Session, error) {
	var (
		sessions []*domain.Session
		cursor   uint64
	)

	for {
		keys, next, err := s.client.Scan(ctx, cursor, keyPrefix+"*", scanBatch).Result()
		if err != nil {
			if len(sessions) > 0 {
				s.logger.Warn("session scan failed partway, returning partial results",
					slog.Int("collected", len(sessions)),
					slog.String("error", err.Error()),
				)
				break
			}
			return nil, fmt.Errorf("redis scan: %w", err)
		}

		for _, key := range keys {
			data, err := s.client.Get(ctx, key).Bytes()
			if err != nil {
				continue
			}
			id := key[len(keyPrefix):]
			if sess, ok := s.decode(id, data); ok {
				sessions = append(sessions, sess)
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].LastUpdatedAt.After(sessions[j].LastUpdatedAt)
	})

	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}
