// Package memory is the in-process session store used as the fallback
// layer and in tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/domain"
)

type entry struct {
	sess      *domain.Session
	expiresAt time.Time
}

// Store is an in-memory SessionStore with TTL checked on read.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
}

// Option configures the store.
type Option func(*Store)

// WithClock overrides the clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates an in-memory store with the given sliding TTL. A zero TTL
// disables expiry.
func New(ttl time.Duration, opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Get(ctx context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok || (s.ttl > 0 && s.now().After(e.expiresAt)) {
		// Expired sessions silently reset to fresh.
		return domain.NewSession(id, s.now()), nil
	}
	return e.sess.Clone(), nil
}

func (s *Store) Save(ctx context.Context, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Last-write-by-timestamp wins under duplicate webhook delivery.
	if existing, ok := s.entries[sess.ID]; ok && existing.sess.LastUpdatedAt.After(sess.LastUpdatedAt) {
		return nil
	}

	s.entries[sess.ID] = &entry{
		sess:      sess.Clone(),
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
	return nil
}

func (s *Store) List(ctx context.Context, limit int) ([]*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	sessions := make([]*domain.Session, 0, len(s.entries))
	for _, e := range s.entries {
		if s.ttl > 0 && now.After(e.expiresAt) {
			continue
		}
		sessions = append(sessions, e.sess.Clone())
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].LastUpdatedAt.After(sessions[j].LastUpdatedAt)
	})

	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}
