package recorder

import (
	"context"
	"sync"

	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/domain"
)

// MemoryStore keeps the most recent N records in process memory. Used as
// the storage.type=memory backend and in tests.
type MemoryStore struct {
	mu        sync.RWMutex
	records   []*domain.InteractionRecord // newest first
	retention int
}

// NewMemoryStore creates a memory backend retaining at most retention
// records. Zero means unbounded.
func NewMemoryStore(retention int) *MemoryStore {
	return &MemoryStore{retention: retention}
}

func (s *MemoryStore) Append(ctx context.Context, rec *domain.InteractionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append([]*domain.InteractionRecord{rec}, s.records...)
	if s.retention > 0 && len(s.records) > s.retention {
		s.records = s.records[:s.retention]
	}
	return nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]*domain.InteractionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.records)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]*domain.InteractionRecord, n)
	copy(out, s.records[:n])
	return out, nil
}

func (s *MemoryStore) Stats(ctx context.Context) (*domain.InteractionStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &domain.InteractionStats{
		Total:       len(s.records),
		ByMilestone: make(map[domain.Milestone]int),
	}
	for _, rec := range s.records {
		stats.ByMilestone[rec.Milestone]++
		if stats.Newest.IsZero() || rec.Timestamp.After(stats.Newest) {
			stats.Newest = rec.Timestamp
		}
		if stats.Oldest.IsZero() || rec.Timestamp.Before(stats.Oldest) {
			stats.Oldest = rec.Timestamp
		}
	}
	return stats, nil
}
