package recorder

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/domain"
)

// interactionsKey is the Redis list holding records newest-first.
const interactionsKey = "interactions"

// RedisStore keeps interaction records in a Redis list bounded by LTRIM.
type RedisStore struct {
	client    *redis.Client
	retention int
}

// NewRedisStore creates a Redis backend retaining at most retention
// records.
func NewRedisStore(client *redis.Client, retention int) *RedisStore {
	return &RedisStore{client: client, retention: retention}
}

func (s *RedisStore) Append(ctx context.Context, rec *domain.InteractionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal interaction record: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, interactionsKey, data)
	if s.retention > 0 {
		pipe.LTrim(ctx, interactionsKey, 0, int64(s.retention-1))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis append interaction: %w", err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context, limit int) ([]*domain.InteractionRecord, error) {
	end := int64(-1)
	if limit > 0 {
		end = int64(limit - 1)
	}

	raw, err := s.client.LRange(ctx, interactionsKey, 0, end).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list interactions: %w", err)
	}

	records := make([]*domain.InteractionRecord, 0, len(raw))
	for _, item := range raw {
		var rec domain.InteractionRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			// Skip corrupt entries rather than failing the whole read.
			continue
		}
		records = append(records, &rec)
	}
	return records, nil
}

func (s *RedisStore) Stats(ctx context.Context) (*domain.InteractionStats, error) {
	records, err := s.List(ctx, 0)
	if err != nil {
		return nil, err
	}

	stats := &domain.InteractionStats{
		Total:       len(records),
		ByMilestone: make(map[domain.Milestone]int),
	}
	for _, rec := range records {
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
