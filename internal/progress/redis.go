package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/addy1947/web-scrapping/internal/models"
)

// RedisSink keeps the latest cumulative snapshot in Redis, keyed by
// batch id, so other processes can watch a long-running batch without
// touching its checkpoint file.
type RedisSink struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSink(addr string, ttl time.Duration) *RedisSink {
	return &RedisSink{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

func (s *RedisSink) Persist(ctx context.Context, batchID string, records []models.MedicineRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}

	key := fmt.Sprintf("medscraper:batch:%s:records", batchID)
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}

	countKey := fmt.Sprintf("medscraper:batch:%s:processed", batchID)
	if err := s.client.Set(ctx, countKey, len(records), s.ttl).Err(); err != nil {
		return fmt.Errorf("store processed count: %w", err)
	}
	return nil
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
