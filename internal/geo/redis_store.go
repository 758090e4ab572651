package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const positionKeyPrefix = "shiftlog:position:"

// RedisPositionStore keeps the last known position per worker in Redis so
// a sampling process and the attendance engine can run separately. The key
// TTL doubles as the staleness limit.
type RedisPositionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPositionStore(client *redis.Client, ttl time.Duration) *RedisPositionStore {
	return &RedisPositionStore{client: client, ttl: ttl}
}

type redisSample struct {
	Point
	RecordedAt time.Time `json:"recorded_at"`
}

func (s *RedisPositionStore) Record(ctx context.Context, userID string, p Point) error {
	payload, err := json.Marshal(redisSample{Point: p, RecordedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encoding position: %w", err)
	}
	if err := s.client.Set(ctx, positionKeyPrefix+userID, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("storing position: %w", err)
	}
	return nil
}

func (s *RedisPositionStore) CurrentPosition(ctx context.Context, userID string) (Point, error) {
	raw, err := s.client.Get(ctx, positionKeyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return Point{}, ErrNoPosition
	}
	if err != nil {
		return Point{}, fmt.Errorf("loading position: %w", err)
	}
	var smp redisSample
	if err := json.Unmarshal(raw, &smp); err != nil {
		return Point{}, fmt.Errorf("decoding position: %w", err)
	}
	return smp.Point, nil
}
