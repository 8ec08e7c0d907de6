package sequence

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore allocates sequence values with INCR, which is atomic on the
// server. Suitable when several portal instances share one Redis.
type RedisStore struct {
	client    redis.Cmdable
	keyPrefix string
}

func NewRedis(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client, keyPrefix: "appnum:seq:"}
}

func (s *RedisStore) Next(ctx context.Context, period string) (int64, error) {
	val, err := s.client.Incr(ctx, s.keyPrefix+period).Result()
	if err != nil {
		return 0, fmt.Errorf("increment sequence for period %s: %w", period, err)
	}
	return val, nil
}
