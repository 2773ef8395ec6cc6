package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type denylist struct {
	client *redis.Client
}

func (d denylist) Add(ctx context.Context, id string, ttl time.Duration) error {
	if err := d.client.Set(ctx, denyKeyPrefix+id, 1, ttl).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (d denylist) Contains(ctx context.Context, id string) (bool, error) {
	err := d.client.Get(ctx, denyKeyPrefix+id).Err()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, unavailable(err)
	}
	return true, nil
}
