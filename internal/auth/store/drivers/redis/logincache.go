package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/soiree-app/soiree/internal/auth/store"
)

type loginCache struct {
	client *redis.Client
}

func (c loginCache) Remember(ctx context.Context, key, token string, ttl time.Duration) error {
	if err := c.client.Set(ctx, dedupeKeyPrefix+key, token, ttl).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (c loginCache) Recall(ctx context.Context, key string) (string, error) {
	token, err := c.client.Get(ctx, dedupeKeyPrefix+key).Result()
	if err == redis.Nil {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", unavailable(err)
	}
	return token, nil
}
