package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type attempts struct {
	client *redis.Client
}

func (a attempts) Count(ctx context.Context, key string) (int64, error) {
	n, err := a.client.Get(ctx, attemptKeyPrefix+key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, unavailable(err)
	}
	return n, nil
}

// Increment bumps the window counter. The expiry is only set when the
// increment opened the window, so later failures never push the reset out.
func (a attempts) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	full := attemptKeyPrefix + key

	n, err := a.client.Incr(ctx, full).Result()
	if err != nil {
		return 0, unavailable(err)
	}
	if n == 1 {
		if err := a.client.Expire(ctx, full, window).Err(); err != nil {
			return n, unavailable(err)
		}
	}
	return n, nil
}

func (a attempts) Clear(ctx context.Context, key string) error {
	if err := a.client.Del(ctx, attemptKeyPrefix+key).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}
