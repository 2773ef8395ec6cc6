package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

type versions struct {
	client *redis.Client
}

// Current reads the role's version counter, lazily initializing it to 1.
func (v versions) Current(ctx context.Context, role string) (int64, error) {
	key := versionKeyPrefix + role

	n, err := v.client.Get(ctx, key).Int64()
	if err == nil {
		return n, nil
	}
	if err != redis.Nil {
		return 0, unavailable(err)
	}

	// First sight of this role: initialize. SETNX keeps a concurrent
	// initializer from clobbering a bump that landed in between.
	set, err := v.client.SetNX(ctx, key, 1, 0).Result()
	if err != nil {
		return 0, unavailable(err)
	}
	if set {
		return 1, nil
	}

	n, err = v.client.Get(ctx, key).Int64()
	if err != nil {
		return 0, unavailable(err)
	}
	return n, nil
}

// Bump atomically increments the counter. The counter is initialized first
// so a bump on a never-seen role lands on 2, distinct from the implicit
// initial version every outstanding token carries.
func (v versions) Bump(ctx context.Context, role string) (int64, error) {
	key := versionKeyPrefix + role

	if err := v.client.SetNX(ctx, key, 1, 0).Err(); err != nil {
		return 0, unavailable(err)
	}

	n, err := v.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, unavailable(err)
	}
	return n, nil
}
