package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/soiree-app/soiree/internal/auth/domain"
	"github.com/soiree-app/soiree/internal/auth/store"
)

type sessions struct {
	client *redis.Client
}

func (s sessions) Put(ctx context.Context, rec domain.SessionRecord, ttl time.Duration) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+rec.ID, payload, ttl).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s sessions) Get(ctx context.Context, id string) (domain.SessionRecord, error) {
	raw, err := s.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return domain.SessionRecord{}, store.ErrNotFound
	}
	if err != nil {
		return domain.SessionRecord{}, unavailable(err)
	}

	var rec domain.SessionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.SessionRecord{}, err
	}
	return rec, nil
}

// MarkRevoked rewrites the record with the revoked flag while keeping its
// remaining TTL.
func (s sessions) MarkRevoked(ctx context.Context, id string) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	rec.Revoked = true

	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+id, payload, redis.KeepTTL).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s sessions) List(ctx context.Context) ([]domain.SessionRecord, error) {
	var out []domain.SessionRecord

	iter := s.client.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		raw, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err == redis.Nil {
			continue // expired between scan and get
		}
		if err != nil {
			return nil, unavailable(err)
		}

		var rec domain.SessionRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue // skip unreadable records rather than fail the listing
		}
		out = append(out, rec)
	}
	if err := iter.Err(); err != nil {
		return nil, unavailable(err)
	}
	return out, nil
}
