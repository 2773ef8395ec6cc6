// Package redis implements the shared auth store on Redis. All mutable
// shared state goes through Redis atomic primitives (INCR, SETNX, key TTLs)
// so concurrent instances never read-modify-write from the application.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/soiree-app/soiree/internal/auth/store"
)

// Key prefixes. Everything the auth core owns lives under "auth:".
const (
	versionKeyPrefix = "auth:ver:"     // auth:ver:<role>
	denyKeyPrefix    = "auth:deny:"    // auth:deny:<token id>
	attemptKeyPrefix = "auth:attempt:" // auth:attempt:<fingerprint>
	sessionKeyPrefix = "auth:session:" // auth:session:<token id>
	dedupeKeyPrefix  = "auth:dedupe:"  // auth:dedupe:<fingerprint>
)

// Config holds connection settings for the shared store.
type Config struct {
	URL            string // redis:// URL
	DialTimeout    time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	ConnectOnStart bool // fail startup if the store is unreachable
}

// DefaultConfig returns bounded timeouts so no auth operation can block
// indefinitely on the store.
func DefaultConfig(url string) Config {
	return Config{
		URL:            url,
		DialTimeout:    5 * time.Second,
		ReadTimeout:    2 * time.Second,
		WriteTimeout:   2 * time.Second,
		ConnectOnStart: true,
	}
}

// Store implements store.Store on a Redis client.
type Store struct {
	client *redis.Client
}

var _ store.Store = (*Store)(nil)

// NewStore connects to Redis and verifies the connection when configured to.
func NewStore(cfg Config) (*Store, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	s := &Store{client: redis.NewClient(opts)}

	if cfg.ConnectOnStart {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
		defer cancel()
		if err := s.client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis: connect: %w", err)
		}
	}

	return s, nil
}

// NewStoreWithClient wraps an existing client, used by tests.
func NewStoreWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Versions() store.Versions     { return versions{s.client} }
func (s *Store) Denylist() store.Denylist     { return denylist{s.client} }
func (s *Store) Attempts() store.Attempts     { return attempts{s.client} }
func (s *Store) Sessions() store.Sessions     { return sessions{s.client} }
func (s *Store) LoginCache() store.LoginCache { return loginCache{s.client} }

func (s *Store) Shared() bool { return true }

// PurgeExpired is a no-op: every expirable key is written with a TTL.
func (s *Store) PurgeExpired(context.Context) (int, error) { return 0, nil }

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *Store) Close() error { return s.client.Close() }

// unavailable folds any driver failure into the sentinel the services key
// their fail-open/fail-closed policy on.
func unavailable(err error) error {
	return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
}
