// Package store defines the key-value storage interface behind the auth
// core: version counters, the revocation denylist, rate-limit windows,
// session bookkeeping and the login dedupe cache.
//
// Two drivers implement it. drivers/redis is the shared store for
// multi-instance deployments; drivers/memory is a single-process,
// development-grade degradation. The fail-open/fail-closed policy under
// store failure belongs to the services, never to a driver.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/soiree-app/soiree/internal/auth/domain"
)

var (
	// ErrNotFound reports an absent key.
	ErrNotFound = errors.New("store: not found")

	// ErrUnavailable reports that the backing store could not be reached.
	// Drivers wrap connectivity and timeout failures with this sentinel so
	// services can apply their role-specific policy with errors.Is.
	ErrUnavailable = errors.New("store: unavailable")
)

// Store is the root storage interface, exposing one sub-repository per
// concern.
type Store interface {
	Versions() Versions
	Denylist() Denylist
	Attempts() Attempts
	Sessions() Sessions
	LoginCache() LoginCache

	// Shared reports whether state is visible across process instances.
	// Version bumps in production require a shared store.
	Shared() bool

	// PurgeExpired drops expired entries and returns how many were removed.
	// The shared driver relies on key TTLs and reports zero.
	PurgeExpired(ctx context.Context) (int, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// Versions tracks the per-role token version counter.
type Versions interface {
	// Current reads the role's counter, lazily initializing it to 1.
	Current(ctx context.Context, role string) (int64, error)

	// Bump atomically increments the counter and returns the new value.
	// This is the "sign out everywhere" primitive: O(1) regardless of how
	// many tokens are outstanding.
	Bump(ctx context.Context, role string) (int64, error)
}

// Denylist tracks individually revoked token ids.
type Denylist interface {
	// Add records a revoked id. The ttl should outlive the token itself so
	// the entry never expires before the token would have.
	Add(ctx context.Context, id string, ttl time.Duration) error

	Contains(ctx context.Context, id string) (bool, error)
}

// Attempts tracks fixed-window failed-login counters keyed by (role, ip).
type Attempts interface {
	// Count returns the current window's counter, zero when absent or lapsed.
	Count(ctx context.Context, key string) (int64, error)

	// Increment bumps the counter, starting the window on the first failure.
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)

	// Clear removes the counter immediately; called on successful login.
	Clear(ctx context.Context, key string) error
}

// Sessions is best-effort bookkeeping of issued tokens keyed by token id.
type Sessions interface {
	Put(ctx context.Context, rec domain.SessionRecord, ttl time.Duration) error
	Get(ctx context.Context, id string) (domain.SessionRecord, error)

	// MarkRevoked flags the record for display. Authorization never consults
	// this flag; the denylist is authoritative.
	MarkRevoked(ctx context.Context, id string) error

	List(ctx context.Context) ([]domain.SessionRecord, error)
}

// LoginCache collapses rapid duplicate logins onto one token.
type LoginCache interface {
	Remember(ctx context.Context, key, token string, ttl time.Duration) error

	// Recall returns the remembered token or ErrNotFound.
	Recall(ctx context.Context, key string) (string, error)
}
