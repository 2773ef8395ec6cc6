package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/soiree-app/soiree/internal/auth/domain"
	"github.com/soiree-app/soiree/internal/auth/store"
	"github.com/soiree-app/soiree/internal/auth/store/drivers/memory"
)

// steppable clock for window tests.
type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) step(d time.Duration)    { c.t = c.t.Add(d) }
func newClock() *clock                   { return &clock{t: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)} }
func newStore(c *clock) *memory.Store    { return memory.NewStoreAt(c.now) }

func TestVersionsLazyInitAndBump(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memory.NewStore()

	n, err := s.Versions().Current(ctx, "staff")
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = s.Versions().Bump(ctx, "staff")
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	// Bump on a never-read role still lands past the implicit initial 1.
	n, err = s.Versions().Bump(ctx, "upload")
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	n, err = s.Versions().Current(ctx, "staff")
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestDenylistExpiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := newClock()
	s := newStore(c)

	require.NoError(t, s.Denylist().Add(ctx, "tok-1", time.Hour))

	hit, err := s.Denylist().Contains(ctx, "tok-1")
	require.NoError(t, err)
	require.True(t, hit)

	hit, err = s.Denylist().Contains(ctx, "tok-2")
	require.NoError(t, err)
	require.False(t, hit)

	c.step(2 * time.Hour)
	hit, err = s.Denylist().Contains(ctx, "tok-1")
	require.NoError(t, err)
	require.False(t, hit)
}

func TestAttemptsWindow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := newClock()
	s := newStore(c)

	const key = "staff|10.0.0.1"

	n, err := s.Attempts().Count(ctx, key)
	require.NoError(t, err)
	require.Zero(t, n)

	for i := 1; i <= 3; i++ {
		n, err = s.Attempts().Increment(ctx, key, 15*time.Minute)
		require.NoError(t, err)
		require.EqualValues(t, i, n)
	}

	// The window lapses and the counter starts over.
	c.step(16 * time.Minute)
	n, err = s.Attempts().Count(ctx, key)
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = s.Attempts().Increment(ctx, key, 15*time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	require.NoError(t, s.Attempts().Clear(ctx, key))
	n, err = s.Attempts().Count(ctx, key)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestSessionsLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := newClock()
	s := newStore(c)

	rec := domain.SessionRecord{
		ID:        "01TESTID",
		Role:      domain.RoleStaff,
		Version:   1,
		IssuedAt:  c.now(),
		ExpiresAt: c.now().Add(24 * time.Hour),
		IP:        "10.0.0.1",
		UserAgent: "test-agent",
	}
	require.NoError(t, s.Sessions().Put(ctx, rec, 25*time.Hour))

	got, err := s.Sessions().Get(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, rec, got)

	require.NoError(t, s.Sessions().MarkRevoked(ctx, rec.ID))
	got, err = s.Sessions().Get(ctx, rec.ID)
	require.NoError(t, err)
	require.True(t, got.Revoked)

	list, err := s.Sessions().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	c.step(26 * time.Hour)
	_, err = s.Sessions().Get(ctx, rec.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestLoginCacheWindow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := newClock()
	s := newStore(c)

	require.NoError(t, s.LoginCache().Remember(ctx, "fp", "token-value", 15*time.Second))

	token, err := s.LoginCache().Recall(ctx, "fp")
	require.NoError(t, err)
	require.Equal(t, "token-value", token)

	c.step(16 * time.Second)
	_, err = s.LoginCache().Recall(ctx, "fp")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestPurgeExpired(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := newClock()
	s := newStore(c)

	require.NoError(t, s.Denylist().Add(ctx, "old", time.Minute))
	_, err := s.Attempts().Increment(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.NoError(t, s.LoginCache().Remember(ctx, "fp", "tok", time.Minute))
	require.NoError(t, s.Sessions().Put(ctx, domain.SessionRecord{ID: "sid"}, time.Minute))

	removed, err := s.PurgeExpired(ctx)
	require.NoError(t, err)
	require.Zero(t, removed)

	c.step(2 * time.Minute)
	removed, err = s.PurgeExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, removed)
}
