package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/soiree-app/soiree/internal/auth/domain"
	"github.com/soiree-app/soiree/internal/auth/service"
	"github.com/soiree-app/soiree/internal/auth/store"
	"github.com/soiree-app/soiree/internal/auth/store/drivers/memory"
)

func TestSessionListShowsDerivedStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newMemoryFixture(t)

	active, err := f.login.Login(ctx, domain.RoleStaff, staffPIN, "10.0.0.1", "ua-1")
	require.NoError(t, err)
	revoked, err := f.login.Login(ctx, domain.RoleStaff, staffPIN, "10.0.0.2", "ua-2")
	require.NoError(t, err)

	require.NoError(t, f.sessions.RevokeOne(ctx, revoked.Claims.ID))

	views, err := f.sessions.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, views, 2)

	byID := make(map[string]service.SessionView, len(views))
	for _, v := range views {
		byID[v.ID] = v
	}
	require.Equal(t, domain.SessionActive, byID[active.Claims.ID].Status)
	require.Equal(t, domain.SessionRevoked, byID[revoked.Claims.ID].Status)
}

func TestSessionListAfterVersionBump(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newMemoryFixture(t)

	staff, err := f.login.Login(ctx, domain.RoleStaff, staffPIN, "10.0.0.1", "ua-1")
	require.NoError(t, err)
	upload, err := f.login.Login(ctx, domain.RoleUpload, uploadPIN, "10.0.0.1", "ua-1")
	require.NoError(t, err)

	_, err = f.revocation.Bump(ctx, domain.RoleStaff)
	require.NoError(t, err)

	views, err := f.sessions.List(ctx, nil)
	require.NoError(t, err)

	byID := make(map[string]service.SessionView, len(views))
	for _, v := range views {
		byID[v.ID] = v
	}
	require.Equal(t, domain.SessionInvalidated, byID[staff.Claims.ID].Status)
	require.Equal(t, domain.SessionActive, byID[upload.Claims.ID].Status)
}

func TestSessionListRoleFilter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newMemoryFixture(t)

	_, err := f.login.Login(ctx, domain.RoleStaff, staffPIN, "10.0.0.1", "ua-1")
	require.NoError(t, err)
	upload, err := f.login.Login(ctx, domain.RoleUpload, uploadPIN, "10.0.0.1", "ua-1")
	require.NoError(t, err)

	role := domain.RoleUpload
	views, err := f.sessions.List(ctx, &role)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, upload.Claims.ID, views[0].ID)
}

func TestRevokeOneIsAuthoritativeWithoutARecord(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newMemoryFixture(t)

	// Revoking an id with no session record still lands on the denylist.
	require.NoError(t, f.sessions.RevokeOne(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV"))

	denied, err := f.revocation.IsDenylisted(ctx, domain.RoleStaff, "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	require.NoError(t, err)
	require.True(t, denied)
}

func TestRevokeOneFailsWhenDenylistUnreachable(t *testing.T) {
	t.Parallel()
	f := newFixture(t, downStore{}, service.Policy{})

	err := f.sessions.RevokeOne(context.Background(), "some-id")
	require.ErrorIs(t, err, service.ErrStoreUnavailable)
}

// sessionlessStore wraps a working store with a session repo that rejects
// every write, standing in for a registry that lost its backing data.
type sessionlessStore struct {
	store.Store
}

func (sessionlessStore) Sessions() store.Sessions { return downRepo{} }

func TestRegistryFailureNeverBlocksLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, sessionlessStore{Store: memory.NewStore()}, service.Policy{})

	// The record write fails, the login does not.
	result, err := f.login.Login(ctx, domain.RoleStaff, staffPIN, "10.0.0.1", "ua-1")
	require.NoError(t, err)

	// The token stays valid: the registry observes, it never gates.
	_, err = f.login.Authorize(ctx, result.Token, domain.RoleStaff)
	require.NoError(t, err)
}

func TestHousekeepingRunOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newMemoryFixture(t)

	// Seed an entry that is already past its TTL.
	require.NoError(t, f.store.Denylist().Add(ctx, "stale-id", -time.Minute))

	hk := &service.HousekeepingService{Store: f.store}
	removed, err := hk.RunOnce(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, removed, 1)

	denied, err := f.revocation.IsDenylisted(ctx, domain.RoleStaff, "stale-id")
	require.NoError(t, err)
	require.False(t, denied)
}

func TestHousekeepingSweepsFallbackStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	primary := memory.NewStore()
	fallback := memory.NewStore()

	// Stale state that piled up on the fallback during a shared-store
	// outage. The primary has nothing to do; the sweep must still reach it.
	require.NoError(t, fallback.Denylist().Add(ctx, "outage-id", -time.Minute))
	_, err := fallback.Attempts().Increment(ctx, "staff|10.0.0.1", -time.Minute)
	require.NoError(t, err)

	hk := &service.HousekeepingService{Store: primary, Fallback: fallback}
	removed, err := hk.RunOnce(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, removed, 2)

	// A second sweep finds both stores clean.
	removed, err = hk.RunOnce(ctx)
	require.NoError(t, err)
	require.Zero(t, removed)
}
