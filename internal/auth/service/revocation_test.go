package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soiree-app/soiree/internal/auth/domain"
	"github.com/soiree-app/soiree/internal/auth/service"
	"github.com/soiree-app/soiree/internal/auth/store/drivers/memory"
)

func TestCurrentVersionInitializesLazily(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newMemoryFixture(t)

	for _, role := range domain.TokenRoles() {
		n, err := f.revocation.CurrentVersion(ctx, role)
		require.NoError(t, err)
		require.EqualValues(t, 1, n, "role %s", role)
	}
}

func TestBumpIsPerRole(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newMemoryFixture(t)

	n, err := f.revocation.Bump(ctx, domain.RoleStaff)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	// Other roles keep their counters.
	n, err = f.revocation.CurrentVersion(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = f.revocation.CurrentVersion(ctx, domain.RoleUpload)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestBumpRejectsCronRole(t *testing.T) {
	t.Parallel()
	f := newMemoryFixture(t)

	_, err := f.revocation.Bump(context.Background(), domain.RoleCron)
	require.ErrorIs(t, err, domain.ErrUnknownRole)
}

func TestBumpRequiresSharedStoreInProduction(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// Memory store, production policy: mass invalidation would only reach
	// this process, so the bump is refused outright.
	f := newFixture(t, memory.NewStore(), service.Policy{Production: true})

	_, err := f.revocation.Bump(ctx, domain.RoleStaff)
	require.ErrorIs(t, err, service.ErrSharedStoreRequired)

	// Outside production the local bump is allowed.
	dev := newMemoryFixture(t)
	_, err = dev.revocation.Bump(ctx, domain.RoleStaff)
	require.NoError(t, err)
}

func TestStoreOutageFailOpenForStaff(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// Shared store down, non-production: staff degrades to the in-memory
	// fallback and keeps authenticating.
	f := newFixture(t, downStore{}, service.Policy{})

	result, err := f.login.Login(ctx, domain.RoleStaff, staffPIN, "10.0.0.1", "ua-1")
	require.NoError(t, err)
	require.EqualValues(t, 1, result.Claims.Ver)

	_, err = f.login.Authorize(ctx, result.Token, domain.RoleStaff)
	require.NoError(t, err)
}

func TestStoreOutageFailClosedForAdminInProduction(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, downStore{}, service.Policy{Production: true})

	_, err := f.login.Login(ctx, domain.RoleAdmin, adminPassword, "10.0.0.1", "ua-1")
	require.ErrorIs(t, err, service.ErrStoreUnavailable)

	// Staff still degrades gracefully under the same outage.
	_, err = f.login.Login(ctx, domain.RoleStaff, staffPIN, "10.0.0.1", "ua-1")
	require.NoError(t, err)
}

func TestAdminFailsOpenOutsideProduction(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, downStore{}, service.Policy{})

	result, err := f.login.Login(ctx, domain.RoleAdmin, adminPassword, "10.0.0.1", "ua-1")
	require.NoError(t, err)

	_, err = f.login.Authorize(ctx, result.Token, domain.RoleAdmin)
	require.NoError(t, err)
}

func TestValidateRejectsDenylistedID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newMemoryFixture(t)

	result, err := f.login.Login(ctx, domain.RoleStaff, staffPIN, "10.0.0.1", "ua-1")
	require.NoError(t, err)

	require.NoError(t, f.store.Denylist().Add(ctx, result.Claims.ID, domain.RoleStaff.TokenTTL()))

	err = f.revocation.Validate(ctx, result.Claims)
	require.ErrorIs(t, err, service.ErrUnauthorized)
}
