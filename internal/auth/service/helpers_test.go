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
	"github.com/soiree-app/soiree/pkg/cryptox"
	"github.com/soiree-app/soiree/pkg/tokenx"
)

const (
	testSigningKey = "unit-test-signing-key-0123456789" // 32 chars
	staffPIN       = "4821"
	adminPassword  = "correct-horse-9"
	uploadPIN      = "7777"
	cronSecret     = "cron-secret-0123456789"
)

func testSecrets() domain.Secrets {
	return domain.Secrets{
		SigningKey: testSigningKey,
		Staff:      staffPIN,
		Admin:      adminPassword,
		Upload:     uploadPIN,
		Cron:       cronSecret,
	}
}

// fixture bundles the fully wired service layer over a given store.
type fixture struct {
	login      *service.LoginService
	stepUp     *service.StepUpService
	revocation *service.RevocationService
	rateLimit  *service.RateLimitService
	sessions   *service.SessionService
	store      store.Store
}

func newFixture(t *testing.T, primary store.Store, policy service.Policy) *fixture {
	t.Helper()

	codec, err := tokenx.New(testSigningKey)
	require.NoError(t, err)

	fallback := memory.NewStore()
	secrets := testSecrets()

	revocation := &service.RevocationService{Store: primary, Fallback: fallback, Policy: policy}
	rateLimit := &service.RateLimitService{Store: primary, Fallback: fallback, Policy: policy}
	sessions := &service.SessionService{Store: primary, Revocation: revocation}

	return &fixture{
		login: &service.LoginService{
			Codec:      codec,
			Secrets:    secrets,
			Store:      primary,
			RateLimit:  rateLimit,
			Revocation: revocation,
			Sessions:   sessions,
		},
		stepUp: &service.StepUpService{
			Codec:     codec,
			Secrets:   secrets,
			RateLimit: rateLimit,
		},
		revocation: revocation,
		rateLimit:  rateLimit,
		sessions:   sessions,
		store:      primary,
	}
}

func newMemoryFixture(t *testing.T) *fixture {
	return newFixture(t, memory.NewStore(), service.Policy{})
}

func hashSecret(t *testing.T, secret string) string {
	t.Helper()
	hash, err := cryptox.HashSecret(secret)
	require.NoError(t, err)
	return hash
}

// downStore simulates an unreachable shared store: every operation reports
// store.ErrUnavailable. Shared() is true so it stands in for a configured
// Redis that stopped answering.
type downStore struct{}

var _ store.Store = downStore{}

func (downStore) Versions() store.Versions         { return downRepo{} }
func (downStore) Denylist() store.Denylist         { return downRepo{} }
func (downStore) Attempts() store.Attempts         { return downRepo{} }
func (downStore) Sessions() store.Sessions         { return downRepo{} }
func (downStore) LoginCache() store.LoginCache     { return downRepo{} }
func (downStore) Shared() bool                     { return true }
func (downStore) PurgeExpired(context.Context) (int, error) { return 0, store.ErrUnavailable }
func (downStore) Ping(context.Context) error       { return store.ErrUnavailable }
func (downStore) Close() error                     { return nil }

type downRepo struct{}

func (downRepo) Current(context.Context, string) (int64, error) { return 0, store.ErrUnavailable }
func (downRepo) Bump(context.Context, string) (int64, error)    { return 0, store.ErrUnavailable }

func (downRepo) Add(context.Context, string, time.Duration) error { return store.ErrUnavailable }
func (downRepo) Contains(context.Context, string) (bool, error)   { return false, store.ErrUnavailable }

func (downRepo) Count(context.Context, string) (int64, error) { return 0, store.ErrUnavailable }
func (downRepo) Increment(context.Context, string, time.Duration) (int64, error) {
	return 0, store.ErrUnavailable
}
func (downRepo) Clear(context.Context, string) error { return store.ErrUnavailable }

func (downRepo) Put(context.Context, domain.SessionRecord, time.Duration) error {
	return store.ErrUnavailable
}
func (downRepo) Get(context.Context, string) (domain.SessionRecord, error) {
	return domain.SessionRecord{}, store.ErrUnavailable
}
func (downRepo) MarkRevoked(context.Context, string) error { return store.ErrUnavailable }
func (downRepo) List(context.Context) ([]domain.SessionRecord, error) {
	return nil, store.ErrUnavailable
}

func (downRepo) Remember(context.Context, string, string, time.Duration) error {
	return store.ErrUnavailable
}
func (downRepo) Recall(context.Context, string) (string, error) { return "", store.ErrUnavailable }
