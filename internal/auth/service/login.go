package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/soiree-app/soiree/internal/auth/domain"
	"github.com/soiree-app/soiree/internal/auth/store"
	"github.com/soiree-app/soiree/pkg/cryptox"
	"github.com/soiree-app/soiree/pkg/slogx"
	"github.com/soiree-app/soiree/pkg/tokenx"
)

// LoginDedupeWindow is how long a successful login is remembered for the
// same (role, ip, user-agent). A double form-submit inside the window gets
// the same token back instead of a second live session.
const LoginDedupeWindow = 15 * time.Second

// LoginService runs the credential verification flow and the authorization
// check. It is the only component that compares role secrets.
type LoginService struct {
	Codec   *tokenx.Codec // nil when the signing key failed validation
	Secrets domain.Secrets
	Store   store.Store

	RateLimit  *RateLimitService
	Revocation *RevocationService
	Sessions   *SessionService
}

// LoginResult is a successful credential verification.
type LoginResult struct {
	Token  string
	Claims tokenx.Claims
	TTL    time.Duration
	Reused bool // true when the dedupe cache returned an earlier token
}

// Login verifies a role secret and issues (or reuses) a bearer token.
// Order matters: the rate-limit gate runs before the secret comparison so a
// locked-out caller never exercises the comparison at all.
func (s *LoginService) Login(ctx context.Context, role domain.Role, suppliedSecret, ip, userAgent string) (LoginResult, error) {
	log := slogx.FromContext(ctx)

	if !role.IsTokenRole() {
		return LoginResult{}, domain.ErrUnknownRole
	}
	if s.Codec == nil {
		return LoginResult{}, fmt.Errorf("%w: signing key", ErrConfig)
	}
	secret, err := s.Secrets.ForRole(role)
	if err != nil {
		return LoginResult{}, fmt.Errorf("%w: %s secret: %v", ErrConfig, role, err)
	}

	rate, err := s.RateLimit.Check(ctx, role, ip)
	if err != nil {
		return LoginResult{}, err
	}
	if !rate.Allowed {
		log.Warn("login rate limited", "role", role.String(), "ip", ip)
		return LoginResult{}, ErrRateLimited
	}

	if err := cryptox.VerifySecret(suppliedSecret, secret); err != nil {
		rate, rlErr := s.RateLimit.RecordFailure(ctx, role, ip)
		if rlErr != nil {
			return LoginResult{}, rlErr
		}
		log.Warn("login failed", "role", role.String(), "ip", ip, "attempts_remaining", rate.Remaining)
		return LoginResult{}, &CredentialError{Remaining: rate.Remaining}
	}

	if err := s.RateLimit.Clear(ctx, role, ip); err != nil {
		log.Warn("could not clear attempt window after login", "err", err)
	}

	// The credential check ran either way, so handing back a recent token
	// does not weaken anything.
	if result, ok := s.recallRecent(ctx, role, ip, userAgent); ok {
		log.Info("login deduplicated", "role", role.String(), "token_id", result.Claims.ID)
		return result, nil
	}

	version, err := s.Revocation.CurrentVersion(ctx, role)
	if err != nil {
		// No version, no token: an un-versioned token could never be
		// mass-invalidated.
		return LoginResult{}, err
	}

	ttl := role.TokenTTL()
	token, claims, err := s.Codec.Sign(role.String(), version, ttl)
	if err != nil {
		return LoginResult{}, err
	}

	s.Sessions.Record(ctx, claims, ip, userAgent)
	s.rememberLogin(ctx, role, ip, userAgent, token)

	log.Info("login succeeded", "role", role.String(), "token_id", claims.ID, "version", version)
	return LoginResult{Token: token, Claims: claims, TTL: ttl}, nil
}

// Authorize runs the authorization check for a presented bearer token:
// structural verification, then version/denylist validity. The accepted set
// is widened by the privilege order (admin passes staff and upload checks).
func (s *LoginService) Authorize(ctx context.Context, token string, required ...domain.Role) (tokenx.Claims, error) {
	if s.Codec == nil {
		return tokenx.Claims{}, fmt.Errorf("%w: signing key", ErrConfig)
	}

	accepted := domain.Accepting(required...)
	names := make([]string, len(accepted))
	for i, r := range accepted {
		names[i] = r.String()
	}

	claims, err := s.Codec.Verify(token, names)
	if err != nil {
		return tokenx.Claims{}, ErrUnauthorized
	}

	if err := s.Revocation.Validate(ctx, claims); err != nil {
		return tokenx.Claims{}, err
	}

	return claims, nil
}

// VerifyCron checks the cron secret by direct comparison. Cron never gets a
// token, but failed attempts are rate limited like everyone else's.
func (s *LoginService) VerifyCron(ctx context.Context, suppliedSecret, ip string) error {
	secret, err := s.Secrets.ForRole(domain.RoleCron)
	if err != nil {
		return fmt.Errorf("%w: cron secret: %v", ErrConfig, err)
	}

	rate, err := s.RateLimit.Check(ctx, domain.RoleCron, ip)
	if err != nil {
		return err
	}
	if !rate.Allowed {
		return ErrRateLimited
	}

	if err := cryptox.VerifySecret(suppliedSecret, secret); err != nil {
		if _, rlErr := s.RateLimit.RecordFailure(ctx, domain.RoleCron, ip); rlErr != nil {
			return rlErr
		}
		return ErrUnauthorized
	}

	return s.RateLimit.Clear(ctx, domain.RoleCron, ip)
}

func dedupeKey(role domain.Role, ip, userAgent string) string {
	return cryptox.Fingerprint(role.String() + "|" + ip + "|" + userAgent)
}

// recallRecent returns a previously issued token for the same caller if it
// still independently verifies. Cache trouble never fails a login.
func (s *LoginService) recallRecent(ctx context.Context, role domain.Role, ip, userAgent string) (LoginResult, bool) {
	token, err := s.Store.LoginCache().Recall(ctx, dedupeKey(role, ip, userAgent))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slogx.FromContext(ctx).Warn("login dedupe recall failed", "err", err)
		}
		return LoginResult{}, false
	}

	claims, err := s.Codec.Verify(token, []string{role.String()})
	if err != nil {
		return LoginResult{}, false
	}
	if err := s.Revocation.Validate(ctx, claims); err != nil {
		return LoginResult{}, false
	}

	return LoginResult{
		Token:  token,
		Claims: claims,
		TTL:    time.Until(claims.ExpiresAt.Time),
		Reused: true,
	}, true
}

func (s *LoginService) rememberLogin(ctx context.Context, role domain.Role, ip, userAgent, token string) {
	err := s.Store.LoginCache().Remember(ctx, dedupeKey(role, ip, userAgent), token, LoginDedupeWindow)
	if err != nil {
		slogx.FromContext(ctx).Warn("login dedupe remember failed", "err", err)
	}
}
