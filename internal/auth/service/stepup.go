package service

import (
	"context"
	"fmt"
	"time"

	"github.com/soiree-app/soiree/internal/auth/domain"
	"github.com/soiree-app/soiree/pkg/cryptox"
	"github.com/soiree-app/soiree/pkg/slogx"
	"github.com/soiree-app/soiree/pkg/tokenx"
)

// StepUpTTL is the lifetime of a step-up token. Deliberately short: the
// nonce is not tracked for replay, the TTL is the replay mitigation.
const StepUpTTL = 5 * time.Minute

// StepUpService mints and verifies the short-lived tokens proving the admin
// re-supplied their secret during the current session. A step-up token is
// bound to one parent session id and is useless alongside any other.
type StepUpService struct {
	Codec     *tokenx.Codec // nil when the signing key failed validation
	Secrets   domain.Secrets
	RateLimit *RateLimitService
}

// StepUpGrant is the issuance result handed back to the caller.
type StepUpGrant struct {
	Token     string
	ExpiresIn time.Duration
}

// Issue re-checks the raw admin secret (not merely the existing bearer
// token) and mints a token bound to parentID. Issuance is rate limited like
// a login: a valid admin bearer token is not a license to brute-force the
// password.
func (s *StepUpService) Issue(ctx context.Context, parentID, suppliedSecret, ip string) (StepUpGrant, error) {
	if s.Codec == nil {
		return StepUpGrant{}, fmt.Errorf("%w: signing key", ErrConfig)
	}

	secret, err := s.Secrets.ForRole(domain.RoleAdmin)
	if err != nil {
		return StepUpGrant{}, fmt.Errorf("%w: admin secret: %v", ErrConfig, err)
	}

	rate, err := s.RateLimit.Check(ctx, domain.RoleAdmin, ip)
	if err != nil {
		return StepUpGrant{}, err
	}
	if !rate.Allowed {
		return StepUpGrant{}, ErrRateLimited
	}

	if err := cryptox.VerifySecret(suppliedSecret, secret); err != nil {
		rate, rlErr := s.RateLimit.RecordFailure(ctx, domain.RoleAdmin, ip)
		if rlErr != nil {
			return StepUpGrant{}, rlErr
		}
		slogx.FromContext(ctx).Warn("step-up reauthentication failed", "ip", ip)
		return StepUpGrant{}, &CredentialError{Remaining: rate.Remaining}
	}

	if err := s.RateLimit.Clear(ctx, domain.RoleAdmin, ip); err != nil {
		slogx.FromContext(ctx).Warn("could not clear attempt window after step-up", "err", err)
	}

	token, _, err := s.Codec.SignStepUp(parentID, StepUpTTL)
	if err != nil {
		return StepUpGrant{}, err
	}

	slogx.FromContext(ctx).Info("step-up token issued", "parent_id", parentID)
	return StepUpGrant{Token: token, ExpiresIn: StepUpTTL}, nil
}

// Verify checks a step-up token against the presenting session's id. Any
// structural, expiry or binding failure degrades to ErrUnauthorized.
func (s *StepUpService) Verify(token, parentID string) error {
	if s.Codec == nil {
		return fmt.Errorf("%w: signing key", ErrConfig)
	}
	if _, err := s.Codec.VerifyStepUp(token, parentID); err != nil {
		return ErrUnauthorized
	}
	return nil
}
