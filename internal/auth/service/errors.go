package service

import (
	"errors"
	"fmt"

	"github.com/soiree-app/soiree/internal/auth/domain"
)

// Error taxonomy shared by all services. Handlers map these onto the HTTP
// surface: ErrUnauthorized -> 401, ErrRateLimited -> 429, ErrConfig and
// ErrStoreUnavailable -> 503, ErrStepUpRequired -> 428.
var (
	// ErrUnauthorized covers every credential and token failure: wrong
	// secret, bad signature, expiry, revocation, step-up mismatch. Callers
	// never learn which one it was.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited is surfaced distinctly; it is not a secret-guessing aid.
	ErrRateLimited = errors.New("rate_limited")

	// ErrConfig reports an operator-correctable state: missing or weak
	// secrets, missing or weak signing key.
	ErrConfig = errors.New("configuration_error")

	// ErrStoreUnavailable reports that the shared store is down and the
	// role's policy fails closed.
	ErrStoreUnavailable = errors.New("store_unavailable")

	// ErrSharedStoreRequired reports a version bump attempted without a
	// shared store behind it.
	ErrSharedStoreRequired = errors.New("shared_store_required")

	// ErrStepUpRequired tells callers to run the re-auth flow rather than
	// treating the failure as terminal.
	ErrStepUpRequired = errors.New("step_up_required")
)

// CredentialError is an ErrUnauthorized that carries the attempts remaining
// in the current rate-limit window, the one piece of feedback the login
// response is allowed to include.
type CredentialError struct {
	Remaining int64
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("unauthorized (attempts remaining: %d)", e.Remaining)
}

func (e *CredentialError) Unwrap() error { return ErrUnauthorized }

// Policy is the explicit production-mode switch. In production the admin
// role fails closed whenever the shared store is unavailable; everywhere
// else degraded infrastructure falls back to process-local state.
type Policy struct {
	Production bool
}

// FailClosed reports whether store unavailability must reject the operation
// for this role instead of degrading to in-memory state.
func (p Policy) FailClosed(role domain.Role) bool {
	return p.Production && role == domain.RoleAdmin
}
