package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/soiree-app/soiree/internal/auth/domain"
	"github.com/soiree-app/soiree/internal/auth/store"
	"github.com/soiree-app/soiree/pkg/slogx"
	"github.com/soiree-app/soiree/pkg/tokenx"
)

// RevocationService owns token-version counters and the per-id denylist.
// A token is valid only while its embedded version matches the role's
// current version and its id is not individually denylisted.
type RevocationService struct {
	Store store.Store

	// Fallback is the process-local store used when the primary is
	// unavailable and the role's policy fails open. Single-process
	// semantics only; see drivers/memory.
	Fallback store.Store

	Policy Policy
}

// CurrentVersion reads (lazily initializing) the role's version counter.
// Under store failure, admin fails closed in production; every other case
// degrades to the in-memory fallback version.
func (s *RevocationService) CurrentVersion(ctx context.Context, role domain.Role) (int64, error) {
	n, err := s.Store.Versions().Current(ctx, role.String())
	if err == nil {
		return n, nil
	}
	if !errors.Is(err, store.ErrUnavailable) {
		return 0, err
	}

	if s.Policy.FailClosed(role) {
		return 0, fmt.Errorf("%w: version counter for %s: %v", ErrStoreUnavailable, role, err)
	}

	slogx.FromContext(ctx).Warn("version counter unavailable, using in-memory fallback",
		"role", role.String(), "err", err)
	return s.Fallback.Versions().Current(ctx, role.String())
}

// Bump increments the role's version counter, invalidating every
// outstanding token for that role in one step. In production this requires
// the shared store: a process-local bump cannot reach tokens being verified
// by other instances.
func (s *RevocationService) Bump(ctx context.Context, role domain.Role) (int64, error) {
	if !role.IsTokenRole() {
		return 0, domain.ErrUnknownRole
	}
	if s.Policy.Production && !s.Store.Shared() {
		return 0, ErrSharedStoreRequired
	}

	n, err := s.Store.Versions().Bump(ctx, role.String())
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			return 0, fmt.Errorf("%w: bump for %s: %v", ErrStoreUnavailable, role, err)
		}
		return 0, err
	}

	slogx.FromContext(ctx).Info("token version bumped", "role", role.String(), "version", n)
	return n, nil
}

// IsDenylisted checks the per-id revocation record. Store failure follows
// the same policy split as the version counter: fail closed for admin in
// production, otherwise treat the id as not denylisted.
func (s *RevocationService) IsDenylisted(ctx context.Context, role domain.Role, id string) (bool, error) {
	hit, err := s.Store.Denylist().Contains(ctx, id)
	if err == nil {
		return hit, nil
	}
	if !errors.Is(err, store.ErrUnavailable) {
		return false, err
	}

	if s.Policy.FailClosed(role) {
		return false, fmt.Errorf("%w: denylist for %s: %v", ErrStoreUnavailable, role, err)
	}

	slogx.FromContext(ctx).Warn("denylist unavailable, failing open", "role", role.String(), "err", err)
	return false, nil
}

// Validate delegates version and denylist validity for a structurally
// verified token. Both checks must pass before the payload is usable.
func (s *RevocationService) Validate(ctx context.Context, claims tokenx.Claims) error {
	role := domain.Role(claims.Role)

	current, err := s.CurrentVersion(ctx, role)
	if err != nil {
		return err
	}
	if claims.Ver != current {
		return ErrUnauthorized
	}

	denied, err := s.IsDenylisted(ctx, role, claims.ID)
	if err != nil {
		return err
	}
	if denied {
		return ErrUnauthorized
	}

	return nil
}
