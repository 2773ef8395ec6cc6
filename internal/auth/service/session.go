package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/soiree-app/soiree/internal/auth/domain"
	"github.com/soiree-app/soiree/internal/auth/store"
	"github.com/soiree-app/soiree/pkg/slogx"
	"github.com/soiree-app/soiree/pkg/tokenx"
)

// SessionRecordMargin is added to a session record's TTL past the token's
// own expiry so listings can still show a just-expired session.
const SessionRecordMargin = time.Hour

// SessionService keeps best-effort bookkeeping of issued tokens for
// administrative visibility and single-session revocation. It observes
// authentication, it never gates it: a lost record leaves the token valid,
// a failed write never blocks a login.
type SessionService struct {
	Store      store.Store
	Revocation *RevocationService
}

// SessionView is a record plus its derived display status.
type SessionView struct {
	domain.SessionRecord

	Status domain.SessionStatus `json:"status"`
}

// Record mirrors an issued token into the session registry. Failures are
// logged and swallowed.
func (s *SessionService) Record(ctx context.Context, claims tokenx.Claims, ip, userAgent string) {
	rec := domain.SessionRecord{
		ID:        claims.ID,
		Role:      domain.Role(claims.Role),
		Version:   claims.Ver,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
		IP:        ip,
		UserAgent: userAgent,
	}

	ttl := time.Until(rec.ExpiresAt) + SessionRecordMargin
	if err := s.Store.Sessions().Put(ctx, rec, ttl); err != nil {
		slogx.FromContext(ctx).Warn("session record write failed",
			"token_id", rec.ID, "role", rec.Role.String(), "err", err)
	}
}

// RevokeOne denylists a single token id without touching any other session
// of the same role. The denylist write is authoritative and its failure is
// returned; the display flag on the record is best-effort.
func (s *SessionService) RevokeOne(ctx context.Context, id string) error {
	ttl := 24*time.Hour + SessionRecordMargin
	if rec, err := s.Store.Sessions().Get(ctx, id); err == nil {
		if until := time.Until(rec.ExpiresAt); until > 0 {
			ttl = until + SessionRecordMargin
		}
	}

	if err := s.Store.Denylist().Add(ctx, id, ttl); err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			return fmt.Errorf("%w: denylist write: %v", ErrStoreUnavailable, err)
		}
		return err
	}

	if err := s.Store.Sessions().MarkRevoked(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		slogx.FromContext(ctx).Warn("could not flag session record as revoked", "token_id", id, "err", err)
	}

	slogx.FromContext(ctx).Info("session revoked", "token_id", id)
	return nil
}

// List returns tracked sessions with their derived status, optionally
// filtered to one role. Status derivation needs each role's current
// version; versions are read once per role, not per record.
func (s *SessionService) List(ctx context.Context, role *domain.Role) ([]SessionView, error) {
	records, err := s.Store.Sessions().List(ctx)
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			return nil, fmt.Errorf("%w: session listing: %v", ErrStoreUnavailable, err)
		}
		return nil, err
	}

	now := time.Now().UTC()
	versions := make(map[domain.Role]int64)
	views := make([]SessionView, 0, len(records))

	for _, rec := range records {
		if role != nil && rec.Role != *role {
			continue
		}

		current, ok := versions[rec.Role]
		if !ok {
			current, err = s.Revocation.CurrentVersion(ctx, rec.Role)
			if err != nil {
				return nil, err
			}
			versions[rec.Role] = current
		}

		views = append(views, SessionView{
			SessionRecord: rec,
			Status:        rec.Status(now, current),
		})
	}

	return views, nil
}
