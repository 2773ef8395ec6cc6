package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/soiree-app/soiree/internal/auth/domain"
	"github.com/soiree-app/soiree/internal/auth/store"
	"github.com/soiree-app/soiree/pkg/slogx"
)

// Fixed-window lockout parameters, shared by every role.
const (
	RateLimitWindow    = 15 * time.Minute
	RateLimitThreshold = 5
)

// RateLimitService tracks failed credential attempts per (role, client ip).
// Admin brute-force protection must not silently disable, so admin fails
// closed when the shared store is required but unreachable in production;
// lower-privilege roles fall back to a process-local window.
type RateLimitService struct {
	Store    store.Store
	Fallback store.Store
	Policy   Policy
}

// RateStatus is the outcome of a window check.
type RateStatus struct {
	Allowed   bool
	Remaining int64
}

func attemptKey(role domain.Role, ip string) string {
	return role.String() + "|" + ip
}

// Check reads the current window without consuming an attempt.
func (s *RateLimitService) Check(ctx context.Context, role domain.Role, ip string) (RateStatus, error) {
	count, err := s.Store.Attempts().Count(ctx, attemptKey(role, ip))
	if err != nil {
		return s.retryOnFallback(ctx, role, err, func(fb store.Store) (RateStatus, error) {
			count, err := fb.Attempts().Count(ctx, attemptKey(role, ip))
			if err != nil {
				return RateStatus{}, err
			}
			return status(count), nil
		})
	}
	return status(count), nil
}

// RecordFailure counts a failed attempt, opening the window on the first
// one. Returns the updated status so callers can report attempts remaining.
func (s *RateLimitService) RecordFailure(ctx context.Context, role domain.Role, ip string) (RateStatus, error) {
	count, err := s.Store.Attempts().Increment(ctx, attemptKey(role, ip), RateLimitWindow)
	if err != nil {
		return s.retryOnFallback(ctx, role, err, func(fb store.Store) (RateStatus, error) {
			count, err := fb.Attempts().Increment(ctx, attemptKey(role, ip), RateLimitWindow)
			if err != nil {
				return RateStatus{}, err
			}
			return status(count), nil
		})
	}
	return status(count), nil
}

// Clear drops the counter immediately so a correct credential right after a
// mistaken attempt is never penalized. Cleared on both backends: a window
// may have accumulated on the fallback during an outage.
func (s *RateLimitService) Clear(ctx context.Context, role domain.Role, ip string) error {
	if err := s.Store.Attempts().Clear(ctx, attemptKey(role, ip)); err != nil {
		if !errors.Is(err, store.ErrUnavailable) {
			return err
		}
		slogx.FromContext(ctx).Warn("could not clear attempt window on shared store",
			"role", role.String(), "err", err)
	}
	return s.Fallback.Attempts().Clear(ctx, attemptKey(role, ip))
}

func (s *RateLimitService) retryOnFallback(
	ctx context.Context,
	role domain.Role,
	cause error,
	op func(store.Store) (RateStatus, error),
) (RateStatus, error) {
	if !errors.Is(cause, store.ErrUnavailable) {
		return RateStatus{}, cause
	}
	if s.Policy.FailClosed(role) {
		return RateStatus{}, fmt.Errorf("%w: rate limiter for %s: %v", ErrStoreUnavailable, role, cause)
	}

	slogx.FromContext(ctx).Warn("rate limiter store unavailable, using in-memory window",
		"role", role.String(), "err", cause)
	return op(s.Fallback)
}

func status(count int64) RateStatus {
	remaining := int64(RateLimitThreshold) - count
	if remaining < 0 {
		remaining = 0
	}
	return RateStatus{Allowed: count < RateLimitThreshold, Remaining: remaining}
}
