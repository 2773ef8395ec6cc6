// Package memory implements the auth store with in-process maps. It is a
// single-process, development-grade degradation of the shared store: state
// is not visible to other instances and vanishes on restart. Each logical
// counter is independent, so a single mutex around the maps is all the
// synchronization required.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/soiree-app/soiree/internal/auth/domain"
	"github.com/soiree-app/soiree/internal/auth/store"
)

// Store implements store.Store with mutex-guarded maps.
type Store struct {
	mu sync.Mutex

	versions map[string]int64
	denied   map[string]time.Time // id -> entry expiry
	attempts map[string]attemptWindow
	sessions map[string]sessionEntry
	dedupe   map[string]dedupeEntry

	now func() time.Time
}

type attemptWindow struct {
	count   int64
	resetAt time.Time
}

type sessionEntry struct {
	rec       domain.SessionRecord
	expiresAt time.Time
}

type dedupeEntry struct {
	token     string
	expiresAt time.Time
}

var _ store.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		versions: make(map[string]int64),
		denied:   make(map[string]time.Time),
		attempts: make(map[string]attemptWindow),
		sessions: make(map[string]sessionEntry),
		dedupe:   make(map[string]dedupeEntry),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// NewStoreAt injects a clock, for tests that step time across windows.
func NewStoreAt(now func() time.Time) *Store {
	s := NewStore()
	s.now = now
	return s
}

func (s *Store) Versions() store.Versions     { return (*versions)(s) }
func (s *Store) Denylist() store.Denylist     { return (*denylist)(s) }
func (s *Store) Attempts() store.Attempts     { return (*attempts)(s) }
func (s *Store) Sessions() store.Sessions     { return (*sessions)(s) }
func (s *Store) LoginCache() store.LoginCache { return (*loginCache)(s) }

func (s *Store) Shared() bool { return false }

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// PurgeExpired sweeps lapsed entries out of every map. The housekeeping
// service calls this periodically; without it an idle process would hold
// expired sessions and counters forever.
func (s *Store) PurgeExpired(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0

	for id, until := range s.denied {
		if now.After(until) {
			delete(s.denied, id)
			removed++
		}
	}
	for key, w := range s.attempts {
		if now.After(w.resetAt) {
			delete(s.attempts, key)
			removed++
		}
	}
	for id, e := range s.sessions {
		if now.After(e.expiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	for key, e := range s.dedupe {
		if now.After(e.expiresAt) {
			delete(s.dedupe, key)
			removed++
		}
	}

	return removed, nil
}

type versions Store

func (v *versions) Current(_ context.Context, role string) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if n, ok := v.versions[role]; ok {
		return n, nil
	}
	v.versions[role] = 1
	return 1, nil
}

func (v *versions) Bump(_ context.Context, role string) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	n, ok := v.versions[role]
	if !ok {
		n = 1
	}
	n++
	v.versions[role] = n
	return n, nil
}

type denylist Store

func (d *denylist) Add(_ context.Context, id string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.denied[id] = d.now().Add(ttl)
	return nil
}

func (d *denylist) Contains(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	until, ok := d.denied[id]
	if !ok {
		return false, nil
	}
	if d.now().After(until) {
		delete(d.denied, id)
		return false, nil
	}
	return true, nil
}

type attempts Store

func (a *attempts) Count(_ context.Context, key string) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	w, ok := a.attempts[key]
	if !ok || a.now().After(w.resetAt) {
		return 0, nil
	}
	return w.count, nil
}

func (a *attempts) Increment(_ context.Context, key string, window time.Duration) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	w, ok := a.attempts[key]
	if !ok || now.After(w.resetAt) {
		w = attemptWindow{resetAt: now.Add(window)}
	}
	w.count++
	a.attempts[key] = w
	return w.count, nil
}

func (a *attempts) Clear(_ context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.attempts, key)
	return nil
}

type sessions Store

func (s *sessions) Put(_ context.Context, rec domain.SessionRecord, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[rec.ID] = sessionEntry{rec: rec, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *sessions) Get(_ context.Context, id string) (domain.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok || s.now().After(e.expiresAt) {
		return domain.SessionRecord{}, store.ErrNotFound
	}
	return e.rec, nil
}

func (s *sessions) MarkRevoked(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok || s.now().After(e.expiresAt) {
		return store.ErrNotFound
	}
	e.rec.Revoked = true
	s.sessions[id] = e
	return nil
}

func (s *sessions) List(_ context.Context) ([]domain.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	out := make([]domain.SessionRecord, 0, len(s.sessions))
	for _, e := range s.sessions {
		if now.After(e.expiresAt) {
			continue
		}
		out = append(out, e.rec)
	}
	return out, nil
}

type loginCache Store

func (c *loginCache) Remember(_ context.Context, key, token string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dedupe[key] = dedupeEntry{token: token, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *loginCache) Recall(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.dedupe[key]
	if !ok || c.now().After(e.expiresAt) {
		return "", store.ErrNotFound
	}
	return e.token, nil
}
