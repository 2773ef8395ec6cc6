package domain

import "time"

// SessionStatus is the derived display state of a tracked session. It is
// computed at list time, never stored.
type SessionStatus string

const (
	SessionActive      SessionStatus = "active"
	SessionExpired     SessionStatus = "expired"
	SessionRevoked     SessionStatus = "revoked"
	SessionInvalidated SessionStatus = "invalidated" // version bump outdated it
)

// SessionRecord mirrors an issued token's metadata for administrative
// listing and single-session revocation. It is best-effort bookkeeping: its
// absence never affects whether the token itself is valid.
type SessionRecord struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Version   int64     `json:"version"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	Revoked   bool      `json:"revoked"`
}

// Status derives the display state by comparing the record against the
// current time and the role's current token version.
func (r SessionRecord) Status(now time.Time, currentVersion int64) SessionStatus {
	switch {
	case r.Revoked:
		return SessionRevoked
	case now.After(r.ExpiresAt):
		return SessionExpired
	case r.Version != currentVersion:
		return SessionInvalidated
	default:
		return SessionActive
	}
}
