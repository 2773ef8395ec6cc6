package domain

import (
	"errors"
	"time"
)

// Role is a privilege class backed by one shared secret. There are no user
// accounts: everyone holding a role's secret is that role.
type Role string

const (
	RoleStaff  Role = "staff"
	RoleAdmin  Role = "admin"
	RoleUpload Role = "upload"

	// RoleCron is secret-only: verified by direct comparison, never by token.
	RoleCron Role = "cron"
)

// ErrUnknownRole reports a role outside the fixed enumeration.
var ErrUnknownRole = errors.New("unknown_role")

// TokenRoles are the roles that receive signed bearer tokens.
func TokenRoles() []Role {
	return []Role{RoleStaff, RoleAdmin, RoleUpload}
}

// ParseTokenRole validates a role string from a request path.
func ParseTokenRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStaff, RoleAdmin, RoleUpload:
		return Role(s), nil
	}
	return "", ErrUnknownRole
}

// IsTokenRole reports whether the role is issued bearer tokens.
func (r Role) IsTokenRole() bool {
	return r == RoleStaff || r == RoleAdmin || r == RoleUpload
}

// TokenTTL is the role-specific token lifetime. Admin tokens are deliberately
// short-lived; cron has no tokens at all.
func (r Role) TokenTTL() time.Duration {
	switch r {
	case RoleStaff:
		return 24 * time.Hour
	case RoleAdmin:
		return time.Hour
	case RoleUpload:
		return 12 * time.Hour
	default:
		return 0
	}
}

// Satisfies reports whether a credential for r is accepted where required is
// needed. Admin is accepted wherever staff or upload is required, never the
// other way around. Cron is independent of the token roles.
func (r Role) Satisfies(required Role) bool {
	if r == required {
		return true
	}
	return r == RoleAdmin && (required == RoleStaff || required == RoleUpload)
}

// Accepting widens a set of required roles into the set of token roles whose
// credentials satisfy at least one of them.
func Accepting(required ...Role) []Role {
	var out []Role
	for _, candidate := range TokenRoles() {
		for _, req := range required {
			if candidate.Satisfies(req) {
				out = append(out, candidate)
				break
			}
		}
	}
	return out
}

func (r Role) String() string { return string(r) }
