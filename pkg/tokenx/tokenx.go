// Package tokenx signs and verifies the compact bearer tokens used by the
// auth service: three base64url segments (header, payload, signature) with an
// HMAC-SHA256 signature over "header.payload". Signature comparison is
// length-checked and constant-time.
package tokenx

import (
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/soiree-app/soiree/pkg/idx"
)

// MinKeyLength is the minimum signing key length. Below this both signing and
// verification fail closed.
const MinKeyLength = 32

var (
	ErrWeakKey    = errors.New("tokenx: signing key missing or too weak")
	ErrMalformed  = errors.New("tokenx: malformed token")
	ErrInvalidSig = errors.New("tokenx: invalid signature")
	ErrExpired    = errors.New("tokenx: token expired")
	ErrRole       = errors.New("tokenx: role not accepted")
)

// Claims are the payload of a role bearer token.
type Claims struct {
	jwt.RegisteredClaims

	// Role the token was issued for.
	Role string `json:"role"`

	// Ver is a snapshot of the role's token version at issuance. A version
	// bump invalidates every token carrying the old value.
	Ver int64 `json:"ver"`
}

// Codec signs and verifies tokens with a single shared HMAC key.
type Codec struct {
	key []byte
}

// New builds a Codec, rejecting keys under MinKeyLength.
func New(key string) (*Codec, error) {
	if len(key) < MinKeyLength {
		return nil, ErrWeakKey
	}
	return &Codec{key: []byte(key)}, nil
}

// Sign issues a token for role with the given version snapshot and TTL.
func (c *Codec) Sign(role string, version int64, ttl time.Duration) (string, Claims, error) {
	return c.SignAt(role, version, ttl, time.Now().UTC())
}

// SignAt is Sign with an explicit issuance time, for tests and clock
// injection.
func (c *Codec) SignAt(role string, version int64, ttl time.Duration, now time.Time) (string, Claims, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        idx.NewAt(now).String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
		Ver:  version,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", Claims{}, err
	}
	return signed, claims, nil
}

// Verify checks the token's structure, signature and expiry, then confirms
// the embedded role is among accepted. Expiry is a hard boundary with no
// leeway. An empty accepted set means any role is acceptable.
//
// Version and denylist validity are the caller's concern: a structurally
// valid token is not yet an authorized one.
func (c *Codec) Verify(token string, accepted []string) (Claims, error) {
	var claims Claims

	parsed, err := jwt.ParseWithClaims(token, &claims, c.keyfunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, mapParseError(err)
	}
	if !parsed.Valid {
		return Claims{}, ErrMalformed
	}

	if len(accepted) > 0 && !slices.Contains(accepted, claims.Role) {
		return Claims{}, ErrRole
	}

	return claims, nil
}

func (c *Codec) keyfunc(*jwt.Token) (any, error) {
	return c.key, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	default:
		// Wrong segment count, bad base64, malformed JSON, missing exp:
		// all collapse to malformed. No partial parsing is attempted.
		return ErrMalformed
	}
}
