package tokenx

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/soiree-app/soiree/pkg/cryptox"
)

// ErrParentMismatch reports a step-up token presented alongside a session
// other than the one it was issued for.
var ErrParentMismatch = errors.New("tokenx: step-up parent mismatch")

// StepUpClaims are the payload of a step-up token: proof that the holder
// re-supplied the role secret during the parent session.
type StepUpClaims struct {
	jwt.RegisteredClaims

	// Parent is the id (jti) of the bearer token the step-up is bound to.
	Parent string `json:"parent"`

	// Nonce makes each issuance distinct. It is not tracked for replay; the
	// short TTL is the replay mitigation.
	Nonce string `json:"nonce"`
}

// SignStepUp mints a step-up token bound to the parent session id.
func (c *Codec) SignStepUp(parentID string, ttl time.Duration) (string, StepUpClaims, error) {
	return c.SignStepUpAt(parentID, ttl, time.Now().UTC())
}

// SignStepUpAt is SignStepUp with an explicit issuance time.
func (c *Codec) SignStepUpAt(parentID string, ttl time.Duration, now time.Time) (string, StepUpClaims, error) {
	nonce, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", StepUpClaims{}, err
	}

	claims := StepUpClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Parent: parentID,
		Nonce:  nonce,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", StepUpClaims{}, err
	}
	return signed, claims, nil
}

// VerifyStepUp checks structure, signature and TTL, then requires the token's
// parent to match the presented session id exactly. A step-up issued for
// session A is rejected alongside session B's bearer token even when both are
// otherwise valid.
func (c *Codec) VerifyStepUp(token, parentID string) (StepUpClaims, error) {
	var claims StepUpClaims

	parsed, err := jwt.ParseWithClaims(token, &claims, c.keyfunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return StepUpClaims{}, mapParseError(err)
	}
	if !parsed.Valid {
		return StepUpClaims{}, ErrMalformed
	}

	if claims.Parent == "" ||
		subtle.ConstantTimeCompare([]byte(claims.Parent), []byte(parentID)) != 1 {
		return StepUpClaims{}, ErrParentMismatch
	}

	return claims, nil
}
