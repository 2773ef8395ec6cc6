package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for hashing shared secrets at rest. These match the
// OWASP minimum recommendation for argon2id.
const (
	argonMemory      = 19 * 1024
	argonIterations  = 2
	argonParallelism = 1
	argonSaltLength  = 16
	argonKeyLength   = 32
)

// ErrSecretMismatch is returned when a supplied secret does not match.
var ErrSecretMismatch = errors.New("cryptox: secret mismatch")

// HashSecret produces a PHC-format argon2id string suitable for storing a
// role secret in configuration instead of the plaintext value.
func HashSecret(secret string) (string, error) {
	salt, err := randomBytes(argonSaltLength)
	if err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(secret), salt, argonIterations, argonMemory, argonParallelism, argonKeyLength)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		argonMemory,
		argonIterations,
		argonParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// IsPHCHash reports whether the configured value looks like a PHC argon2id
// string rather than a plaintext secret.
func IsPHCHash(s string) bool {
	return strings.HasPrefix(s, "$argon2id$")
}

// VerifySecret compares a supplied secret against the configured value. The
// configured value is either plaintext (compared in constant time) or a PHC
// argon2id string produced by HashSecret. Returns ErrSecretMismatch on any
// mismatch so callers cannot distinguish malformed hashes from wrong secrets.
func VerifySecret(supplied, configured string) error {
	if IsPHCHash(configured) {
		return verifyPHC(supplied, configured)
	}

	if subtle.ConstantTimeCompare([]byte(supplied), []byte(configured)) != 1 {
		return ErrSecretMismatch
	}
	return nil
}

func verifyPHC(supplied, encoded string) error {
	// PHC format: $argon2id$v=19$m=X,t=Y,p=Z$salt$hash
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" || parts[2] != "v=19" {
		return ErrSecretMismatch
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return ErrSecretMismatch
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return ErrSecretMismatch
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return ErrSecretMismatch
	}

	got := argon2.IDKey([]byte(supplied), salt, iters, mem, par, uint32(len(want)))
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrSecretMismatch
	}
	return nil
}
