package domain

import (
	"errors"
	"strings"

	"github.com/soiree-app/soiree/pkg/cryptox"
)

// Minimum strength bars for configured secrets. A secret below the bar makes
// the role's verify and issue paths return a configuration error, it never
// silently degrades to accepting the weak value.
const (
	MinSigningKeyLength = 32
	MinPINLength        = 4
	MinPasswordLength   = 8
	MinCronSecretLength = 16
)

var (
	ErrSecretNotConfigured = errors.New("secret_not_configured")
	ErrSecretTooWeak       = errors.New("secret_too_weak")
)

// commonPINs and commonPasswords are small denylists of values that clear the
// length bar but offer no protection.
var commonPINs = map[string]struct{}{
	"0000": {}, "1111": {}, "1234": {}, "4321": {}, "1212": {},
	"2580": {}, "0852": {}, "6969": {}, "4242": {}, "2222": {},
}

var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "12345678": {}, "qwertyui": {},
	"letmein1": {}, "changeme": {}, "admin123": {}, "iloveyou": {},
}

// Secrets holds the validated credential material for every role plus the
// token signing key. It is populated once from configuration at startup and
// injected into the services that need it.
type Secrets struct {
	SigningKey string

	Staff  string // numeric PIN
	Admin  string // password, plaintext or argon2id PHC hash
	Upload string // numeric PIN
	Cron   string // header secret, compared directly
}

// ForRole returns the configured secret for a role after checking it against
// the role's strength bar. The not-configured and too-weak cases stay
// distinct so operators can tell which one they are looking at.
func (s Secrets) ForRole(r Role) (string, error) {
	switch r {
	case RoleStaff:
		return s.Staff, validatePIN(s.Staff)
	case RoleUpload:
		return s.Upload, validatePIN(s.Upload)
	case RoleAdmin:
		return s.Admin, validatePassword(s.Admin)
	case RoleCron:
		return s.Cron, validateCron(s.Cron)
	}
	return "", ErrUnknownRole
}

// ValidateSigningKey enforces the minimum key length shared by all token
// signing paths.
func (s Secrets) ValidateSigningKey() error {
	if s.SigningKey == "" {
		return ErrSecretNotConfigured
	}
	if len(s.SigningKey) < MinSigningKeyLength {
		return ErrSecretTooWeak
	}
	return nil
}

func validatePIN(pin string) error {
	if pin == "" {
		return ErrSecretNotConfigured
	}
	if len(pin) < MinPINLength {
		return ErrSecretTooWeak
	}
	if _, common := commonPINs[pin]; common {
		return ErrSecretTooWeak
	}
	return nil
}

func validatePassword(pw string) error {
	if pw == "" {
		return ErrSecretNotConfigured
	}
	// Hashed secrets carry their own entropy; the bar applies to plaintext.
	if cryptox.IsPHCHash(pw) {
		return nil
	}
	if len(pw) < MinPasswordLength {
		return ErrSecretTooWeak
	}
	if _, common := commonPasswords[strings.ToLower(pw)]; common {
		return ErrSecretTooWeak
	}
	return nil
}

func validateCron(secret string) error {
	if secret == "" {
		return ErrSecretNotConfigured
	}
	if len(secret) < MinCronSecretLength {
		return ErrSecretTooWeak
	}
	return nil
}
