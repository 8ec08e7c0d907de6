// Package secrets hashes and verifies account passwords.
package secrets

import (
	"golang.org/x/crypto/bcrypt"

	dErrors "github.com/estdev3690/digital-e-gram-panchayat/pkg/domain-errors"
)

const minPasswordLength = 6

// Hash derives a bcrypt hash from a plaintext password.
func Hash(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", dErrors.Newf(dErrors.CodeValidation, "password must be at least %d characters", minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	return string(hash), nil
}

// Verify reports whether the password matches the stored hash.
func Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
