package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost trades hashing latency for resistance to offline cracking.
const bcryptCost = 12

// MinPasswordLength is enforced at hash time as a backstop behind the
// request validators.
const MinPasswordLength = 8

var (
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordMismatch = errors.New("password does not match")
)

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// VerifyPassword compares a stored hash against a login attempt. A wrong
// password yields ErrPasswordMismatch; any other bcrypt failure (malformed
// hash, for one) passes through unchanged.
func VerifyPassword(hashedPassword, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}
