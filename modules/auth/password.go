package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// HashPassword hashes a plaintext password with bcrypt at the given cost.
// Pass 0 to use bcrypt's default cost.
func HashPassword(password string, cost int) ([]byte, error) {
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: at least %d characters", ErrWeakPassword, minPasswordLength)
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// VerifyPassword compares a plaintext password against the stored hash.
// Any mismatch collapses to ErrInvalidCredentials so callers cannot leak
// whether the account exists.
func VerifyPassword(hash []byte, password string) error {
	err := bcrypt.CompareHashAndPassword(hash, []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("verify password: %w", err)
	}
	return nil
}
