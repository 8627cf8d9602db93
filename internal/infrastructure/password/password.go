package password

import (
	"errors"
	"fmt"

	"essay-auth/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher hashes passwords with bcrypt. Each hash embeds its own random
// salt, so two principals with the same password never share a hash.
// Implements domain.PasswordHasher.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher with the given cost. Cost 0 uses the
// bcrypt default.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash computes a salted bcrypt hash of the password.
func (h *BcryptHasher) Hash(pw string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(pw), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Compare checks the password against a stored hash. A mismatch returns
// domain.ErrInvalidCredentials; anything else means the stored hash is not a
// bcrypt hash at all.
func (h *BcryptHasher) Compare(hash, pw string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return domain.ErrInvalidCredentials
	}
	return fmt.Errorf("failed to compare password: %w", err)
}
