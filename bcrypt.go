package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultPasswordCost is the bcrypt work factor applied when no explicit
// cost is configured.
const DefaultPasswordCost = 12

// PasswordHasher hashes and verifies passwords at a fixed bcrypt cost.
// It satisfies PasswordAuthenticator.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher at DefaultPasswordCost.
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{cost: DefaultPasswordCost}
}

// WithCost sets the bcrypt work factor. Costs outside the range bcrypt
// accepts fall back to DefaultPasswordCost.
func (h *PasswordHasher) WithCost(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultPasswordCost
	}
	h.cost = cost
	return h
}

// HashPassword generates a hash for the password. Blank passwords are
// rejected before hashing; bcrypt itself would accept them.
func (h *PasswordHasher) HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	return string(out), err
}

// ComparePasswordAndHash checks the cleartext password against the stored
// hash. A mismatch surfaces as ErrMismatchedHashAndPassword regardless of
// the cost the hash was generated with.
func (h *PasswordHasher) ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}

var _ PasswordAuthenticator = (*PasswordHasher)(nil)

var defaultPasswordHasher = NewPasswordHasher()

// HashPassword hashes with the package default cost.
func HashPassword(password string) (string, error) {
	return defaultPasswordHasher.HashPassword(password)
}

// ComparePasswordAndHash verifies against the package default hasher.
func ComparePasswordAndHash(password, hash string) error {
	return defaultPasswordHasher.ComparePasswordAndHash(password, hash)
}
