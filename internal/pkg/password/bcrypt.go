// Package password hashes and verifies account passwords with bcrypt.
package password

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used in production (2^10 rounds).
const DefaultCost = 10

// MinLength is the shortest password accepted for hashing, in characters.
const MinLength = 6

// MaxBytes is the longest password bcrypt can digest, in bytes of UTF-8.
const MaxBytes = 72

var (
	ErrTooShort = errors.New("password too short")
	ErrTooLong  = errors.New("password too long")
)

// BcryptHasher implements ports.PasswordHasher. Each Hash call embeds a fresh
// random salt in the digest, so hashing the same plaintext twice yields
// different digests.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher with the given cost. Values outside the
// range bcrypt accepts fall back to DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if utf8.RuneCountInString(plaintext) < MinLength {
		return "", fmt.Errorf("%w: fewer than %d characters", ErrTooShort, MinLength)
	}
	if len(plaintext) > MaxBytes {
		return "", fmt.Errorf("%w: more than %d bytes", ErrTooLong, MaxBytes)
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: %w", ErrTooLong, err)
	}
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. bcrypt compares in
// constant time; any malformed digest simply fails.
func (h *BcryptHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
