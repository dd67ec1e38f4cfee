package ports

import "github.com/jwtdemo/auth-system/internal/core/domain"

// PasswordHasher produces and checks salted one-way digests.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// TokenCodec issues and verifies signed, time-bounded tokens.
type TokenCodec interface {
	Issue(userID, email string) (string, error)
	// Verify returns domain.ErrInvalidToken for malformed, forged or expired tokens.
	Verify(token string) (domain.Claims, error)
}
