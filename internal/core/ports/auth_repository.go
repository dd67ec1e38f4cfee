package ports

import (
	"context"

	"github.com/jwtdemo/auth-system/internal/core/domain"
)

// UserRepository is the credential store. Implementations enforce email
// uniqueness themselves: Create must return domain.ErrDuplicateEmail when a
// record with the same email exists, even under concurrent calls.
type UserRepository interface {
	// FindByEmail returns domain.ErrUserNotFound when no record matches.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, email, passwordHash string) (*domain.User, error)
	Ping(ctx context.Context) error
}
