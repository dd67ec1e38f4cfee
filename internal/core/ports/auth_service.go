package ports

import (
	"context"

	"github.com/jwtdemo/auth-system/internal/core/domain"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token string
	User  domain.UserSummary
}

type AuthService interface {
	Register(ctx context.Context, email, password string) (domain.UserSummary, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Profile(ctx context.Context, claims domain.Claims) (domain.UserSummary, error)
}
