package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/jwtdemo/auth-system/internal/core/domain"
	"github.com/jwtdemo/auth-system/internal/core/ports"
	"github.com/jwtdemo/auth-system/internal/pkg/password"
)

const (
	msgInvalidEmail     = "Invalid email format"
	msgPasswordTooShort = "Password must be at least 6 characters long"
	msgPasswordRequired = "Password is required"
	msgPasswordTooLong  = "Password must be at most 72 bytes long"
)

// timingPassword is hashed once to give unknown-email logins a digest to
// compare against.
const timingPassword = "unknown-account-placeholder"

// AuthService implements registration, login and the profile lookup behind
// the session guard.
type AuthService struct {
	repo     ports.UserRepository
	hasher   ports.PasswordHasher
	codec    ports.TokenCodec
	validate *validator.Validate
	logger   zerolog.Logger

	dummyOnce   sync.Once
	dummyDigest string
}

func NewAuthService(repo ports.UserRepository, hasher ports.PasswordHasher, codec ports.TokenCodec, logger zerolog.Logger) *AuthService {
	return &AuthService{
		repo:     repo,
		hasher:   hasher,
		codec:    codec,
		validate: validator.New(),
		logger:   logger,
	}
}

// Register creates an account. The lookup before hashing only saves bcrypt
// work; the repository's uniqueness constraint decides races.
func (s *AuthService) Register(ctx context.Context, email, pass string) (domain.UserSummary, error) {
	if err := s.validateEmail(email); err != nil {
		return domain.UserSummary{}, err
	}
	if utf8.RuneCountInString(pass) < password.MinLength {
		return domain.UserSummary{}, domain.NewValidationError(msgPasswordTooShort)
	}
	if len(pass) > password.MaxBytes {
		return domain.UserSummary{}, domain.NewValidationError(msgPasswordTooLong)
	}

	_, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.UserSummary{}, domain.ErrDuplicateEmail
	case !errors.Is(err, domain.ErrUserNotFound):
		return domain.UserSummary{}, fmt.Errorf("lookup user: %w", err)
	}

	digest, err := s.hasher.Hash(pass)
	switch {
	case errors.Is(err, password.ErrTooLong):
		return domain.UserSummary{}, domain.NewValidationError(msgPasswordTooLong)
	case errors.Is(err, password.ErrTooShort):
		return domain.UserSummary{}, domain.NewValidationError(msgPasswordTooShort)
	case err != nil:
		return domain.UserSummary{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, email, digest)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			s.logger.Info().Msg("concurrent registration lost uniqueness race")
			return domain.UserSummary{}, domain.ErrDuplicateEmail
		}
		return domain.UserSummary{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user registered")
	return user.Summary(), nil
}

// Login returns domain.ErrInvalidCredentials both for unknown emails and for
// wrong passwords. Both paths run one digest comparison.
func (s *AuthService) Login(ctx context.Context, email, pass string) (*ports.LoginResult, error) {
	if err := s.validateEmail(email); err != nil {
		return nil, err
	}
	if pass == "" {
		return nil, domain.NewValidationError(msgPasswordRequired)
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.Verify(pass, s.placeholderDigest())
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !s.hasher.Verify(pass, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	tok, err := s.codec.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Debug().Str("user_id", user.ID).Msg("login succeeded")
	return &ports.LoginResult{Token: tok, User: user.Summary()}, nil
}

// Profile resolves the account behind verified claims. A user removed after
// the token was issued yields domain.ErrUserNotFound for this call only.
func (s *AuthService) Profile(ctx context.Context, claims domain.Claims) (domain.UserSummary, error) {
	user, err := s.repo.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.UserSummary{}, domain.ErrUserNotFound
		}
		return domain.UserSummary{}, fmt.Errorf("lookup user: %w", err)
	}
	return user.Summary(), nil
}

func (s *AuthService) placeholderDigest() string {
	s.dummyOnce.Do(func() {
		digest, err := s.hasher.Hash(timingPassword)
		if err != nil {
			s.logger.Warn().Err(err).Msg("failed to prepare placeholder digest")
			return
		}
		s.dummyDigest = digest
	})
	return s.dummyDigest
}

func (s *AuthService) validateEmail(email string) error {
	if err := s.validate.Var(email, "required,email"); err != nil {
		return domain.NewValidationError(msgInvalidEmail)
	}
	return nil
}
