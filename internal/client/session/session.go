// Package session implements the client-side flows (register, login, logout,
// profile, whoami) on top of the API client and the token store. Each flow
// yields a Status for display.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/jwtdemo/auth-system/internal/client/apiclient"
	"github.com/jwtdemo/auth-system/internal/client/tokenstore"
	"github.com/jwtdemo/auth-system/internal/pkg/token"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Status is a short human-readable outcome.
type Status struct {
	Kind    Kind
	Message string
}

func (s Status) Failed() bool { return s.Kind == KindError }

func (s Status) String() string { return fmt.Sprintf("[%s] %s", s.Kind, s.Message) }

const minPasswordLength = 6

const (
	msgMissingFields    = "Please enter both email and password"
	msgPasswordTooShort = "Password must be at least 6 characters long"
	msgNetwork          = "Network error occurred. Please try again."
	msgNetworkProfile   = "Network error occurred while fetching protected data"
	msgRegistered       = "Account created successfully! You can now log in."
	msgLoggedIn         = "Authentication successful! JWT token stored securely."
	msgStoreFailed      = "Login succeeded but the token could not be stored. Please try again."
	msgLoggedOut        = "Successfully logged out. JWT token cleared from storage."
	msgNoToken          = "No authentication token found. Please log in first."
	msgCleared          = "All stored client data cleared."
	msgNotLoggedIn      = "Not logged in."
)

// API is the server surface the flows need.
type API interface {
	Register(ctx context.Context, email, password string) (*apiclient.RegisterResponse, error)
	Login(ctx context.Context, email, password string) (*apiclient.LoginResponse, error)
	Profile(ctx context.Context, token string) (*apiclient.ProfileResponse, error)
}

type Option func(*Session)

// WithClock overrides time.Now for local expiry display.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

type Session struct {
	api    API
	store  tokenstore.Store
	now    func() time.Time
	logger zerolog.Logger
}

func New(api API, store tokenstore.Store, opts ...Option) *Session {
	s := &Session{
		api:    api,
		store:  store,
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func preflight(email, password string) (Status, bool) {
	if email == "" || password == "" {
		return Status{KindError, msgMissingFields}, false
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return Status{KindError, msgPasswordTooShort}, false
	}
	return Status{}, true
}

func (s *Session) Register(ctx context.Context, email, password string) Status {
	if st, ok := preflight(email, password); !ok {
		return st
	}
	if _, err := s.api.Register(ctx, email, password); err != nil {
		return failure(err, "Registration failed", msgNetwork)
	}
	return Status{KindSuccess, msgRegistered}
}

// Login authenticates and stores the issued token. The token counts as
// stored only once the write has returned without error.
func (s *Session) Login(ctx context.Context, email, password string) Status {
	if st, ok := preflight(email, password); !ok {
		return st
	}
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		return failure(err, "Login failed", msgNetwork)
	}
	if err := s.store.SetToken(ctx, resp.Token); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist session token")
		return Status{KindError, msgStoreFailed}
	}
	return Status{KindSuccess, msgLoggedIn}
}

func (s *Session) Logout(ctx context.Context) Status {
	if err := s.store.RemoveToken(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to remove session token")
		return Status{KindError, "Could not clear the stored token."}
	}
	return Status{KindInfo, msgLoggedOut}
}

// Clear wipes everything the token store manages.
func (s *Session) Clear(ctx context.Context) Status {
	if err := s.store.Clear(ctx); err != nil {
		return Status{KindError, "Could not clear client storage."}
	}
	return Status{KindInfo, msgCleared}
}

// Profile fetches the protected resource. A 401 ends the local session.
func (s *Session) Profile(ctx context.Context) Status {
	tok, ok, err := s.store.GetToken(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to read session token")
	}
	if !ok || tok == "" {
		return Status{KindError, msgNoToken}
	}

	resp, err := s.api.Profile(ctx, tok)
	if err != nil {
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			s.Logout(ctx)
		}
		return failure(err, "Failed to fetch protected data", msgNetworkProfile)
	}

	return Status{KindSuccess, fmt.Sprintf(
		"Protected data retrieved successfully for %s. Server timestamp: %s",
		resp.User.Email, resp.Timestamp.Local().Format(time.DateTime),
	)}
}

// Whoami reports who the stored token claims to be. The claims are decoded
// without verification and only drive display; the server remains the sole
// judge of the token. An undecodable token is discarded.
func (s *Session) Whoami(ctx context.Context) Status {
	tok, ok, err := s.store.GetToken(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to read session token")
	}
	if !ok || tok == "" {
		return Status{KindInfo, msgNotLoggedIn}
	}

	claims, err := token.Peek(tok)
	if err != nil {
		if rmErr := s.store.RemoveToken(ctx); rmErr != nil {
			s.logger.Warn().Err(rmErr).Msg("failed to remove session token")
		}
		return Status{KindInfo, msgNotLoggedIn}
	}
	if claims.Expired(s.now()) {
		return Status{KindInfo, fmt.Sprintf("Session for %s has expired. Please log in again.", claims.Email)}
	}
	return Status{KindInfo, fmt.Sprintf("Logged in as %s (token expires %s)",
		claims.Email, claims.ExpiresAt.Local().Format(time.DateTime))}
}

func failure(err error, fallback, network string) Status {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return Status{KindError, apiErr.Message}
		}
		return Status{KindError, fallback}
	}
	if errors.Is(err, apiclient.ErrNetwork) {
		return Status{KindError, network}
	}
	return Status{KindError, fallback}
}
