// Package tokenstore persists the client's single session token. Two variants
// exist behind Store: PlainStore over browser-style local storage and
// EncryptedStore over an encrypted keystore. Open picks one per platform.
package tokenstore

import (
	"context"
	"errors"
)

// TokenKey is the storage key under which the token is kept.
const TokenKey = "jwt_token"

var (
	// ErrNotFound is returned by a Keystore when the key holds no value.
	ErrNotFound = errors.New("key not found")
	// ErrUnavailable is returned by a Keystore that cannot be reached.
	ErrUnavailable = errors.New("keystore unavailable")
)

// Store is the capability surface shared by both variants. Every write must
// be awaited before the token is treated as stored.
type Store interface {
	SetToken(ctx context.Context, token string) error
	// GetToken reports ok=false when no token is stored.
	GetToken(ctx context.Context) (token string, ok bool, err error)
	RemoveToken(ctx context.Context) error
	// Clear removes every key managed by the underlying storage.
	Clear(ctx context.Context) error
	// HasToken is true iff a non-empty token is stored.
	HasToken(ctx context.Context) (bool, error)
}

func hasToken(ctx context.Context, s Store) (bool, error) {
	tok, ok, err := s.GetToken(ctx)
	if err != nil {
		return false, err
	}
	return ok && tok != "", nil
}
