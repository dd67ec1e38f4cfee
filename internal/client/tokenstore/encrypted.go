package tokenstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Keystore is an encrypted single-value-per-key secret store. Get returns
// ErrNotFound for a missing key and ErrUnavailable when the backend cannot
// serve the request.
type Keystore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// EncryptedStore keeps the token in a Keystore. Reads and removals treat a
// missing key and an unreachable backend alike, as an empty store. Writes
// always surface their error.
type EncryptedStore struct {
	keystore Keystore
	logger   zerolog.Logger
}

func NewEncryptedStore(ks Keystore, logger zerolog.Logger) *EncryptedStore {
	return &EncryptedStore{keystore: ks, logger: logger}
}

func (s *EncryptedStore) SetToken(ctx context.Context, token string) error {
	if err := s.keystore.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

func (s *EncryptedStore) GetToken(ctx context.Context) (string, bool, error) {
	tok, err := s.keystore.Get(ctx, TokenKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Debug().Err(err).Msg("keystore read failed, treating as empty")
		}
		return "", false, nil
	}
	return tok, true, nil
}

func (s *EncryptedStore) RemoveToken(ctx context.Context) error {
	if err := s.keystore.Remove(ctx, TokenKey); err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Warn().Err(err).Msg("error removing token from keystore")
	}
	return nil
}

func (s *EncryptedStore) Clear(ctx context.Context) error {
	if err := s.keystore.Clear(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("error clearing keystore")
	}
	return nil
}

func (s *EncryptedStore) HasToken(ctx context.Context) (bool, error) {
	return hasToken(ctx, s)
}
