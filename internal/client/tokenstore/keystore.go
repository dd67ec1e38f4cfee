package tokenstore

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const saltKey = "kdf_salt"

// DeriveKey stretches device key material into a 256-bit AES key.
func DeriveKey(deviceKey, salt []byte) []byte {
	return argon2.IDKey(deviceKey, salt, 1, 64*1024, 4, 32)
}

// SealedKeystore is a Keystore backed by a SQLite table whose values are
// sealed with AES-GCM under a key derived from the device key. Without a
// device key every operation fails with ErrUnavailable.
type SealedKeystore struct {
	db   *sql.DB
	aead cipher.AEAD
}

func NewSealedKeystore(ctx context.Context, db *sql.DB, deviceKey []byte) (*SealedKeystore, error) {
	ks := &SealedKeystore{db: db}
	if len(deviceKey) == 0 {
		return ks, nil
	}

	salt, err := ks.salt(ctx)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(DeriveKey(deviceKey, salt))
	if err != nil {
		return nil, fmt.Errorf("keystore cipher: %w", err)
	}
	ks.aead, err = cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("keystore cipher: %w", err)
	}
	return ks, nil
}

// salt returns the per-database KDF salt, creating it on first use.
func (k *SealedKeystore) salt(ctx context.Context) ([]byte, error) {
	var salt []byte
	err := k.db.QueryRowContext(ctx, `SELECT value FROM keystore_meta WHERE key = ?`, saltKey).Scan(&salt)
	if err == nil {
		return salt, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get keystore_meta[%s]: %w", saltKey, err)
	}

	salt = make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	if _, err := k.db.ExecContext(ctx, `INSERT INTO keystore_meta (key, value) VALUES (?, ?)`, saltKey, salt); err != nil {
		return nil, fmt.Errorf("failed to set keystore_meta[%s]: %w", saltKey, err)
	}
	return salt, nil
}

func (k *SealedKeystore) Get(ctx context.Context, key string) (string, error) {
	if k.aead == nil {
		return "", ErrUnavailable
	}

	var nonce, ciphertext []byte
	err := k.db.QueryRowContext(ctx, `SELECT nonce, ciphertext FROM keystore WHERE key = ?`, key).Scan(&nonce, &ciphertext)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: failed to get keystore[%s]: %v", ErrUnavailable, key, err)
	}

	plaintext, err := k.aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return "", fmt.Errorf("%w: cannot open keystore[%s]: %v", ErrUnavailable, key, err)
	}
	return string(plaintext), nil
}

func (k *SealedKeystore) Set(ctx context.Context, key, value string) error {
	if k.aead == nil {
		return ErrUnavailable
	}

	nonce := make([]byte, k.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return err
	}
	ciphertext := k.aead.Seal(nil, nonce, []byte(value), []byte(key))

	_, err := k.db.ExecContext(ctx, `
		INSERT INTO keystore (key, nonce, ciphertext) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET nonce = excluded.nonce, ciphertext = excluded.ciphertext
	`, key, nonce, ciphertext)
	if err != nil {
		return fmt.Errorf("failed to set keystore[%s]: %w", key, err)
	}
	return nil
}

func (k *SealedKeystore) Remove(ctx context.Context, key string) error {
	if k.aead == nil {
		return ErrUnavailable
	}
	res, err := k.db.ExecContext(ctx, `DELETE FROM keystore WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete keystore[%s]: %w", key, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (k *SealedKeystore) Clear(ctx context.Context) error {
	if k.aead == nil {
		return ErrUnavailable
	}
	if _, err := k.db.ExecContext(ctx, `DELETE FROM keystore`); err != nil {
		return fmt.Errorf("failed to clear keystore: %w", err)
	}
	return nil
}
