package tokenstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/jwtdemo/auth-system/internal/client/config"
	"github.com/jwtdemo/auth-system/internal/client/platform"
)

const dbFile = "client.db"

// Open returns the Store variant for p, backed by the database under
// cfg.DataDir. This is the only place the variant is chosen. The returned
// close function releases the database.
func Open(ctx context.Context, p platform.Platform, cfg *config.Config, logger zerolog.Logger) (Store, func() error, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := OpenDB(ctx, filepath.Join(cfg.DataDir, dbFile))
	if err != nil {
		return nil, nil, err
	}

	store, err := NewStore(ctx, p, db, []byte(cfg.DeviceKey), logger)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return store, db.Close, nil
}

// NewStore builds the variant for p over an already migrated database.
func NewStore(ctx context.Context, p platform.Platform, db *sql.DB, deviceKey []byte, logger zerolog.Logger) (Store, error) {
	if !p.IsNative() {
		return NewPlainStore(NewSQLiteLocalStorage(db)), nil
	}
	ks, err := NewSealedKeystore(ctx, db, deviceKey)
	if err != nil {
		return nil, err
	}
	return NewEncryptedStore(ks, logger), nil
}
