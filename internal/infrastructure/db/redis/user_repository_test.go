package redis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwtdemo/auth-system/internal/core/domain"
)

func newRepo(t *testing.T) (*UserRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewUserRepository(client), mr
}

func TestUserRepository_CreateThenFind(t *testing.T) {
	r, mr := newRepo(t)
	ctx := context.Background()

	created, err := r.Create(ctx, "alice@example.com", "hash")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.True(t, mr.Exists("user:email:alice@example.com"))

	found, err := r.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "hash", found.PasswordHash)
	assert.Equal(t, created.CreatedAt, found.CreatedAt)
}

func TestUserRepository_NotFound(t *testing.T) {
	r, _ := newRepo(t)

	_, err := r.FindByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_Duplicate(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	_, err := r.Create(ctx, "bob@example.com", "h1")
	require.NoError(t, err)
	_, err = r.Create(ctx, "bob@example.com", "h2")
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestUserRepository_ConcurrentCreate(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	var ok, dup int32
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Create(ctx, "race@example.com", "hash"); err == nil {
				atomic.AddInt32(&ok, 1)
			} else if assert.ErrorIs(t, err, domain.ErrDuplicateEmail) {
				atomic.AddInt32(&dup, 1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, ok)
	assert.EqualValues(t, 15, dup)
}

func TestUserRepository_BackendDown(t *testing.T) {
	r, mr := newRepo(t)
	mr.Close()

	_, err := r.FindByEmail(context.Background(), "alice@example.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUserNotFound)
	assert.Error(t, r.Ping(context.Background()))
}
