package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwtdemo/auth-system/internal/core/domain"
)

// UserRepository keeps one JSON document per account.
// Key format: user:email:<email>
// Create relies on SETNX, so of two concurrent registrations for the same
// email exactly one key write succeeds.
type UserRepository struct {
	client *redis.Client
}

func NewUserRepository(client *redis.Client) *UserRepository {
	return &UserRepository{client: client}
}

type redisUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	CreatedAt    int64  `json:"created_at"`
}

func (r *UserRepository) Create(ctx context.Context, email, passwordHash string) (*domain.User, error) {
	now := time.Now().UTC()
	doc := redisUser{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now.Unix(),
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.key(email), payload, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	if !ok {
		return nil, domain.ErrDuplicateEmail
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	payload, err := r.client.Get(ctx, r.key(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	var doc redisUser
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", email, err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *UserRepository) key(email string) string {
	return "user:email:" + email
}

func (u redisUser) toDomain() *domain.User {
	return &domain.User{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    time.Unix(u.CreatedAt, 0).UTC(),
	}
}
