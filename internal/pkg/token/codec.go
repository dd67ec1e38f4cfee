// Package token issues and verifies the HS256 JWTs used as stateless session
// credentials.
//
// Two decoding paths exist and are deliberately kept apart:
//
//   - Codec.Verify checks the signature and expiry and returns domain.Claims.
//     It is the only path that may back an authorization decision.
//   - Peek decodes the payload without any check and returns DisplayClaims,
//     for showing the logged-in email on a client.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jwtdemo/auth-system/internal/core/domain"
)

// claims is the wire form of the token payload.
type claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock replaces time.Now as the source of issue and verification time.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// WithTTL overrides domain.TokenTTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Codec) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// Codec implements ports.TokenCodec with a process-wide symmetric secret.
// It is safe for concurrent use; nothing in it changes after construction.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

func NewCodec(secret []byte, opts ...Option) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("token: signing secret is empty")
	}
	c := &Codec{
		secret: append([]byte(nil), secret...),
		ttl:    domain.TokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	return c, nil
}

// Issue signs a token for the given identity valid from now for the codec TTL.
// Times are truncated to whole seconds, the resolution of the exp claim, so a
// token issued at t is valid over [trunc(t), trunc(t)+TTL) and may lapse up
// to a second before t+TTL.
func (c *Codec) Issue(userID, email string) (string, error) {
	now := c.now().UTC().Truncate(time.Second)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	})
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify accepts a token iff its HS256 signature matches the codec secret and
// the current time is strictly before its expiry.
func (c *Codec) Verify(tokenString string) (domain.Claims, error) {
	var cl claims
	tkn, err := c.parser.ParseWithClaims(tokenString, &cl, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil || !tkn.Valid {
		return domain.Claims{}, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	out := domain.Claims{
		UserID:    cl.UserID,
		Email:     cl.Email,
		ExpiresAt: cl.ExpiresAt.Time,
	}
	if cl.IssuedAt != nil {
		out.IssuedAt = cl.IssuedAt.Time
	}
	return out, nil
}
