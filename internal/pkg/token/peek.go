package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DisplayClaims is what a client reads out of a token it holds, without
// verifying it. It is not proof of anything.
type DisplayClaims struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// Expired reports whether the token's advertised expiry has passed.
func (d DisplayClaims) Expired(now time.Time) bool {
	return d.ExpiresAt.IsZero() || !now.Before(d.ExpiresAt)
}

// Peek decodes the payload segment of a compact JWT for display purposes.
// The signature is not checked.
func Peek(tokenString string) (DisplayClaims, error) {
	var cl claims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &cl); err != nil {
		return DisplayClaims{}, fmt.Errorf("decode token payload: %w", err)
	}
	out := DisplayClaims{UserID: cl.UserID, Email: cl.Email}
	if cl.ExpiresAt != nil {
		out.ExpiresAt = cl.ExpiresAt.Time
	}
	return out, nil
}
