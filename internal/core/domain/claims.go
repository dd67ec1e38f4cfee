package domain

import "time"

// TokenTTL is the fixed validity window of an issued token.
const TokenTTL = 24 * time.Hour

// Claims is the verified identity carried by a token. Values of this type are
// only produced by a successful signature check.
type Claims struct {
	UserID    string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
