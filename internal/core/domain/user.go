package domain

import "time"

// User models a registered account. It is owned by the credential store and
// never mutated after creation.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// UserSummary is the public projection of a User returned to clients.
type UserSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Summary strips the credential material from u.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email}
}
