package model

import "time"

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the authenticated principal attached to a request.
type Identity struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}
