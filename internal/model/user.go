// Package model defines domain entities for the application.
package model

import "time"

// MaxUsernameLength is the maximum allowed username length.
const MaxUsernameLength = 30

// User represents a registered account.
// The password hash is never serialized.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AuthContext carries the identity of an authenticated request.
type AuthContext struct {
	UserID   string
	Username string
}
