package model

import "time"

// RefreshToken is a server-side record of an issued refresh token.
// The signed token string itself is the lookup key. A token is never
// updated in place: every state transition deletes the row (consumed on
// rotation, expired on detection, revoked by cleanup).
type RefreshToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the stored expiry has passed at the given instant.
func (t *RefreshToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
