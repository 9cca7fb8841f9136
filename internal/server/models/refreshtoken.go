package models

import "time"

// RefreshToken is a stored refresh token. Only the digest of the opaque
// token handed to the client is persisted.
type RefreshToken struct {
	ID        int64
	UserID    int64
	TokenHash string
	Expires   time.Time
	CreatedAt time.Time
}

// Expired reports whether the token can no longer be exchanged at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !t.Expires.After(now)
}
