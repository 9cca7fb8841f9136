// Package refreshtokens declares the server-side repository contract for
// managing refresh tokens in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/taskmanager/internal/server/models"
)

// Repository stores refresh tokens by digest. Callers always pass the
// opaque token the client holds; hashing happens inside the repository.
type Repository interface {
	// Create stores a new refresh token for userID with an expiry of now+validity.
	Create(ctx context.Context, userID int64, token string, validity time.Duration) error

	// Consume deletes a refresh token and returns the removed row. Only one
	// caller can consume a given token; the others get common.ErrorNotFound.
	Consume(ctx context.Context, token string) (*models.RefreshToken, error)

	// DeleteByUser removes every refresh token of userID.
	DeleteByUser(ctx context.Context, userID int64) error

	// DeleteExpired removes tokens that expired before now and reports how
	// many rows went away.
	DeleteExpired(ctx context.Context) (int64, error)
}
