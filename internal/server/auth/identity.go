package auth

import (
	"context"
	"slices"
	"time"
)

// Identity is the authenticated caller of a single request.
type Identity struct {
	Subject   string
	Email     string
	Roles     []string
	TokenID   string
	ExpiresAt time.Time

	claims *Claims
}

func identityFromClaims(c *Claims) *Identity {
	id := &Identity{
		Subject: c.Subject,
		Email:   c.Email,
		Roles:   slices.Clone(c.Roles),
		TokenID: c.ID,
		claims:  c,
	}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id
}

func (i *Identity) HasRole(role string) bool {
	return i != nil && slices.Contains(i.Roles, role)
}

// Claims returns the validated token claims the identity was built from.
func (i *Identity) Claims() *Claims {
	if i == nil {
		return nil
	}
	return i.claims
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the caller, or nil and false for anonymous
// requests.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok && id != nil
}
