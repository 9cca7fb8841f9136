// Package auth issues and validates bearer tokens, authenticates inbound
// requests and decides whether an identity may perform an action.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Payload carries the application claims stored next to the registered ones.
type Payload struct {
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// Claims is the full claim set of an access token.
type Claims struct {
	jwt.RegisteredClaims
	Payload
}

// TokenManager signs and verifies access tokens with the key held by a
// Keyring. It is safe for concurrent use.
type TokenManager struct {
	keys    *Keyring
	issuer  string
	revoker Revoker
	now     func() time.Time
}

type Option func(*TokenManager)

// WithIssuer stamps and requires the iss claim.
func WithIssuer(iss string) Option {
	return func(m *TokenManager) { m.issuer = iss }
}

// WithRevoker enables jti revocation checks.
func WithRevoker(r Revoker) Option {
	return func(m *TokenManager) { m.revoker = r }
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *TokenManager) { m.now = now }
}

func NewTokenManager(keys *Keyring, opts ...Option) *TokenManager {
	m := &TokenManager{keys: keys, now: time.Now}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Issue signs a token for subject valid for ttl. A non-positive ttl produces
// a token that is already expired.
func (m *TokenManager) Issue(subject string, p Payload, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("%w: empty subject", common.ErrValidation)
	}
	k := m.keys.Current()
	if k == nil || k.sign == nil {
		return "", errors.New("issue token: no signing key")
	}

	now := m.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Payload: p,
	}

	token := jwt.NewWithClaims(k.Method, claims)
	if k.ID != "" {
		token.Header["kid"] = k.ID
	}

	tokenString, err := token.SignedString(k.sign)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

// Validate parses tokenString and returns its claims. Failures are reported
// in order: structure, signature, expiry, claim shape, revocation.
func (m *TokenManager) Validate(ctx context.Context, tokenString string) (*Claims, error) {
	k := m.keys.Current()
	if k == nil {
		return nil, errors.New("validate token: no signing key")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{k.Method.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return k.verify, nil
	}, opts...)
	if err != nil {
		// A resolved method means header and claims decoded; only the
		// signature segment can have failed to decode.
		if errors.Is(err, jwt.ErrTokenMalformed) && tok != nil && tok.Method != nil {
			return nil, common.ErrInvalidSignature
		}
		return nil, classify(err)
	}

	if claims.Subject == "" {
		return nil, common.ErrTokenMalformed
	}

	if m.revoker != nil && claims.ID != "" {
		revoked, err := m.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("revocation lookup: %w", err)
		}
		if revoked {
			return nil, common.ErrTokenRevoked
		}
	}

	return claims, nil
}

// Revoke blocks the token's jti until it would have expired anyway.
func (m *TokenManager) Revoke(ctx context.Context, c *Claims) error {
	if m.revoker == nil || c == nil || c.ID == "" || c.ExpiresAt == nil {
		return nil
	}
	return m.revoker.Revoke(ctx, c.ID, c.ExpiresAt.Time)
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return common.ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return common.ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return common.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return common.ErrTokenMalformed
	default:
		return fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
}
