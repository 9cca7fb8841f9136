package auth

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/taskmanager/internal/common"
)

// Stage is the point a request reached in the authentication pipeline.
type Stage int

const (
	StageUnauthenticated Stage = iota
	StageTokenExtracted
	StageTokenValidated
	StageAuthorizationChecked
	StageAllowed
	StageDenied
	StageRejected
)

func (s Stage) String() string {
	switch s {
	case StageUnauthenticated:
		return "unauthenticated"
	case StageTokenExtracted:
		return "token_extracted"
	case StageTokenValidated:
		return "token_validated"
	case StageAuthorizationChecked:
		return "authorization_checked"
	case StageAllowed:
		return "allowed"
	case StageDenied:
		return "denied"
	case StageRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// StageObserver is told about every stage Gate.Authenticate passes through.
type StageObserver func(Stage)

type stageObserverKey struct{}

// WithStageObserver returns a copy of ctx that reports stage transitions to fn.
func WithStageObserver(ctx context.Context, fn StageObserver) context.Context {
	return context.WithValue(ctx, stageObserverKey{}, fn)
}

func observe(ctx context.Context, s Stage) Stage {
	if fn, ok := ctx.Value(stageObserverKey{}).(StageObserver); ok && fn != nil {
		fn(s)
	}
	return s
}

// TokenValidator is implemented by TokenManager.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (*Claims, error)
}

// Gate turns an Authorization header value into an Identity.
type Gate struct {
	validator TokenValidator
}

func NewGate(v TokenValidator) *Gate {
	return &Gate{validator: v}
}

// Authenticate returns a nil identity and StageUnauthenticated when header
// is empty. Any header that does not carry a valid bearer token is rejected.
func (g *Gate) Authenticate(ctx context.Context, header string) (*Identity, Stage, error) {
	if header == "" {
		return nil, observe(ctx, StageUnauthenticated), nil
	}

	token, err := BearerToken(header)
	if err != nil {
		return nil, observe(ctx, StageRejected), err
	}
	observe(ctx, StageTokenExtracted)

	claims, err := g.validator.Validate(ctx, token)
	if err != nil {
		return nil, observe(ctx, StageRejected), err
	}

	return identityFromClaims(claims), observe(ctx, StageTokenValidated), nil
}

// BearerToken extracts the credentials from "Bearer <token>". The scheme is
// matched case-insensitively.
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", common.ErrTokenMalformed
	}
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", common.ErrTokenMalformed
	}
	return token, nil
}
