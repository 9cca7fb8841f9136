package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInUse         = errors.New("referenced by other records")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrValidation     = errors.New("validation error")

	// Credential errors. ErrInvalidCredentials is deliberately generic so a
	// login failure does not reveal whether the account exists.
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrCorruptCredential  = errors.New("corrupt credential")

	// Auth errors (invalid or malformed token). All of them wrap
	// ErrInvalidToken so transports can treat them as one class.
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidSignature = wrapInvalid("invalid token signature")
	ErrTokenMalformed   = wrapInvalid("malformed token")
	ErrTokenRevoked     = wrapInvalid("token revoked")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)

type invalidTokenError struct{ msg string }

func (e *invalidTokenError) Error() string { return e.msg }

func (e *invalidTokenError) Unwrap() error { return ErrInvalidToken }

func wrapInvalid(msg string) error { return &invalidTokenError{msg: msg} }
