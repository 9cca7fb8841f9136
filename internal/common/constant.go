// Package common contains shared constants and sentinel errors used across
// the task manager components.
package common

// AuthorizationHeaderName is the HTTP header (and lower-cased gRPC metadata
// key) carrying the bearer token on inbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the authorization scheme expected in AuthorizationHeaderName.
const BearerScheme = "Bearer"

// TotalCountHeaderName is set on list responses.
const TotalCountHeaderName = "X-Total-Count"

// RequestIDHeaderName correlates a request with its log lines. Inbound values
// are kept, otherwise the server generates one and echoes it back.
const RequestIDHeaderName = "X-Request-ID"
