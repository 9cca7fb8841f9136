package grpc

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/dmitrijs2005/taskmanager/internal/logging"
	"github.com/dmitrijs2005/taskmanager/internal/server/auth"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// gRPC metadata keys are lower case.
var (
	authorizationKey = strings.ToLower(common.AuthorizationHeaderName)
	requestIDKey     = strings.ToLower(common.RequestIDHeaderName)
)

const maxRequestIDLen = 128

// methodRequests maps RPCs to policy requests. Other methods fall back to an
// "rpc" resource that only wildcard roles are granted.
var methodRequests = map[string]auth.Request{
	"/grpc.health.v1.Health/Check": {Resource: "health", Action: auth.ActionRead},
	"/grpc.health.v1.Health/List":  {Resource: "health", Action: auth.ActionRead},
	"/grpc.health.v1.Health/Watch": {Resource: "health", Action: auth.ActionRead},
}

func requestFor(fullMethod string) auth.Request {
	if r, ok := methodRequests[fullMethod]; ok {
		return r
	}
	return auth.Request{Resource: "rpc", Action: fullMethod}
}

// authorize authenticates the caller from incoming metadata and checks the
// policy. The returned context carries the identity.
func (s *GRPCServer) authorize(ctx context.Context, fullMethod string) (context.Context, error) {
	id, _, err := s.gate.Authenticate(ctx, incoming(ctx, authorizationKey))
	if err != nil {
		return nil, toStatus(err)
	}
	if err := s.policy.Authorize(ctx, id, requestFor(fullMethod)); err != nil {
		return nil, toStatus(err)
	}
	if id != nil {
		ctx = auth.WithIdentity(ctx, id)
	}
	return ctx, nil
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	ctx, err := s.authorize(ctx, info.FullMethod)
	if err != nil {
		return nil, err
	}
	return handler(ctx, req)
}

type identityStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *identityStream) Context() context.Context { return s.ctx }

func (s *GRPCServer) accessTokenStreamInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	ctx, err := s.authorize(ss.Context(), info.FullMethod)
	if err != nil {
		return err
	}
	return handler(srv, &identityStream{ServerStream: ss, ctx: ctx})
}

func incoming(ctx context.Context, key string) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(key); len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// withRequestID attaches the caller's x-request-id, or a new one, to ctx for
// logging and sends it back in the response header.
func withRequestID(ctx context.Context) context.Context {
	rid := incoming(ctx, requestIDKey)
	if rid == "" || len(rid) > maxRequestIDLen {
		rid = uuid.NewString()
	}
	// Fails only outside a server stream, e.g. direct calls in tests.
	_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDKey, rid))
	return logging.ContextWith(ctx, "request_id", rid)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	ctx = withRequestID(ctx)
	resp, err := handler(ctx, req)
	s.logger.Info(ctx, "rpc", "method", info.FullMethod, "code", status.Code(err).String(), "latency", time.Since(start))
	return resp, err
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
