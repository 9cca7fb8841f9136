package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/dmitrijs2005/taskmanager/internal/logging"
	"github.com/dmitrijs2005/taskmanager/internal/server/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	stageKey        = "auth_stage"
	maxRequestIDLen = 128
)

// RequestID tags every request with the caller's X-Request-ID or a fresh
// UUID. The id is echoed in the response and attached to every log line
// written with the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(common.RequestIDHeaderName)
		if rid == "" || len(rid) > maxRequestIDLen {
			rid = uuid.NewString()
		}
		c.Header(common.RequestIDHeaderName, rid)
		c.Request = c.Request.WithContext(logging.ContextWith(c.Request.Context(), "request_id", rid))
		c.Next()
	}
}

// Authenticator is implemented by auth.Gate.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*auth.Identity, auth.Stage, error)
}

// Authenticate resolves the Authorization header into an Identity stored on
// the request context. Requests without the header continue anonymously and
// are judged by Authorize. Invalid credentials are answered with 401.
func Authenticate(a Authenticator, log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := auth.WithStageObserver(c.Request.Context(), func(s auth.Stage) { c.Set(stageKey, s) })
		id, stage, err := a.Authenticate(ctx, c.GetHeader(common.AuthorizationHeaderName))
		c.Set(stageKey, stage)
		if err != nil {
			log.Debug(c.Request.Context(), "token rejected", "path", c.Request.URL.Path, "error", err)
			writeError(c, log, err)
			return
		}
		if id != nil {
			c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		}
		c.Next()
	}
}

// OwnerFunc extracts the id of the user owning the addressed resource.
type OwnerFunc func(c *gin.Context) string

// OwnerParam reads the owner from a numeric path parameter.
func OwnerParam(name string) OwnerFunc {
	return func(c *gin.Context) string {
		raw := c.Param(name)
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return strconv.FormatInt(n, 10)
		}
		return raw
	}
}

// Authorize checks the caller against p before the handler runs.
func Authorize(p auth.Policy, resource, action string, owner OwnerFunc, log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id, _ := auth.IdentityFromContext(ctx)

		req := auth.Request{Resource: resource, Action: action}
		if owner != nil {
			req.OwnerID = owner(c)
		}

		c.Set(stageKey, auth.StageAuthorizationChecked)
		if err := p.Authorize(ctx, id, req); err != nil {
			// anonymous callers never got past authentication
			if id == nil || errors.Is(err, common.ErrorUnauthorized) {
				c.Set(stageKey, auth.StageRejected)
			} else {
				c.Set(stageKey, auth.StageDenied)
			}
			writeError(c, log, err)
			return
		}
		c.Set(stageKey, auth.StageAllowed)
		c.Next()
	}
}

// AccessLog writes one line per request once the handler chain finished.
func AccessLog(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		}
		if id, ok := auth.IdentityFromContext(c.Request.Context()); ok {
			args = append(args, "subject", id.Subject)
		}
		if v, ok := c.Get(stageKey); ok {
			args = append(args, "auth_stage", v.(auth.Stage).String())
		}
		log.Info(c.Request.Context(), "request", args...)
	}
}

func identity(c *gin.Context) *auth.Identity {
	id, _ := auth.IdentityFromContext(c.Request.Context())
	return id
}
