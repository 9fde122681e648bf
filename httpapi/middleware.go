package httpapi

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/librarium/librarium/auth"
	"github.com/librarium/librarium/core"
)

const (
	ctxUserKey   = "authenticated_user"
	bearerPrefix = "Bearer "

	logMsgRequestHandled = "request handled"
	logAttrMethod        = "method"
	logAttrPath          = "path"
	logAttrStatus        = "status"
	logAttrDuration      = "duration_ms"
)

// authenticate resolves a bearer token, when one is presented, to the user it
// was issued for and attaches it to the request context. A missing header
// leaves the request unauthenticated; the gate decides later what an
// unauthenticated caller may do. A presented but invalid token is rejected
// immediately.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		if !strings.HasPrefix(header, bearerPrefix) {
			respondError(c, fmt.Errorf("%w: malformed authorization header", core.ErrUnauthorized))
			c.Abort()
			return
		}

		user, err := s.auth.Authenticate(c.Request.Context(), strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}

		c.Set(ctxUserKey, user)
		c.Next()
	}
}

// require gates a route on one capability. The gate sees a nil principal for
// unauthenticated callers.
func (s *Server) require(action auth.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.auth.Gate().Authorize(actorFrom(c), action); err != nil {
			respondError(c, err)
			c.Abort()
			return
		}

		c.Next()
	}
}

// actorFrom returns the authenticated user attached to the request, nil for
// unauthenticated callers.
func actorFrom(c *gin.Context) *core.User {
	value, exists := c.Get(ctxUserKey)
	if !exists {
		return nil
	}

	user, ok := value.(core.User)
	if !ok {
		return nil
	}

	return &user
}

// mustActor returns the authenticated user on routes that sit behind a gate
// requiring authentication.
func mustActor(c *gin.Context) (core.User, error) {
	actor := actorFrom(c)
	if actor == nil {
		return core.User{}, core.ErrUnauthorized
	}

	return *actor, nil
}

// requestLogger emits one debug line per handled request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.logger == nil {
			c.Next()
			return
		}

		started := time.Now()
		c.Next()

		s.logger.Debug(logMsgRequestHandled,
			logAttrMethod, c.Request.Method,
			logAttrPath, c.Request.URL.Path,
			logAttrStatus, c.Writer.Status(),
			logAttrDuration, time.Since(started).Milliseconds(),
		)
	}
}
