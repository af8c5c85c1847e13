package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-account-core/internal/domain/entity"
)

type ctxKey struct{}

// SessionResolver turns an Authorization header into the current user.
type SessionResolver interface {
	Resolve(ctx context.Context, authorization string) (*entity.User, error)
}

// ErrorWriter renders an error and aborts the request.
type ErrorWriter func(c *gin.Context, err error)

// RequireSession rejects requests without a live session and attaches the
// resolved user to the request context.
func RequireSession(guard SessionResolver, writeErr ErrorWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := guard.Resolve(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			writeErr(c, err)
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), ctxKey{}, u))
		c.Next()
	}
}

// CurrentUser returns the user attached by RequireSession.
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	u, ok := c.Request.Context().Value(ctxKey{}).(*entity.User)
	return u, ok && u != nil
}
