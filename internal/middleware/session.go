package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mtodo/internal/model"
	appErr "github.com/xxxsen/mtodo/internal/pkg/errors"
	"github.com/xxxsen/mtodo/internal/pkg/response"
)

const (
	ContextUserKey    = "user"
	ContextSessionKey = "session_id"
)

// UserResolver maps a session id to its user.
type UserResolver interface {
	ResolveSession(ctx context.Context, sid string) (*model.User, error)
}

// LoadUser attaches the session user to the context when the cookie names a
// live session. Anything else leaves the request anonymous.
func LoadUser(resolver UserResolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(cookieName)
		if err != nil || sid == "" {
			c.Next()
			return
		}
		c.Set(ContextSessionKey, sid)
		user, err := resolver.ResolveSession(c.Request.Context(), sid)
		if err != nil {
			if !appErr.IsNotFound(err) {
				logutil.GetLogger(c.Request.Context()).Warn("resolve session failed", zap.Error(err))
			}
			c.Next()
			return
		}
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			response.Abort(c, http.StatusUnauthorized, "Login required")
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok && user != nil
}

func SessionID(c *gin.Context) string {
	return c.GetString(ContextSessionKey)
}
