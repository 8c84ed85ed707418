package auth

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ehime-live/live-schedule/app/database"
)

const (
	CookieName = "session"
	userKey    = "auth.user"
	tokenKey   = "auth.token"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*database.User, error)
}

var _ Authenticator = (*Service)(nil)

// TokenFromRequest reads the session token from the session cookie or an
// Authorization: Bearer header.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// Middleware resolves the request's session, if any, and stores the user
// in the gin context. It never rejects a request.
func Middleware(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c.Request)
		if token == "" {
			c.Next()
			return
		}

		user, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			slog.Error("Failed to authenticate request", "path", c.Request.URL.Path, "error", err)
		}
		if user != nil {
			c.Set(userKey, user)
			c.Set(tokenKey, token)
		}

		c.Next()
	}
}

func CurrentUser(c *gin.Context) *database.User {
	if value, ok := c.Get(userKey); ok {
		if user, ok := value.(*database.User); ok {
			return user
		}
	}
	return nil
}

func CurrentToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}

// RequireAPI rejects unauthenticated API requests with 401.
func RequireAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "unauthorized",
			})
			return
		}
		c.Next()
	}
}

// RequirePage redirects unauthenticated page requests to the login page.
func RequirePage() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			target := "/login?next=" + url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusSeeOther, target)
			c.Abort()
			return
		}
		c.Next()
	}
}
