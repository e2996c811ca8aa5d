package middleware

import (
	"net/http"
	"strings"
	"time"

	"entrypass/internal/auth"
	"entrypass/internal/dto"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"
)

func LoggingMiddleware() func(*ginext.Context) {
	return func(c *ginext.Context) {
		start := time.Now()

		c.Next()

		zlog.Logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request completed")
	}
}

// RequireSession intercepts requests to a protected admin surface. The
// session cookie must carry a valid signed token for the surface's role;
// presence alone is not enough. Browsers are redirected to the surface's
// login page, API clients get 401.
func RequireSession(sessions *auth.Sessions, role, loginPath string) func(*ginext.Context) {
	return func(c *ginext.Context) {
		cookie, err := c.Cookie(auth.CookieName(role))
		if err != nil || sessions.Verify(cookie, role) != nil {
			if wantsHTML(c) {
				c.Redirect(http.StatusFound, loginPath)
			} else {
				dto.UnauthorizedError(c)
			}
			c.Abort()
			return
		}

		c.Next()
	}
}

func wantsHTML(c *ginext.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}
