package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"packtrack.app/packtrack/security"
	"packtrack.app/packtrack/web/common"
)

const (
	// CookieName carries the token for browser clients that do not set the
	// Authorization header.
	CookieName = "packtrack.ApplicationCookie"

	identityKey = "identity"
)

// Authentication checks for a valid Bearer token or session cookie and puts
// the parsed identity into the request context.
func Authentication(base64Secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := ""

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			cookie, err := c.Cookie(CookieName)
			if err != nil {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			tokenStr = cookie
		} else {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			tokenStr = parts[1]
		}

		identity, err := security.ParseIdentityToken(tokenStr, base64Secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("invalid or expired token"))
			return
		}

		c.Set(identityKey, *identity)
		c.Next()
	}
}

// RequireAdmin rejects identities without the admin role. Must run after
// Authentication.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IdentityFrom(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, common.NewErrorResponse("admin role required"))
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the identity set by Authentication, zero when absent.
func IdentityFrom(c *gin.Context) security.Identity {
	if v, ok := c.Get(identityKey); ok {
		if identity, ok := v.(security.Identity); ok {
			return identity
		}
	}
	return security.Identity{}
}
