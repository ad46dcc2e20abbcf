package middleware

import (
	"net/http"

	"inkwell/internal/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// SessionTokenKey is the cookie-session key holding the identity access
// token.
const SessionTokenKey = "access_token"

// CurrentUserKey is the gin context key holding the resolved *session.Session.
const CurrentUserKey = "current_user"

// LoadUser resolves the identity token from the cookie session into the
// current user and sets it on the request context. Missing or stale tokens
// just leave the request anonymous.
func LoadUser(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookieSession := sessions.Default(c)
		token, _ := cookieSession.Get(SessionTokenKey).(string)
		if token != "" {
			if sess := manager.CurrentUser(token); sess != nil {
				c.Set(CurrentUserKey, sess)
			}
		}
		c.Next()
	}
}

// AuthRequired ensures a user is logged in.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CurrentUserKey); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// AdminRequired ensures the logged-in user's resolved role is admin.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(CurrentUserKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		sess, ok := value.(*session.Session)
		if !ok || !sess.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}
