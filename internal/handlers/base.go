package handlers

import (
	"inkwell/internal/middleware"
	"inkwell/internal/session"

	"github.com/gin-gonic/gin"
)

// CurrentSession returns the session LoadUser resolved for this request, or
// nil for anonymous requests.
func CurrentSession(c *gin.Context) *session.Session {
	value, exists := c.Get(middleware.CurrentUserKey)
	if !exists {
		return nil
	}
	sess, ok := value.(*session.Session)
	if !ok {
		return nil
	}
	return sess
}

// fail writes a JSON error response.
func fail(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}
