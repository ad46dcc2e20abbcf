package handlers

import (
	"net/http"

	"inkwell/internal/middleware"
	"inkwell/internal/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	manager *session.Manager
}

func NewAuthHandler(manager *session.Manager) *AuthHandler {
	return &AuthHandler{manager: manager}
}

type loginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var in loginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "email and password are required")
		return
	}

	sess, err := h.manager.Login(in.Email, in.Password)
	if err != nil {
		fail(c, http.StatusUnauthorized, err.Error())
		return
	}

	cookieSession := sessions.Default(c)
	cookieSession.Set(middleware.SessionTokenKey, sess.Token)
	if err := cookieSession.Save(); err != nil {
		fail(c, http.StatusInternalServerError, "could not persist session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": sess.User})
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var in session.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "a valid email and a password of at least 6 characters are required")
		return
	}

	if err := h.manager.Register(in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "registration successful, check your email to confirm your account"})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	cookieSession := sessions.Default(c)
	token, _ := cookieSession.Get(middleware.SessionTokenKey).(string)

	// Local state is cleared even when the provider call fails.
	h.manager.Logout(token)
	cookieSession.Clear()
	_ = cookieSession.Save()

	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me handles GET /api/auth/me — the current session, null when anonymous.
func (h *AuthHandler) Me(c *gin.Context) {
	sess := CurrentSession(c)
	if sess == nil {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": sess.User})
}
