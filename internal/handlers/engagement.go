package handlers

import (
	"errors"
	"net/http"

	"inkwell/internal/services"
	"inkwell/internal/session"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
)

type EngagementHandler struct {
	engagement *services.Engagement
}

func NewEngagementHandler(engagement *services.Engagement) *EngagementHandler {
	return &EngagementHandler{engagement: engagement}
}

// ToggleLike handles POST /api/articles/:id/like
func (h *EngagementHandler) ToggleLike(c *gin.Context) {
	sess := CurrentSession(c)
	if sess == nil {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	articleID := utils.StringToUint(c.Param("id"))
	liked, err := h.engagement.ToggleLike(articleID, sess.User.ID)
	if err != nil {
		if errors.Is(err, services.ErrUnauthenticated) {
			fail(c, http.StatusUnauthorized, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, session.FriendlyMessage(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// Liked handles GET /api/articles/:id/liked
func (h *EngagementHandler) Liked(c *gin.Context) {
	sess := CurrentSession(c)
	if sess == nil {
		c.JSON(http.StatusOK, gin.H{"liked": false})
		return
	}
	articleID := utils.StringToUint(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"liked": h.engagement.HasLiked(articleID, sess.User.ID)})
}

// ListComments handles GET /api/articles/:id/comments
func (h *EngagementHandler) ListComments(c *gin.Context) {
	articleID := utils.StringToUint(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"comments": h.engagement.ListComments(articleID)})
}

type commentInput struct {
	Text string `json:"text" binding:"required"`
}

// AddComment handles POST /api/articles/:id/comments
func (h *EngagementHandler) AddComment(c *gin.Context) {
	sess := CurrentSession(c)
	if sess == nil {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var in commentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "comment text is required")
		return
	}

	articleID := utils.StringToUint(c.Param("id"))
	comment, err := h.engagement.AddComment(articleID, sess.User.ID, in.Text)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnauthenticated):
			fail(c, http.StatusUnauthorized, err.Error())
		case errors.Is(err, services.ErrEmptyComment):
			fail(c, http.StatusBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, session.FriendlyMessage(err))
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}
