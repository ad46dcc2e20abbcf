package handlers

import (
	"net/http"

	"inkwell/internal/services"
	"inkwell/internal/session"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	manager *session.Manager
	media   *services.Media
}

func NewUserHandler(manager *session.Manager, media *services.Media) *UserHandler {
	return &UserHandler{manager: manager, media: media}
}

type profileInput struct {
	Name       string `json:"name"`
	Username   string `json:"username"`
	ProfilePic string `json:"profile_pic"`
}

// UpdateProfile handles PUT /api/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	sess := CurrentSession(c)
	if sess == nil {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var in profileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "invalid profile payload")
		return
	}

	updated, err := h.manager.UpdateProfile(sess, in.Name, in.Username, in.ProfilePic)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": updated.User})
}

// UploadProfilePicture handles POST /api/profile/picture (multipart). The
// user's current avatar is the previous-image reference for cleanup.
func (h *UserHandler) UploadProfilePicture(c *gin.Context) {
	sess := CurrentSession(c)
	if sess == nil {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		fail(c, http.StatusBadRequest, "please choose an image to upload")
		return
	}
	defer file.Close()

	upload := services.Upload{
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Reader:      file,
	}

	url, err := h.media.UploadProfilePicture(upload, sess.User.ProfilePic)
	if err != nil {
		status := http.StatusBadRequest
		if err != services.ErrFileTooLarge && err != services.ErrUnsupportedType {
			status = http.StatusBadGateway
		}
		fail(c, status, err.Error())
		return
	}

	// Persist the new avatar on the user record; the upload already
	// succeeded, so a failure here surfaces but leaves the URL usable.
	updated, err := h.manager.UpdateProfile(sess, "", "", url)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"url": url, "warning": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url, "user": updated.User})
}
