package handlers

import (
	"net/http"

	"inkwell/internal/repository"
	"inkwell/internal/services"
	"inkwell/internal/session"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
)

// AdminHandler owns the admin console endpoints: article and category
// management plus thumbnail uploads. All routes sit behind AdminRequired.
type AdminHandler struct {
	repo  *repository.Articles
	media *services.Media
}

func NewAdminHandler(repo *repository.Articles, media *services.Media) *AdminHandler {
	return &AdminHandler{repo: repo, media: media}
}

// CreateArticle handles POST /api/admin/articles
func (h *AdminHandler) CreateArticle(c *gin.Context) {
	var in repository.ArticleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "article title is required")
		return
	}

	sess := CurrentSession(c)
	article, err := h.repo.Create(sess.User.ID, in)
	if err != nil {
		fail(c, http.StatusInternalServerError, session.FriendlyMessage(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"article": article})
}

// UpdateArticle handles PUT /api/admin/articles/:id
func (h *AdminHandler) UpdateArticle(c *gin.Context) {
	var in repository.ArticleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "article title is required")
		return
	}

	id := utils.StringToUint(c.Param("id"))
	article, err := h.repo.Update(id, in)
	if err != nil {
		fail(c, http.StatusInternalServerError, session.FriendlyMessage(err))
		return
	}
	if article == nil {
		fail(c, http.StatusNotFound, "article not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"article": article})
}

// DeleteArticle handles DELETE /api/admin/articles/:id
func (h *AdminHandler) DeleteArticle(c *gin.Context) {
	id := utils.StringToUint(c.Param("id"))
	if err := h.repo.Delete(id); err != nil {
		fail(c, http.StatusInternalServerError, session.FriendlyMessage(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "article deleted"})
}

type categoryInput struct {
	Name string `json:"name" binding:"required"`
}

// CreateCategory handles POST /api/admin/categories
func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var in categoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "category name is required")
		return
	}

	category, err := h.repo.CreateCategory(in.Name)
	if err != nil {
		fail(c, http.StatusInternalServerError, session.FriendlyMessage(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// UploadArticleImage handles POST /api/admin/articles/image (multipart).
func (h *AdminHandler) UploadArticleImage(c *gin.Context) {
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

	url, err := h.media.UploadArticleImage(upload)
	if err != nil {
		status := http.StatusBadRequest
		if err != services.ErrFileTooLarge && err != services.ErrUnsupportedType {
			status = http.StatusBadGateway
		}
		fail(c, status, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
