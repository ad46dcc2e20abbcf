package handlers

import (
	"net/http"

	"inkwell/internal/repository"
	"inkwell/internal/services"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
)

const defaultPageSize = 6

type ArticleHandler struct {
	repo       *repository.Articles
	engagement *services.Engagement
}

func NewArticleHandler(repo *repository.Articles, engagement *services.Engagement) *ArticleHandler {
	return &ArticleHandler{repo: repo, engagement: engagement}
}

// List handles GET /api/articles?page=&limit=&category=
func (h *ArticleHandler) List(c *gin.Context) {
	page := utils.StringToInt(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit := utils.StringToInt(c.DefaultQuery("limit", "6"))
	if limit < 1 {
		limit = defaultPageSize
	}
	category := c.Query("category")

	c.JSON(http.StatusOK, h.repo.List(page, limit, category))
}

// Search handles GET /api/articles/search?q=
func (h *ArticleHandler) Search(c *gin.Context) {
	keyword := c.Query("q")
	if keyword == "" {
		c.JSON(http.StatusOK, gin.H{"items": []repository.ArticleView{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": h.repo.Search(keyword)})
}

// Detail handles GET /api/articles/:id
func (h *ArticleHandler) Detail(c *gin.Context) {
	id := utils.StringToUint(c.Param("id"))
	article := h.repo.GetByID(id)
	if article == nil {
		fail(c, http.StatusNotFound, "article not found")
		return
	}

	liked := false
	if sess := CurrentSession(c); sess != nil {
		liked = h.engagement.HasLiked(id, sess.User.ID)
	}

	c.JSON(http.StatusOK, gin.H{
		"article":      article,
		"content_html": utils.RenderMarkdown(article.Content),
		"liked":        liked,
	})
}

// Categories handles GET /api/categories
func (h *ArticleHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.repo.Categories()})
}
