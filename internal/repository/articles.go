package repository

import (
	"math"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/store"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// CategoryHighlight is the sentinel the front-end sends for its highlight
// tab; it means "no category filter".
const CategoryHighlight = "Highlight"

// SearchLimit caps search results.
const SearchLimit = 10

const (
	defaultCategory = "General"
	defaultAuthor   = "Unknown Author"
)

// ArticleView is the normalized article shape handed to the UI: the
// category and author joins are already resolved and defaulted.
type ArticleView struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Image       string    `json:"image"`
	Category    string    `json:"category"`
	Author      string    `json:"author"`
	AuthorImage string    `json:"author_image,omitempty"`
	Date        time.Time `json:"date"`
	Likes       int       `json:"likes"`
}

// ListResult is one page of articles.
type ListResult struct {
	Items       []ArticleView `json:"items"`
	CurrentPage int           `json:"current_page"`
	TotalPages  int           `json:"total_pages"`
	HasMore     bool          `json:"has_more"`
}

// CategoryView is a category id/name pair.
type CategoryView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ArticleInput carries the admin create/update fields.
type ArticleInput struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Content     string     `json:"content"`
	Image       string     `json:"image"`
	CategoryID  *uint      `json:"category_id"`
	Date        *time.Time `json:"date"`
}

// Articles is a two-tier article repository: a primary relational store and
// a bundled static dataset. The tier is picked once at construction — when
// the store is down or unconfigured every read serves from the bundled
// dataset with identical filter/paginate/search semantics. Reads never
// return errors: a failed primary read degrades to the fallback dataset when
// the failure looks like a missing/unreachable store, and to an empty result
// otherwise, so the UI never crashes on a listing page. Writes always
// propagate their errors.
type Articles struct {
	db           *gorm.DB
	log          zerolog.Logger
	fallbackOnly bool
}

// NewArticles builds the repository. Pass a nil db when the store health
// check failed at startup; the repository then serves the bundled dataset
// for the life of the process.
func NewArticles(db *gorm.DB, log zerolog.Logger) *Articles {
	r := &Articles{db: db, log: log}
	if db == nil {
		r.fallbackOnly = true
		log.Warn().Msg("article store not available, serving bundled dataset")
	}
	return r
}

// List returns one page of articles, newest first, optionally filtered by
// category name. Pages are 1-based.
func (r *Articles) List(page, pageSize int, category string) ListResult {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if r.fallbackOnly {
		return fallbackList(page, pageSize, category)
	}

	filtered := category != "" && category != CategoryHighlight

	countQuery := r.db.Model(&models.Article{})
	listQuery := r.db.Model(&models.Article{}).Preload("Category").Preload("Author")
	if filtered {
		join := "LEFT JOIN categories ON categories.id = articles.category_id"
		countQuery = countQuery.Joins(join).Where("categories.name = ?", category)
		listQuery = listQuery.Joins(join).Where("categories.name = ?", category)
	}

	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return r.degradeList(err, page, pageSize, category)
	}

	var articles []models.Article
	err := listQuery.
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&articles).Error
	if err != nil {
		return r.degradeList(err, page, pageSize, category)
	}

	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))
	return ListResult{
		Items:       views(articles),
		CurrentPage: page,
		TotalPages:  totalPages,
		HasMore:     page < totalPages,
	}
}

// degradeList applies the asymmetric failure policy: missing/unreachable
// store falls back to the bundled dataset, anything else degrades to an
// empty page.
func (r *Articles) degradeList(err error, page, pageSize int, category string) ListResult {
	if store.Degradable(err) {
		r.log.Warn().Err(err).Msg("article store degraded, serving bundled dataset")
		return fallbackList(page, pageSize, category)
	}
	r.log.Error().Err(err).Msg("article list failed")
	return ListResult{Items: []ArticleView{}, CurrentPage: page, TotalPages: 0, HasMore: false}
}

// Search returns up to SearchLimit articles whose title, description or
// content contains the keyword, case-insensitively, newest first.
func (r *Articles) Search(keyword string) []ArticleView {
	if r.fallbackOnly {
		return fallbackSearch(keyword)
	}

	pattern := "%" + strings.ToLower(keyword) + "%"
	var articles []models.Article
	err := r.db.Model(&models.Article{}).
		Preload("Category").Preload("Author").
		Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(content) LIKE ?",
			pattern, pattern, pattern).
		Order("created_at DESC").
		Limit(SearchLimit).
		Find(&articles).Error
	if err != nil {
		if store.Degradable(err) {
			r.log.Warn().Err(err).Msg("article store degraded, serving bundled dataset")
			return fallbackSearch(keyword)
		}
		r.log.Error().Err(err).Msg("article search failed")
		return []ArticleView{}
	}
	return views(articles)
}

// GetByID returns the article or nil when it does not exist. Nil also covers
// store failures: detail pages render a not-found state rather than crash.
func (r *Articles) GetByID(id uint) *ArticleView {
	if r.fallbackOnly {
		return fallbackGet(id)
	}

	var article models.Article
	err := r.db.Preload("Category").Preload("Author").First(&article, id).Error
	if err != nil {
		if store.IsNotFound(err) {
			return nil
		}
		if store.Degradable(err) {
			r.log.Warn().Err(err).Msg("article store degraded, serving bundled dataset")
			return fallbackGet(id)
		}
		r.log.Error().Err(err).Uint("article_id", id).Msg("article fetch failed")
		return nil
	}
	v := view(article)
	return &v
}

// Categories lists all categories.
func (r *Articles) Categories() []CategoryView {
	if r.fallbackOnly {
		return fallbackCategories()
	}

	var categories []models.Category
	if err := r.db.Order("id ASC").Find(&categories).Error; err != nil {
		if store.Degradable(err) {
			r.log.Warn().Err(err).Msg("article store degraded, serving bundled dataset")
			return fallbackCategories()
		}
		r.log.Error().Err(err).Msg("category list failed")
		return []CategoryView{{ID: 1, Name: "General"}, {ID: 2, Name: "Cat"}, {ID: 3, Name: "Inspiration"}}
	}

	out := make([]CategoryView, len(categories))
	for i, c := range categories {
		out[i] = CategoryView{ID: c.ID, Name: c.Name}
	}
	return out
}

// Create inserts a new article. Admin-only write path: errors propagate.
func (r *Articles) Create(authorID string, in ArticleInput) (*ArticleView, error) {
	if r.fallbackOnly {
		return nil, store.ErrNotConfigured
	}

	article := models.Article{
		Title:       in.Title,
		Description: in.Description,
		Content:     in.Content,
		Image:       in.Image,
		CategoryID:  in.CategoryID,
		Date:        in.Date,
	}
	if authorID != "" {
		article.AuthorID = &authorID
	}
	if err := r.db.Create(&article).Error; err != nil {
		return nil, store.Wrap(store.Classify(err), err)
	}
	return r.reload(article.ID)
}

// Update applies an admin edit and returns the updated article, or
// (nil, nil) when the article does not exist.
func (r *Articles) Update(id uint, in ArticleInput) (*ArticleView, error) {
	if r.fallbackOnly {
		return nil, store.ErrNotConfigured
	}

	var article models.Article
	if err := r.db.First(&article, id).Error; err != nil {
		if store.IsNotFound(err) {
			return nil, nil
		}
		return nil, store.Wrap(store.Classify(err), err)
	}

	updates := map[string]interface{}{
		"title":       in.Title,
		"description": in.Description,
		"content":     in.Content,
		"image":       in.Image,
		"category_id": in.CategoryID,
	}
	if in.Date != nil {
		updates["date"] = in.Date
	}
	if err := r.db.Model(&article).Updates(updates).Error; err != nil {
		return nil, store.Wrap(store.Classify(err), err)
	}
	return r.reload(id)
}

// Delete removes an article. Likes and comments go with it via FK cascade.
func (r *Articles) Delete(id uint) error {
	if r.fallbackOnly {
		return store.ErrNotConfigured
	}
	err := r.db.Delete(&models.Article{}, id).Error
	return store.Wrap(store.Classify(err), err)
}

// CreateCategory adds a category for the admin console.
func (r *Articles) CreateCategory(name string) (*CategoryView, error) {
	if r.fallbackOnly {
		return nil, store.ErrNotConfigured
	}
	category := models.Category{Name: name}
	if err := r.db.Create(&category).Error; err != nil {
		return nil, store.Wrap(store.Classify(err), err)
	}
	return &CategoryView{ID: category.ID, Name: category.Name}, nil
}

func (r *Articles) reload(id uint) (*ArticleView, error) {
	var article models.Article
	if err := r.db.Preload("Category").Preload("Author").First(&article, id).Error; err != nil {
		return nil, store.Wrap(store.Classify(err), err)
	}
	v := view(article)
	return &v, nil
}

// view flattens the category/author joins, applying the documented defaults
// when a join yields no match.
func view(a models.Article) ArticleView {
	v := ArticleView{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Content:     a.Content,
		Image:       a.Image,
		Category:    defaultCategory,
		Author:      defaultAuthor,
		Likes:       a.Likes,
		Date:        a.CreatedAt,
	}
	if a.Category != nil && a.Category.Name != "" {
		v.Category = a.Category.Name
	}
	if a.Author != nil {
		if a.Author.Name != "" {
			v.Author = a.Author.Name
		}
		v.AuthorImage = a.Author.ProfilePic
	}
	if a.Date != nil {
		v.Date = *a.Date
	}
	if v.Likes < 0 {
		v.Likes = 0
	}
	return v
}

func views(articles []models.Article) []ArticleView {
	out := make([]ArticleView, len(articles))
	for i, a := range articles {
		out[i] = view(a)
	}
	return out
}
