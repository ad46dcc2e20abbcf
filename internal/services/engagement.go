package services

import (
	"errors"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/store"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// ErrUnauthenticated is returned when an engagement write arrives without a
// logged-in user.
var ErrUnauthenticated = errors.New("you must be logged in to do that")

// ErrEmptyComment rejects blank comment text before any store call.
var ErrEmptyComment = errors.New("comment text is required")

const defaultCommentAuthor = "Anonymous"

// commentPolicy strips all markup from comment text before it is stored.
var commentPolicy = bluemonday.StrictPolicy()

// CommentView is the normalized comment shape: author name and avatar
// already resolved.
type CommentView struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	Text       string    `json:"text"`
	ProfilePic string    `json:"profile_pic,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Engagement owns likes and comments. It holds no state of its own; every
// call is a transform over the article store.
type Engagement struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewEngagement(db *gorm.DB, log zerolog.Logger) *Engagement {
	return &Engagement{db: db, log: log}
}

// ToggleLike flips the (article, user) like membership and moves the
// article's counter with it, both inside one transaction so the counter and
// the row set cannot drift. Returns the resulting liked state.
func (s *Engagement) ToggleLike(articleID uint, userID string) (bool, error) {
	if userID == "" {
		return false, ErrUnauthenticated
	}
	if s.db == nil {
		return false, store.ErrNotConfigured
	}

	liked := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Like
		err := tx.Where("article_id = ? AND user_id = ?", articleID, userID).First(&existing).Error
		if err == nil {
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			// Guard keeps the counter non-negative even if it was already
			// out of step with the like rows.
			if err := tx.Model(&models.Article{}).
				Where("id = ? AND likes > 0", articleID).
				UpdateColumn("likes", gorm.Expr("likes - ?", 1)).Error; err != nil {
				return err
			}
			liked = false
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(&models.Like{ArticleID: articleID, UserID: userID}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Article{}).
			Where("id = ?", articleID).
			UpdateColumn("likes", gorm.Expr("likes + ?", 1)).Error; err != nil {
			return err
		}
		liked = true
		return nil
	})
	if err != nil {
		return false, store.Wrap(store.Classify(err), err)
	}
	return liked, nil
}

// HasLiked reports whether the user has liked the article. False on any
// error or missing user; this never fails a page render.
func (s *Engagement) HasLiked(articleID uint, userID string) bool {
	if userID == "" || s.db == nil {
		return false
	}
	var count int64
	err := s.db.Model(&models.Like{}).
		Where("article_id = ? AND user_id = ?", articleID, userID).
		Count(&count).Error
	if err != nil {
		s.log.Debug().Err(err).Uint("article_id", articleID).Msg("like check failed")
		return false
	}
	return count > 0
}

// ListComments returns an article's comments newest-first. Errors degrade to
// an empty list.
func (s *Engagement) ListComments(articleID uint) []CommentView {
	if s.db == nil {
		return []CommentView{}
	}
	var comments []models.Comment
	err := s.db.Preload("User").
		Where("article_id = ?", articleID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		s.log.Error().Err(err).Uint("article_id", articleID).Msg("comment list failed")
		return []CommentView{}
	}

	out := make([]CommentView, len(comments))
	for i, c := range comments {
		out[i] = commentView(c)
	}
	return out
}

// AddComment validates, sanitizes and stores a comment, returning it with
// the author resolved.
func (s *Engagement) AddComment(articleID uint, userID, text string) (*CommentView, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyComment
	}
	if s.db == nil {
		return nil, store.ErrNotConfigured
	}

	comment := models.Comment{
		ArticleID: articleID,
		UserID:    userID,
		Text:      commentPolicy.Sanitize(text),
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, store.Wrap(store.Classify(err), err)
	}

	if err := s.db.Preload("User").First(&comment, comment.ID).Error; err != nil {
		return nil, store.Wrap(store.Classify(err), err)
	}
	v := commentView(comment)
	return &v, nil
}

func commentView(c models.Comment) CommentView {
	v := CommentView{
		ID:        c.ID,
		Name:      defaultCommentAuthor,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
	if c.User.Name != "" {
		v.Name = c.User.Name
	}
	v.ProfilePic = c.User.ProfilePic
	return v
}
