package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/store"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func engagementDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Category{}, &models.Article{}, &models.Comment{}, &models.Like{}); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return db
}

func seedReader(t *testing.T, db *gorm.DB) (models.User, models.Article) {
	t.Helper()
	user := models.User{ID: "22222222-2222-2222-2222-222222222222", Email: "reader@example.com", Name: "Riley"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("creating user: %v", err)
	}
	article := models.Article{Title: "Seed", Content: "body"}
	if err := db.Create(&article).Error; err != nil {
		t.Fatalf("creating article: %v", err)
	}
	return user, article
}

func articleLikes(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var article models.Article
	if err := db.First(&article, id).Error; err != nil {
		t.Fatalf("loading article: %v", err)
	}
	return article.Likes
}

func TestToggleLikeRoundTrip(t *testing.T) {
	db := engagementDB(t)
	svc := NewEngagement(db, zerolog.Nop())
	user, article := seedReader(t, db)

	liked, err := svc.ToggleLike(article.ID, user.ID)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !liked {
		t.Error("first toggle should report liked")
	}
	if got := articleLikes(t, db, article.ID); got != 1 {
		t.Errorf("likes = %d after like, want 1", got)
	}
	if !svc.HasLiked(article.ID, user.ID) {
		t.Error("HasLiked = false after like")
	}

	liked, err = svc.ToggleLike(article.ID, user.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if liked {
		t.Error("second toggle should report not liked")
	}
	if got := articleLikes(t, db, article.ID); got != 0 {
		t.Errorf("likes = %d after unlike, want 0", got)
	}
	if svc.HasLiked(article.ID, user.ID) {
		t.Error("HasLiked = true after unlike")
	}
}

func TestToggleLikeCounterNeverNegative(t *testing.T) {
	db := engagementDB(t)
	svc := NewEngagement(db, zerolog.Nop())
	user, article := seedReader(t, db)

	// A stale like row with the counter already at zero must not push the
	// counter below zero when removed.
	if err := db.Create(&models.Like{ArticleID: article.ID, UserID: user.ID}).Error; err != nil {
		t.Fatalf("seeding like: %v", err)
	}

	liked, err := svc.ToggleLike(article.ID, user.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if liked {
		t.Error("toggle on existing like should report not liked")
	}
	if got := articleLikes(t, db, article.ID); got != 0 {
		t.Errorf("likes = %d, want 0", got)
	}
}

func TestToggleLikeRequiresUser(t *testing.T) {
	db := engagementDB(t)
	svc := NewEngagement(db, zerolog.Nop())
	_, article := seedReader(t, db)

	if _, err := svc.ToggleLike(article.ID, ""); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("err = %v, want ErrUnauthenticated", err)
	}
}

func TestToggleLikeWithoutStore(t *testing.T) {
	svc := NewEngagement(nil, zerolog.Nop())
	if _, err := svc.ToggleLike(1, "user"); !errors.Is(err, store.ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestHasLikedNeverErrors(t *testing.T) {
	svc := NewEngagement(nil, zerolog.Nop())
	if svc.HasLiked(1, "user") {
		t.Error("HasLiked without a store should be false")
	}
	if svc.HasLiked(1, "") {
		t.Error("HasLiked without a user should be false")
	}
}

func TestAddCommentValidation(t *testing.T) {
	db := engagementDB(t)
	svc := NewEngagement(db, zerolog.Nop())
	user, article := seedReader(t, db)

	if _, err := svc.AddComment(article.ID, "", "hello"); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("anonymous comment err = %v", err)
	}
	if _, err := svc.AddComment(article.ID, user.ID, "   "); !errors.Is(err, ErrEmptyComment) {
		t.Errorf("blank comment err = %v", err)
	}
}

func TestAddCommentSanitizesAndResolvesAuthor(t *testing.T) {
	db := engagementDB(t)
	svc := NewEngagement(db, zerolog.Nop())
	user, article := seedReader(t, db)

	comment, err := svc.AddComment(article.ID, user.ID, `<script>alert(1)</script>nice post`)
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if comment.Text != "nice post" {
		t.Errorf("text = %q, want markup stripped", comment.Text)
	}
	if comment.Name != "Riley" {
		t.Errorf("name = %q, want Riley", comment.Name)
	}
}

func TestListCommentsNewestFirst(t *testing.T) {
	db := engagementDB(t)
	svc := NewEngagement(db, zerolog.Nop())
	user, article := seedReader(t, db)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		comment := models.Comment{
			ArticleID: article.ID,
			UserID:    user.ID,
			Text:      fmt.Sprintf("comment %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(&comment).Error; err != nil {
			t.Fatalf("seeding comment: %v", err)
		}
	}

	comments := svc.ListComments(article.ID)
	if len(comments) != 3 {
		t.Fatalf("got %d comments, want 3", len(comments))
	}
	for i := 1; i < len(comments); i++ {
		if comments[i].CreatedAt.After(comments[i-1].CreatedAt) {
			t.Errorf("comments out of order at index %d", i)
		}
	}
}

func TestListCommentsDegradesToEmpty(t *testing.T) {
	svc := NewEngagement(nil, zerolog.Nop())
	comments := svc.ListComments(1)
	if comments == nil || len(comments) != 0 {
		t.Errorf("got %v, want empty slice", comments)
	}
}
