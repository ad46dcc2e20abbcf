package main

import (
	"inkwell/internal/blob"
	"inkwell/internal/config"
	"inkwell/internal/handlers"
	"inkwell/internal/identity"
	"inkwell/internal/logger"
	"inkwell/internal/middleware"
	"inkwell/internal/repository"
	"inkwell/internal/services"
	"inkwell/internal/session"
	"inkwell/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// Load .env file; absent file means env vars come from the system.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	// Article store. A failed open or probe is not fatal: the repository
	// serves the bundled dataset and write paths report the outage.
	var db *gorm.DB
	if cfg.StoreConfigured() {
		articleStore, err := store.Open(cfg.Store.DSN, log)
		if err != nil {
			log.Warn().Err(err).Msg("article store unavailable at startup")
		} else if err := articleStore.Ping(); err != nil {
			log.Warn().Err(err).Msg("article store failed health check at startup")
		} else {
			db = articleStore.DB
		}
	} else {
		log.Warn().Msg("DATABASE_URL missing or placeholder, article store disabled")
	}

	// Identity provider and blob store share the backend credentials.
	identityClient := identity.NewClient(cfg.Backend.URL, cfg.Backend.AnonKey, cfg.Backend.Timeout)
	blobClient := blob.NewClient(cfg.Backend.URL, cfg.Backend.AnonKey, cfg.Backend.Timeout)
	var elevatedBlob services.BlobAPI
	if cfg.HasServiceRole() {
		elevatedBlob = blob.NewClient(cfg.Backend.URL, cfg.Backend.ServiceRoleKey, cfg.Backend.Timeout)
	}

	var directory session.UserDirectory
	if db != nil {
		directory = store.NewDirectory(db)
	}

	// Components
	articles := repository.NewArticles(db, log)
	engagement := services.NewEngagement(db, log)
	media := services.NewMedia(blobClient, elevatedBlob, cfg.Upload, log)
	sessionManager := session.NewManager(identityClient, directory, cfg.BackendConfigured(), log)

	// Initialize Gin
	r := gin.Default()

	// Setup Sessions
	cookieStore := cookie.NewStore([]byte(cfg.Server.SessionSecret))
	r.Use(sessions.Sessions(cfg.Server.SessionName, cookieStore))

	// Middleware
	r.Use(middleware.LoadUser(sessionManager))

	// Handlers
	articleHandler := handlers.NewArticleHandler(articles, engagement)
	engagementHandler := handlers.NewEngagementHandler(engagement)
	authHandler := handlers.NewAuthHandler(sessionManager)
	userHandler := handlers.NewUserHandler(sessionManager, media)
	adminHandler := handlers.NewAdminHandler(articles, media)

	api := r.Group("/api")

	// Public Routes
	api.GET("/articles", articleHandler.List)
	api.GET("/articles/search", articleHandler.Search)
	api.GET("/articles/:id", articleHandler.Detail)
	api.GET("/articles/:id/comments", engagementHandler.ListComments)
	api.GET("/categories", articleHandler.Categories)

	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/auth/me", authHandler.Me)

	// Protected Routes
	authorized := api.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/articles/:id/like", engagementHandler.ToggleLike)
		authorized.GET("/articles/:id/liked", engagementHandler.Liked)
		authorized.POST("/articles/:id/comments", engagementHandler.AddComment)
		authorized.PUT("/profile", userHandler.UpdateProfile)
		authorized.POST("/profile/picture", userHandler.UploadProfilePicture)
	}

	// Admin Routes
	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	{
		admin.POST("/articles", adminHandler.CreateArticle)
		admin.PUT("/articles/:id", adminHandler.UpdateArticle)
		admin.DELETE("/articles/:id", adminHandler.DeleteArticle)
		admin.POST("/articles/image", adminHandler.UploadArticleImage)
		admin.POST("/categories", adminHandler.CreateCategory)
	}

	log.Info().Str("port", cfg.Server.Port).Msg("inkwell server starting")
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
