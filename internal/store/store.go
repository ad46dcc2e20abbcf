package store

import (
	"inkwell/internal/models"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store wraps the article store connection. It is constructed once in the
// composition root and handed to every component that needs it.
type Store struct {
	DB  *gorm.DB
	log zerolog.Logger
}

// Open connects to the article store and migrates the schema. A nil Store
// plus error comes back on failure; callers decide whether that is fatal
// (write paths) or a reason to degrade (read paths).
func Open(dsn string, log zerolog.Logger) (*Store, error) {
	if dsn == "" {
		return nil, ErrNotConfigured
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, Wrap(Classify(err), err)
	}

	s := &Store{DB: db, log: log}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Article{},
		&models.Comment{},
		&models.Like{},
	); err != nil {
		return nil, Wrap(Classify(err), err)
	}
	log.Info().Msg("article store migration completed")

	s.seedCategories()

	return s, nil
}

// Ping probes connectivity. Used once at repository construction to pick the
// serving tier.
func (s *Store) Ping() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return Wrap(Classify(err), err)
	}
	if err := sqlDB.Ping(); err != nil {
		return Wrap(Classify(err), err)
	}
	return nil
}

func (s *Store) seedCategories() {
	var count int64
	s.DB.Model(&models.Category{}).Count(&count)
	if count > 0 {
		return
	}

	categories := []models.Category{
		{Name: "General"},
		{Name: "Cat"},
		{Name: "Inspiration"},
	}

	for _, category := range categories {
		if err := s.DB.Create(&category).Error; err != nil {
			s.log.Warn().Err(err).Str("category", category.Name).Msg("failed to seed category")
		}
	}
	s.log.Info().Msg("initial categories created")
}
