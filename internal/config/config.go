package config

import (
	"os"
	"strconv"
	"time"
)

// Placeholder values shipped in .env.example. Credentials matching these are
// treated the same as missing ones: no network call is attempted against them.
const (
	placeholderBackendURL = "https://placeholder.backend.local"
	placeholderAnonKey    = "your_anon_key_here"
	placeholderServiceKey = "your_service_role_key_here"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	Backend BackendConfig
	Upload  UploadConfig
	Log     LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port          string
	SessionSecret string
	SessionName   string
}

// StoreConfig holds the article store (Postgres) settings.
type StoreConfig struct {
	DSN string
}

// BackendConfig holds the identity provider / blob store settings. Both live
// behind the same base URL and key pair, mirroring the hosted backend they
// wrap.
type BackendConfig struct {
	URL            string
	AnonKey        string
	ServiceRoleKey string
	Timeout        time.Duration
}

// UploadConfig holds media upload limits and bucket names.
type UploadConfig struct {
	MaxSize         int64
	AvatarBucket    string
	ThumbnailBucket string
	AvatarFolder    string
	ThumbnailFolder string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          getEnv("PORT", "8080"),
			SessionSecret: getEnv("SESSION_SECRET", "secret_key_change_me"),
			SessionName:   getEnv("SESSION_NAME", "inkwell_session"),
		},
		Store: StoreConfig{
			DSN: os.Getenv("DATABASE_URL"),
		},
		Backend: BackendConfig{
			URL:            os.Getenv("BACKEND_URL"),
			AnonKey:        os.Getenv("BACKEND_ANON_KEY"),
			ServiceRoleKey: os.Getenv("BACKEND_SERVICE_ROLE_KEY"),
			Timeout:        getDurationEnv("BACKEND_TIMEOUT", 30*time.Second),
		},
		Upload: UploadConfig{
			MaxSize:         getInt64Env("MAX_UPLOAD_SIZE", 5*1024*1024),
			AvatarBucket:    getEnv("AVATAR_BUCKET", "avatars"),
			ThumbnailBucket: getEnv("THUMBNAIL_BUCKET", "thumbnails"),
			AvatarFolder:    getEnv("AVATAR_FOLDER", "profile-pictures"),
			ThumbnailFolder: getEnv("THUMBNAIL_FOLDER", "thumbnail-pictures"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// StoreConfigured reports whether the article store has a usable DSN. An
// empty or placeholder DSN sends the repository straight to the fallback
// dataset.
func (c *Config) StoreConfigured() bool {
	return c.Store.DSN != "" && c.Store.DSN != "postgres://placeholder"
}

// BackendConfigured reports whether the identity/blob backend has real
// credentials.
func (c *Config) BackendConfigured() bool {
	if c.Backend.URL == "" || c.Backend.URL == placeholderBackendURL {
		return false
	}
	if c.Backend.AnonKey == "" || c.Backend.AnonKey == placeholderAnonKey {
		return false
	}
	return true
}

// HasServiceRole reports whether an elevated credential is available for the
// privileged storage retry.
func (c *Config) HasServiceRole() bool {
	return c.Backend.ServiceRoleKey != "" && c.Backend.ServiceRoleKey != placeholderServiceKey
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
