package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env        string
	ServerAddr string
	LogLevel   string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret string
	JWTTTL    time.Duration

	AdminEmail    string
	AdminPassword string

	Storage StorageConfig
	Media   MediaConfig
}

type StorageConfig struct {
	Mode      string // "local" or "s3"
	UploadDir string
	Region    string
	Endpoint  string
	PublicURL string

	// PublicBaseURL makes local-mode URLs absolute, e.g. "https://dashboard.example.com".
	PublicBaseURL string

	MediaBucket   string
	AboutBucket   string
	PodcastBucket string
}

type MediaConfig struct {
	SiteID            string
	MaxUploadBytes    int64
	AboutMaxBytes     int64
	BulkConcurrency   int
	CatalogueFile     string
	ReconcileInterval time.Duration
	ReconcileBatch    int
}

const devJWTSecret = "dev_secret_key_minimum_32_characters_long_for_local_only"

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:        getEnv("APP_ENV", "development"),
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "dashboard"),

		JWTSecret: getEnv("JWT_SECRET", devJWTSecret),
		JWTTTL:    getDuration("JWT_TTL", 12*time.Hour),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		Storage: StorageConfig{
			Mode:          getEnv("STORAGE_MODE", "local"),
			UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
			Region:        getEnv("S3_REGION", "us-east-1"),
			Endpoint:      getEnv("S3_ENDPOINT", ""),
			PublicURL:     getEnv("S3_PUBLIC_URL", ""),
			PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
			MediaBucket:   getEnv("MEDIA_BUCKET", "media-files"),
			AboutBucket:   getEnv("ABOUT_BUCKET", "about-images"),
			PodcastBucket: getEnv("PODCAST_BUCKET", "podcasts-audio"),
		},

		Media: MediaConfig{
			SiteID:            getEnv("SITE_ID", "default"),
			MaxUploadBytes:    int64(getInt("MEDIA_MAX_UPLOAD_MB", 50)) << 20,
			AboutMaxBytes:     int64(getInt("ABOUT_MAX_UPLOAD_MB", 5)) << 20,
			BulkConcurrency:   getInt("BULK_CONCURRENCY", 4),
			CatalogueFile:     getEnv("MEDIA_CATALOGUE_FILE", ""),
			ReconcileInterval: getDuration("RECONCILE_INTERVAL", 10*time.Minute),
			ReconcileBatch:    getInt("RECONCILE_BATCH", 50),
		},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate rejects settings that are only tolerable on a developer machine.
func (c *Config) Validate() error {
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long (current: %d)", len(c.JWTSecret))
	}
	if !c.IsDevelopment() && c.JWTSecret == devJWTSecret {
		return fmt.Errorf("cannot use the development JWT secret in %s", c.Env)
	}
	if !c.IsDevelopment() && c.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required in %s", c.Env)
	}
	switch c.Storage.Mode {
	case "local", "s3":
	default:
		return fmt.Errorf("STORAGE_MODE must be local or s3, got %q", c.Storage.Mode)
	}
	if c.Media.BulkConcurrency < 1 {
		return fmt.Errorf("BULK_CONCURRENCY must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
