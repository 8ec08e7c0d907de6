// Package config centralizes environment-driven configuration so main stays
// lean. A .env file is honored when present (local development); real
// environments set variables directly.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config captures all runtime configuration for the portal.
type Config struct {
	Addr     string
	LogLevel string

	// PostgresDSN selects the durable stores. Empty means in-memory stores,
	// which is the default for local development and handler tests.
	PostgresDSN string

	// Redis backs the application-number sequence counter when configured.
	Redis RedisConfig

	// Document storage (MinIO / S3 compatible). Empty endpoint means the
	// in-memory blob store.
	Storage StorageConfig

	// JWTSigningKey signs and verifies access tokens.
	JWTSigningKey string
	// TokenTTL bounds access token lifetime.
	TokenTTL time.Duration

	// UploadTimeout bounds document intake separately from ordinary request
	// timeouts; large uploads are the only slow path in the system.
	UploadTimeout time.Duration
}

// RedisConfig carries connection settings for the sequence counter.
type RedisConfig struct {
	URL          string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// StorageConfig carries MinIO/S3 connection settings for document storage.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// FromEnv builds a Config from environment variables, loading .env first.
func FromEnv() Config {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	jwtSigningKey := os.Getenv("JWT_SECRET")
	if jwtSigningKey == "" {
		// Development default; must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Config{
		Addr:        readEnv("PORTAL_ADDR", ":8080"),
		LogLevel:    readEnv("LOG_LEVEL", "info"),
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			DialTimeout:  readDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  readDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: readDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Storage: StorageConfig{
			Endpoint:  os.Getenv("STORAGE_ENDPOINT"),
			AccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
			SecretKey: os.Getenv("STORAGE_SECRET_KEY"),
			Bucket:    readEnv("STORAGE_BUCKET", "application-documents"),
			UseSSL:    readBool("STORAGE_USE_SSL", false),
		},
		JWTSigningKey: jwtSigningKey,
		TokenTTL:      readDuration("TOKEN_TTL", 7*24*time.Hour),
		UploadTimeout: readDuration("UPLOAD_TIMEOUT", 2*time.Minute),
	}
}

func readEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func readDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}

func readBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}
