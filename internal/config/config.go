package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// MemoryDatabaseURL selects the in-process repositories instead of Postgres
const MemoryDatabaseURL = "memory"

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	UploadRoot  string
	CORSOrigins string
	LogDir      string
	LogLevel    string // debug, info, warn or error; empty picks by environment
	// Identity
	JWTSecret string
	JWTTTL    time.Duration
	JWKSURL   string // When set, tokens are verified against this JWKS instead of JWTSecret
	// Limits
	MaxUploadBytes int64
	AuthRateLimit  float64 // requests per second per client IP on unauthenticated endpoints
	AuthRateBurst  int
	// Debug flags
	Debug bool // Includes raw error text in 500 responses
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    env,
		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/dataroom?sslmode=disable"),
		UploadRoot:     getEnv("UPLOAD_ROOT", "./uploads"),
		CORSOrigins:    getEnv("CORS_ORIGINS", "http://localhost:3000"),
		LogDir:         getEnv("LOG_DIR", ""),
		LogLevel:       getEnv("LOG_LEVEL", ""),
		JWTSecret:      getEnv("JWT_SECRET", getDefaultSecret(env)),
		JWTTTL:         getDuration("JWT_TTL", 12*time.Hour),
		JWKSURL:        getEnv("JWKS_URL", ""),
		MaxUploadBytes: getInt64("MAX_UPLOAD_BYTES", 100<<20),
		AuthRateLimit:  getFloat("AUTH_RATE_LIMIT", 1),
		AuthRateBurst:  int(getInt64("AUTH_RATE_BURST", 10)),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// Validate rejects configurations that must not reach production
func (c *Config) Validate() error {
	if c.JWKSURL == "" && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when JWKS_URL is not set")
	}
	if c.UploadRoot == "" {
		return fmt.Errorf("UPLOAD_ROOT cannot be empty")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getDefaultSecret returns a development-only signing secret; prod gets none
func getDefaultSecret(env string) string {
	if env == "prod" {
		return ""
	}
	return "TEST_SECRET_KEY"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}

func getInt64(key string, defaultValue int64) int64 {
	if n, err := strconv.ParseInt(os.Getenv(key), 10, 64); err == nil {
		return n
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return defaultValue
}
