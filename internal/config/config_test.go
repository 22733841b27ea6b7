package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"ENVIRONMENT", "PORT", "DATABASE_URL", "JWT_SECRET", "JWT_TTL", "MAX_UPLOAD_BYTES", "DEBUG"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "TEST_SECRET_KEY", cfg.JWTSecret)
	assert.Equal(t, 12*time.Hour, cfg.JWTTTL)
	assert.Equal(t, int64(100<<20), cfg.MaxUploadBytes)
	assert.True(t, cfg.Debug)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("DATABASE_URL", MemoryDatabaseURL)
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("AUTH_RATE_BURST", "3")
	t.Setenv("DEBUG", "")

	cfg := Load()
	assert.Equal(t, MemoryDatabaseURL, cfg.DatabaseURL)
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
	assert.Equal(t, 3, cfg.AuthRateBurst)
	assert.False(t, cfg.Debug)

	// prod has no fallback secret
	assert.Empty(t, cfg.JWTSecret)
	assert.Error(t, cfg.Validate())

	t.Setenv("JWKS_URL", "https://idp.example.com/.well-known/jwks.json")
	assert.NoError(t, Load().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"empty upload root", func(c *Config) { c.UploadRoot = "" }, true},
		{"zero upload limit", func(c *Config) { c.MaxUploadBytes = 0 }, true},
		{"no secret and no jwks", func(c *Config) { c.JWTSecret = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{JWTSecret: "s", UploadRoot: "./uploads", MaxUploadBytes: 1}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		env, level string
		want       slog.Level
	}{
		{"dev", "", slog.LevelDebug},
		{"prod", "", slog.LevelInfo},
		{"prod", "warn", slog.LevelWarn},
		{"dev", "ERROR", slog.LevelError},
		{"test", "loud", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.level, func(t *testing.T) {
			cfg := &Config{Environment: tt.env, LogLevel: tt.level}
			assert.Equal(t, tt.want, cfg.logLevel())
		})
	}

	var buf bytes.Buffer
	logger := NewLogger(&Config{Environment: "prod"}, &buf)
	logger.Debug("hidden")
	logger.Info("shown", "room_id", 7)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"room_id":7`)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestSetupLogFilePrunes(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"dataroom-2024-01-01T00-00-00.000.log",
		"dataroom-2024-01-02T00-00-00.000.log",
		"dataroom-2024-01-03T00-00-00.000.log",
		"unrelated.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	f, err := SetupLogFile(dir, 2)
	require.NoError(t, err)
	defer f.Close()

	logs, err := filepath.Glob(filepath.Join(dir, "dataroom-*.log"))
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, filepath.Join(dir, "dataroom-2024-01-03T00-00-00.000.log"), logs[0])
	assert.Equal(t, f.Name(), logs[1])
	assert.FileExists(t, filepath.Join(dir, "unrelated.txt"))
}
