package config_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ledgerhub/bankd/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := config.Load(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, "test-secret", cfg.Jwt.Secret)
	assert.Equal(t, 24*time.Hour, cfg.Jwt.Expiry)
	assert.Contains(t, cfg.DB.Url, "postgres://")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("JWT_EXPIRY", "15m")
	t.Setenv("APP_ENV", "production")
	t.Setenv("SERVER_ADDR", ":8080")
	t.Setenv("DATABASE_URL", "postgres://example/db")

	cfg, err := config.Load(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 15*time.Minute, cfg.Jwt.Expiry)
	assert.Equal(t, "postgres://example/db", cfg.DB.Url)
}

func TestLoadMissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load(slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}
