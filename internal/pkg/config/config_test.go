package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func secrets() map[string]string {
	return map[string]string{
		"ACCESS_TOKEN_SECRET":  "access",
		"REFRESH_TOKEN_SECRET": "refresh",
	}
}

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(secrets()))
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTTL)
	assert.Equal(t, 240*time.Hour, cfg.Auth.RefreshTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.True(t, cfg.Auth.CookieSecure)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, "account:activity", cfg.Activity.Stream)
	assert.Equal(t, 4, cfg.Activity.Workers)
	assert.Equal(t, "minio", cfg.Media.Provider)
}

func TestLoadWith_Overrides(t *testing.T) {
	env := secrets()
	env["ENV"] = "production"
	env["ACCESS_TOKEN_EXPIRY"] = "15m"
	env["REFRESH_TOKEN_EXPIRY"] = "72h"
	env["COOKIE_SECURE"] = "false"
	env["REDIS_ADDR"] = "redis:6379"
	env["MEDIA_PROVIDER"] = "s3"
	env["MEDIA_USE_SSL"] = "true"

	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(env))
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, 72*time.Hour, cfg.Auth.RefreshTTL)
	assert.False(t, cfg.Auth.CookieSecure)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "s3", cfg.Media.Provider)
	assert.True(t, cfg.Media.UseSSL)
}

func TestLoadWith_Errors(t *testing.T) {
	_, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	assert.Error(t, err, "secrets are required")

	env := secrets()
	env["ACCESS_TOKEN_EXPIRY"] = "soon"
	_, err = LoadWith(context.Background(), envconfig.MapLookuper(env))
	assert.Error(t, err)

	env = secrets()
	env["ACTIVITY_WORKERS"] = "0"
	_, err = LoadWith(context.Background(), envconfig.MapLookuper(env))
	assert.Error(t, err)
}
