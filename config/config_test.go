package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":4000", cfg.Addr())
	assert.Equal(t, "/api", cfg.Server.APIPrefix)
	assert.Equal(t, "mongo", cfg.Server.StoreDriver)
	assert.Equal(t, "genz", cfg.Mongo.Database)
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr())
	assert.Equal(t, 60*time.Second, cfg.Redis.TTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Empty(t, cfg.Auth.DebugKey)
	assert.Empty(t, cfg.Server.TrustedProxies)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("API_PREFIX", "v1/")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("CORS_ORIGINS", "https://genz.vn;https://admin.genz.vn")
	t.Setenv("DEBUG_KEY", "letmein")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8;127.0.0.1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "/v1", cfg.Server.APIPrefix)
	assert.Equal(t, "memory", cfg.Server.StoreDriver)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr())
	assert.Equal(t, []string{"https://genz.vn", "https://admin.genz.vn"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "letmein", cfg.Auth.DebugKey)
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.Server.TrustedProxies)
}

func TestLoadRejectsBadTrustedProxy(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8;proxy.internal")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownStoreDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "a-real-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.IsDevelopment())
}
