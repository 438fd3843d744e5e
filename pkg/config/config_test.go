package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, RateLimitStoreMemory, cfg.RateLimit.Store)
	assert.Equal(t, RateLimitRule{MaxRequests: 10, Window: time.Minute}, cfg.RateLimit.CreateEvent)
	assert.Equal(t, RateLimitRule{MaxRequests: 30, Window: time.Minute}, cfg.RateLimit.Submit)
	assert.Equal(t, RateLimitRule{MaxRequests: 10, Window: time.Minute}, cfg.RateLimit.VerifyCode)
	assert.False(t, cfg.Security.HashAdminCodes)
	assert.Empty(t, cfg.Security.DownloadSecret)
	assert.Equal(t, 15*time.Minute, cfg.Security.DownloadTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_STORE", "REDIS")
	t.Setenv("RATE_LIMIT_VERIFY_MAX", "3")
	t.Setenv("RATE_LIMIT_VERIFY_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_SUBMIT_WINDOW", "not-a-duration")
	t.Setenv("PUBLIC_BASE_URL", "https://whenfree.example/")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1, 10.0.0.2 ,")
	t.Setenv("ADMIN_CODE_HASHING", "true")
	t.Setenv("DOWNLOAD_SIGNING_SECRET", "s3cret")
	t.Setenv("DOWNLOAD_LINK_TTL", "2m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, RateLimitStoreRedis, cfg.RateLimit.Store)
	assert.Equal(t, RateLimitRule{MaxRequests: 3, Window: 30 * time.Second}, cfg.RateLimit.VerifyCode)
	assert.Equal(t, time.Minute, cfg.RateLimit.Submit.Window)
	assert.Equal(t, "https://whenfree.example", cfg.PublicBaseURL)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.TrustedProxies)
	assert.True(t, cfg.Security.HashAdminCodes)
	assert.Equal(t, "s3cret", cfg.Security.DownloadSecret)
	assert.Equal(t, 2*time.Minute, cfg.Security.DownloadTTL)
}
