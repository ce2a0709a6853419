package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("APP_URL", "https://skillswap.test/")
	t.Setenv("AUTH_JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, "https://skillswap.test", cfg.AppURL)
	assert.Equal(t, 10*time.Minute, cfg.DigestDelay)
	assert.Equal(t, 50, cfg.DigestBatchSize)
	assert.Equal(t, "dev-secret", cfg.AuthJWTSecret)
}

func TestLoadRequiresSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DIGEST_DELAY", "soon")

	_, err := Load()
	assert.ErrorContains(t, err, "DIGEST_DELAY")
}
