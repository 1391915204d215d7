package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresBackend(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "http://hr.local")
	t.Setenv("APP_ENV", "development")
	t.Setenv("AUTH_SESSION_TTL_MINUTES", "")
	t.Setenv("AUTH_LOGIN_RATE_PER_MINUTE", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8*time.Hour, cfg.Auth.SessionTTL())
	assert.Equal(t, 10, cfg.Auth.LoginRatePerMinute)
	assert.Equal(t, "console_session", cfg.Auth.CookieName)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout())
	assert.True(t, cfg.Logger.Development)
}

func TestLoadRejectsDevSecretsInProduction(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "http://hr.local")
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("AUTH_SEAL_KEY", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("AUTH_JWT_SECRET", "prod-jwt")
	t.Setenv("AUTH_SEAL_KEY", "prod-seal")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.Logger.Development)
}
