package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("IDENTITY_SERVICE_BASE_URL", "http://identity.local/")
	t.Setenv("SESSION_SECRET", "s3cret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://identity.local", cfg.Identity.BaseURL)
	assert.Equal(t, "portal_session", cfg.Session.CookieName)
	assert.False(t, cfg.Session.CookieSecure)
	assert.Equal(t, "0.0.0.0:3000", cfg.App.Addr())
	assert.Equal(t, 10, cfg.RateLimit.Max)
}

func TestLoadMissingIdentityURL(t *testing.T) {
	t.Setenv("IDENTITY_SERVICE_BASE_URL", "")
	t.Setenv("SESSION_SECRET", "s3cret")

	_, err := Load()
	require.ErrorIs(t, err, ErrMissingConfig)
	assert.Contains(t, err.Error(), "IDENTITY_SERVICE_BASE_URL")
}

func TestLoadMissingSessionSecret(t *testing.T) {
	t.Setenv("IDENTITY_SERVICE_BASE_URL", "http://identity.local")
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	require.ErrorIs(t, err, ErrMissingConfig)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestLoadProductionSecureCookie(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Session.CookieSecure)
}

func TestLoadInvalidRedisDB(t *testing.T) {
	setRequired(t)
	t.Setenv("REDIS_DB", "abc")

	_, err := Load()
	require.Error(t, err)
}
