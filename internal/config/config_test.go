package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 168*time.Hour, cfg.RefreshTokenTTL)
	assert.Nil(t, cfg.AllowedOrigins)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxUploadBytes())
	assert.False(t, cfg.MailEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("ALLOWED_ORIGINS", " https://mezun.istun.edu.tr , ,https://panel.istun.edu.tr")
	t.Setenv("PUBLIC_BASE_URL", "https://api.istun.edu.tr/")
	t.Setenv("SMTP_HOST", "smtp.istun.edu.tr")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, []string{"https://mezun.istun.edu.tr", "https://panel.istun.edu.tr"}, cfg.AllowedOrigins)
	assert.Equal(t, "https://api.istun.edu.tr", cfg.PublicBaseURL)
	assert.True(t, cfg.MailEnabled())
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_TTL", "soon")

	_, err := Load()
	assert.Error(t, err)
}
