package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlay(t *testing.T) {
	t.Run("keeps defaults for missing keys", func(t *testing.T) {
		cfg := Defaults()
		err := Overlay(&cfg, []byte("addr: \":8080\"\n"))
		require.Nil(t, err)
		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, "http://localhost:8000", cfg.Backend.BaseUrl)
		assert.Equal(t, "th", cfg.Backend.Lang)
		assert.Equal(t, 14*24*time.Hour, cfg.Auth.SessionDuration)
	})
	t.Run("nested and trimmed", func(t *testing.T) {
		cfg := Defaults()
		err := Overlay(&cfg, []byte(`
env: live
log_level: warn
backend:
  base_url: "https://api.kohchanghospital.test/"
  timeout: 5s
auth:
  cookie_secure: true
`))
		require.Nil(t, err)
		assert.Equal(t, Live, cfg.Env)
		assert.True(t, cfg.IsLive())
		assert.Equal(t, zerolog.WarnLevel, cfg.LogLevel)
		assert.Equal(t, "https://api.kohchanghospital.test", cfg.Backend.BaseUrl)
		assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
		assert.True(t, cfg.Auth.CookieSecure)
	})
	t.Run("bad env", func(t *testing.T) {
		cfg := Defaults()
		assert.NotNil(t, Overlay(&cfg, []byte("env: staging\n")))
	})
	t.Run("bad log level", func(t *testing.T) {
		cfg := Defaults()
		assert.NotNil(t, Overlay(&cfg, []byte("log_level: loud\n")))
	})
}
