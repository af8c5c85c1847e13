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

	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 250, cfg.AvatarSize)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "local", cfg.AvatarBackend)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("BASE_URL", "https://api.example.com/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins())
	assert.Equal(t, "https://api.example.com/api/users/verify/", cfg.VerifyLinkBase())
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("JWT_TTL", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "5432", DBName: "d", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", cfg.PostgresDSN())
}
