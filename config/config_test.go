package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "JWT_SECRET", "JWT_EXPIRE", "BODY_LIMIT_BYTES", "API_RATE_LIMIT", "AUTH_RATE_LIMIT", "MAIL_SEND_ENABLED", "ELASTICSEARCH_ADDRS"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "devsecret", cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpire)
	assert.EqualValues(t, 10*1024*1024, cfg.BodyLimitBytes)
	assert.Equal(t, 100, cfg.APIRateLimit)
	assert.Equal(t, 5, cfg.AuthRateLimit)
	assert.Equal(t, 15*time.Minute, cfg.AuthRateWindow)
	assert.False(t, cfg.MailSendEnabled)
	assert.Empty(t, cfg.ESAddrs())
}

func TestLoadOverridesAndBadValues(t *testing.T) {
	t.Setenv("JWT_EXPIRE", "2h")
	t.Setenv("API_RATE_LIMIT", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example, ,https://b.example ")
	cfg := Load()

	assert.Equal(t, 2*time.Hour, cfg.JWTExpire)
	assert.Equal(t, 100, cfg.APIRateLimit)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins())
}

func TestPostgresDSN(t *testing.T) {
	c := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "5432", DBName: "medli", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/medli?sslmode=disable", c.PostgresDSN())
}
