package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, 3, cfg.Quota.FreeLimit)
	assert.Equal(t, 7*24*time.Hour, cfg.Quota.Window)
	assert.False(t, cfg.Quota.RefundOnFailure)
	assert.Equal(t, 10, cfg.Quiz.QuestionCount)
	assert.Equal(t, time.Second, cfg.Quiz.TickInterval)
	assert.Equal(t, "gorm", cfg.Store.Driver)
	assert.NotEmpty(t, cfg.Session.Secret, "a development secret is filled in")
}

func TestFromViperEnvironmentOverrides(t *testing.T) {
	t.Setenv("QUOTA_FREE_LIMIT", "5")
	t.Setenv("STORE_DRIVER", "redis")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SESSION_SECRET", "s3cret")

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, 5, cfg.Quota.FreeLimit)
	assert.Equal(t, "redis", cfg.Store.Driver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, "s3cret", cfg.Session.Secret)
}
