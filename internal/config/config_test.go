package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		Port:                   8080,
		DatabaseURL:            "postgres://localhost/teammanager",
		RedisURL:               "rediss://localhost:6379",
		SessionSecret:          strings.Repeat("a", 32),
		SessionTTLMinutes:      30,
		VerificationTTLMinutes: 10,
		AuthRateLimitMax:       20,
		AuthRateLimitWindowMin: 15,
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/teammanager")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("PORT", "9000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL())
	assert.Equal(t, 10*time.Minute, cfg.VerificationTTL())
	assert.Equal(t, 15*time.Minute, cfg.AuthRateLimitWindow())
}

func TestValidateProductionRejectsShortSecret(t *testing.T) {
	cfg := testConfig()
	cfg.SessionSecret = "short"

	err := cfg.Validate(true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestValidateProductionRejectsKnownWeakSecret(t *testing.T) {
	cfg := testConfig()
	cfg.SessionSecret = "dev-only-insecure-secret-change-in-production"

	err := cfg.Validate(true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weak")
}

func TestValidateProductionAcceptsStrongSecret(t *testing.T) {
	assert.NoError(t, testConfig().Validate(true))
}

func TestValidateDevelopmentSkipsSecretCheck(t *testing.T) {
	cfg := testConfig()
	cfg.SessionSecret = "short"
	assert.NoError(t, cfg.Validate(false))
}
