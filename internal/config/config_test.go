package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setEnvs sets multiple env vars for the duration of the test.
func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 5001, cfg.HTTPPort)
	assert.Equal(t, 168*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 20*time.Second, cfg.UploadTimeout)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.KafkaEnabled)
	assert.InDelta(t, 1.0, cfg.AuthRateLimitRPS, 1e-9)
	assert.Equal(t, 10, cfg.AuthRateLimitBurst)
	assert.False(t, cfg.TrustProxyHeaders)
	assert.False(t, cfg.UseCloudinary())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_Development_AcceptsDefaultSecret(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "development",
		"JWT_SECRET":  "change-this-to-a-secure-secret",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "change-this-to-a-secure-secret", cfg.JWTSecret)
}

func TestLoad_Production_RejectsDefaultSecret(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "production",
		"JWT_SECRET":  "change-this-to-a-secure-secret",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET must be explicitly set")
}

func TestLoad_Production_RejectsShortSecret(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "production",
		"JWT_SECRET":  "too-short",
	})

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 characters")
}

func TestLoad_Production_RejectsWildcardCORS(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT":          "production",
		"JWT_SECRET":           "a-very-long-production-secret-value-1234",
		"CORS_ALLOWED_ORIGINS": "*",
	})

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "CORS_ALLOWED_ORIGINS")
}

func TestLoad_Production_Valid(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT":           "production",
		"JWT_SECRET":            "a-very-long-production-secret-value-1234",
		"CORS_ALLOWED_ORIGINS":  "https://chat.example.com,https://www.chat.example.com",
		"KAFKA_ENABLED":         "true",
		"KAFKA_BROKERS":         "k1:9092,k2:9092",
		"CLOUDINARY_CLOUD_NAME": "demo",
		"CLOUDINARY_API_KEY":    "key",
		"CLOUDINARY_API_SECRET": "secret",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []string{"https://chat.example.com", "https://www.chat.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.UseCloudinary())
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_Production_RequiresCloudinary(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT":           "production",
		"JWT_SECRET":            "a-very-long-production-secret-value-1234",
		"CORS_ALLOWED_ORIGINS":  "https://chat.example.com",
		"CLOUDINARY_CLOUD_NAME": "demo",
		"CLOUDINARY_API_KEY":    "key",
	})

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "CLOUDINARY_API_SECRET")
}

func TestLoad_Development_AllowsMemoryImageHost(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.False(t, cfg.UseCloudinary())
}

func TestLoad_RateLimitSettings(t *testing.T) {
	setEnvs(t, map[string]string{"AUTH_RATE_LIMIT_RPS": "0.5", "AUTH_RATE_LIMIT_BURST": "0"})

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_RATE_LIMIT_BURST")
}

func TestLoad_RejectsLowBcryptCost(t *testing.T) {
	setEnvs(t, map[string]string{"BCRYPT_COST": "4"})

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "BCRYPT_COST")
}

func TestLoad_InvalidPort(t *testing.T) {
	setEnvs(t, map[string]string{"HTTP_PORT": "70000"})

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_ThrottleDisabledNeedsNoWindow(t *testing.T) {
	setEnvs(t, map[string]string{
		"LOGIN_MAX_ATTEMPTS":   "0",
		"LOGIN_ATTEMPT_WINDOW": "0s",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 0, cfg.LoginMaxAttempts)
}

func TestLoad_UnparsableDuration(t *testing.T) {
	setEnvs(t, map[string]string{"SESSION_TTL": "a week"})

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
