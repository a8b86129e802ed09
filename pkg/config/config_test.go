package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port       int           `env:"TEST_CFG_PORT" envDefault:"5001"`
	LogLevel   string        `env:"TEST_CFG_LOG_LEVEL" envDefault:"info"`
	SessionTTL time.Duration `env:"TEST_CFG_SESSION_TTL" envDefault:"168h"`
	Brokers    []string      `env:"TEST_CFG_BROKERS" envSeparator:","`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 5001, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	assert.Empty(t, cfg.Brokers)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "9090")
	t.Setenv("TEST_CFG_SESSION_TTL", "1h")
	t.Setenv("TEST_CFG_BROKERS", "k1:9092,k2:9092")

	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers)
}

func TestLoad_InvalidType(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "not-a-number")

	var cfg testConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

type secretConfig struct {
	Secret string `env:"TEST_CFG_SECRET"`
}

func (c *secretConfig) Validate() error {
	if len(c.Secret) < 8 {
		return errors.New("secret too short")
	}
	return nil
}

func TestLoad_RunsValidator(t *testing.T) {
	t.Setenv("TEST_CFG_SECRET", "short")

	var cfg secretConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate config: secret too short")
}

func TestLoad_ValidatorPasses(t *testing.T) {
	t.Setenv("TEST_CFG_SECRET", "long-enough-secret")

	var cfg secretConfig
	require.NoError(t, Load(&cfg))
	assert.Equal(t, "long-enough-secret", cfg.Secret)
}

func TestLoadWithPrefix(t *testing.T) {
	t.Setenv("CLI_TEST_CFG_PORT", "7000")

	var cfg testConfig
	require.NoError(t, LoadWithPrefix(&cfg, "CLI_"))
	assert.Equal(t, 7000, cfg.Port)
}
