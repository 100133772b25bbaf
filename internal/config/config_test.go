package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so tests see only what they set.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{
		configPathEnv, apiKeyEnv, baseURLEnv, defaultModelEnv, fallbackModelEnv,
		maxTokensEnv, temperatureEnv, maxRPMEnv, maxTPMEnv, batchSizeEnv,
		dataPathEnv, outputPathEnv, confidenceThresholdEnv, maxRetriesEnv,
		retryDelayEnv, logLevelEnv, logFileEnv, telegramTokenEnv, telegramChatIDEnv,
	} {
		t.Setenv(env, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	assert.Equal(t, "gpt-4o-mini-2024-07-18", cfg.Models.Primary)
	assert.Equal(t, "gpt-4o-mini", cfg.Models.Fallback)
	assert.Equal(t, 4000, cfg.Models.MaxTokens)
	assert.InDelta(t, 0.1, cfg.Models.Temperature, 1e-9)
	assert.Equal(t, 500, cfg.RateLimits.MaxRPM)
	assert.Equal(t, 30000, cfg.RateLimits.MaxTPM)
	assert.Equal(t, 10, cfg.Processing.BatchSize)
	assert.InDelta(t, 0.7, cfg.Processing.ConfidenceThreshold, 1e-9)
	assert.Equal(t, 3, cfg.Processing.MaxRetries)
	assert.Equal(t, 1, cfg.Processing.RetryDelaySeconds)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.API.Key)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(apiKeyEnv, "sk-test")
	t.Setenv(baseURLEnv, "https://gateway.example.com/v1")
	t.Setenv(defaultModelEnv, "gpt-4o")
	t.Setenv(batchSizeEnv, "25")
	t.Setenv(temperatureEnv, "0.3")
	t.Setenv(confidenceThresholdEnv, "0.5")
	t.Setenv(telegramTokenEnv, "bot-token")
	t.Setenv(telegramChatIDEnv, "12345")

	cfg := Load()
	assert.Equal(t, "sk-test", cfg.API.Key)
	assert.Equal(t, "https://gateway.example.com/v1", cfg.API.BaseURL)
	assert.Equal(t, "gpt-4o", cfg.Models.Primary)
	assert.Equal(t, 25, cfg.Processing.BatchSize)
	assert.InDelta(t, 0.3, cfg.Models.Temperature, 1e-9)
	assert.InDelta(t, 0.5, cfg.Processing.ConfidenceThreshold, 1e-9)
	assert.Equal(t, "bot-token", cfg.Notifications.Telegram.BotToken)
	assert.Equal(t, "12345", cfg.Notifications.Telegram.ChatID)
}

func TestLoadYAMLFileWithEnvPrecedence(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  key: file-key
  baseUrl: https://file.example.com
processing:
  batchSize: 50
logging:
  level: debug
`), 0o644))

	t.Setenv(configPathEnv, path)
	t.Setenv(apiKeyEnv, "env-key")

	cfg := Load()
	// Environment wins over the file; the file wins over defaults.
	assert.Equal(t, "env-key", cfg.API.Key)
	assert.Equal(t, "https://file.example.com", cfg.API.BaseURL)
	assert.Equal(t, 50, cfg.Processing.BatchSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "gpt-4o-mini-2024-07-18", cfg.Models.Primary)
}

func TestLoadInvalidNumericEnvKeepsDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv(batchSizeEnv, "lots")
	t.Setenv(temperatureEnv, "warm")

	cfg := Load()
	assert.Equal(t, 10, cfg.Processing.BatchSize)
	assert.InDelta(t, 0.1, cfg.Models.Temperature, 1e-9)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := defaultConfig()
	valid.API.Key = "sk-test"
	valid.API.BaseURL = "https://gateway.example.com/v1"
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing key", func(c *Config) { c.API.Key = "" }, "OPENAI_API_KEY"},
		{"missing base url", func(c *Config) { c.API.BaseURL = "" }, "OPENAI_BASE_URL"},
		{"bad max tokens", func(c *Config) { c.Models.MaxTokens = 0 }, "max tokens"},
		{"bad temperature", func(c *Config) { c.Models.Temperature = 3 }, "temperature"},
		{"bad batch size", func(c *Config) { c.Processing.BatchSize = -1 }, "batch size"},
		{"bad threshold", func(c *Config) { c.Processing.ConfidenceThreshold = 1.5 }, "confidence threshold"},
		{"bad retries", func(c *Config) { c.Processing.MaxRetries = 0 }, "max retries"},
		{"bad delay", func(c *Config) { c.Processing.RetryDelaySeconds = -1 }, "retry delay"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
