package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv          = "NEWSLABELER_CONFIG"
	apiKeyEnv              = "OPENAI_API_KEY"
	baseURLEnv             = "OPENAI_BASE_URL"
	defaultModelEnv        = "DEFAULT_MODEL"
	fallbackModelEnv       = "FALLBACK_MODEL"
	maxTokensEnv           = "MAX_TOKENS"
	temperatureEnv         = "TEMPERATURE"
	maxRPMEnv              = "MAX_RPM"
	maxTPMEnv              = "MAX_TPM"
	batchSizeEnv           = "BATCH_SIZE"
	dataPathEnv            = "DATA_PATH"
	outputPathEnv          = "OUTPUT_PATH"
	confidenceThresholdEnv = "CONFIDENCE_THRESHOLD"
	maxRetriesEnv          = "MAX_RETRIES"
	retryDelayEnv          = "RETRY_DELAY"
	logLevelEnv            = "LOG_LEVEL"
	logFileEnv             = "LOG_FILE"
	telegramTokenEnv       = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv      = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	API           APIConfig          `yaml:"api"`
	Models        ModelConfig        `yaml:"models"`
	RateLimits    RateLimitConfig    `yaml:"rateLimits"`
	Processing    ProcessingConfig   `yaml:"processing"`
	Paths         PathConfig         `yaml:"paths"`
	Logging       LoggingConfig      `yaml:"logging"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// APIConfig describes how to reach the completion gateway.
type APIConfig struct {
	Key     string `yaml:"key"`
	BaseURL string `yaml:"baseUrl"`
}

// ModelConfig selects primary and fallback completion models.
type ModelConfig struct {
	Primary     string  `yaml:"primary"`
	Fallback    string  `yaml:"fallback"`
	MaxTokens   int     `yaml:"maxTokens"`
	Temperature float64 `yaml:"temperature"`
}

// RateLimitConfig documents the provider ceilings the run must stay under.
type RateLimitConfig struct {
	MaxRPM int `yaml:"maxRpm"`
	MaxTPM int `yaml:"maxTpm"`
}

// ProcessingConfig tunes batch traversal and retry behavior.
type ProcessingConfig struct {
	BatchSize           int     `yaml:"batchSize"`
	ConfidenceThreshold float64 `yaml:"confidenceThreshold"`
	MaxRetries          int     `yaml:"maxRetries"`
	RetryDelaySeconds   int     `yaml:"retryDelaySeconds"`
}

// PathConfig locates the dataset and the output directory.
type PathConfig struct {
	Data   string `yaml:"data"`
	Output string `yaml:"output"`
}

// LoggingConfig controls log verbosity and destination.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// Validate fails fast on missing credentials or out-of-range settings.
func (c Config) Validate() error {
	if c.API.Key == "" {
		return fmt.Errorf("config: %s is required", apiKeyEnv)
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("config: %s is required", baseURLEnv)
	}
	if c.Models.MaxTokens <= 0 {
		return fmt.Errorf("config: max tokens must be positive, got %d", c.Models.MaxTokens)
	}
	if c.Models.Temperature < 0 || c.Models.Temperature > 2 {
		return fmt.Errorf("config: temperature must be between 0 and 2, got %g", c.Models.Temperature)
	}
	if c.Processing.BatchSize <= 0 {
		return fmt.Errorf("config: batch size must be positive, got %d", c.Processing.BatchSize)
	}
	if c.Processing.ConfidenceThreshold < 0 || c.Processing.ConfidenceThreshold > 1 {
		return fmt.Errorf("config: confidence threshold must be between 0 and 1, got %g", c.Processing.ConfidenceThreshold)
	}
	if c.Processing.MaxRetries < 1 {
		return fmt.Errorf("config: max retries must be at least 1, got %d", c.Processing.MaxRetries)
	}
	if c.Processing.RetryDelaySeconds < 0 {
		return fmt.Errorf("config: retry delay must not be negative, got %d", c.Processing.RetryDelaySeconds)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	setString(&c.API.Key, apiKeyEnv)
	setString(&c.API.BaseURL, baseURLEnv)
	setString(&c.Models.Primary, defaultModelEnv)
	setString(&c.Models.Fallback, fallbackModelEnv)
	setInt(&c.Models.MaxTokens, maxTokensEnv)
	setFloat(&c.Models.Temperature, temperatureEnv)
	setInt(&c.RateLimits.MaxRPM, maxRPMEnv)
	setInt(&c.RateLimits.MaxTPM, maxTPMEnv)
	setInt(&c.Processing.BatchSize, batchSizeEnv)
	setString(&c.Paths.Data, dataPathEnv)
	setString(&c.Paths.Output, outputPathEnv)
	setFloat(&c.Processing.ConfidenceThreshold, confidenceThresholdEnv)
	setInt(&c.Processing.MaxRetries, maxRetriesEnv)
	setInt(&c.Processing.RetryDelaySeconds, retryDelayEnv)
	setString(&c.Logging.Level, logLevelEnv)
	setString(&c.Logging.File, logFileEnv)
	setString(&c.Notifications.Telegram.BotToken, telegramTokenEnv)
	setString(&c.Notifications.Telegram.ChatID, telegramChatIDEnv)
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setInt(dst *int, env string) {
	if v := os.Getenv(env); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("config: invalid %s=%q, keeping %d", env, v, *dst)
			return
		}
		*dst = parsed
	}
}

func setFloat(dst *float64, env string) {
	if v := os.Getenv(env); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			log.Printf("config: invalid %s=%q, keeping %g", env, v, *dst)
			return
		}
		*dst = parsed
	}
}

func mergeConfig(base, override Config) Config {
	if override.API.Key != "" {
		base.API.Key = override.API.Key
	}
	if override.API.BaseURL != "" {
		base.API.BaseURL = override.API.BaseURL
	}

	if override.Models.Primary != "" {
		base.Models.Primary = override.Models.Primary
	}
	if override.Models.Fallback != "" {
		base.Models.Fallback = override.Models.Fallback
	}
	if override.Models.MaxTokens != 0 {
		base.Models.MaxTokens = override.Models.MaxTokens
	}
	if override.Models.Temperature != 0 {
		base.Models.Temperature = override.Models.Temperature
	}

	if override.RateLimits.MaxRPM != 0 {
		base.RateLimits.MaxRPM = override.RateLimits.MaxRPM
	}
	if override.RateLimits.MaxTPM != 0 {
		base.RateLimits.MaxTPM = override.RateLimits.MaxTPM
	}

	if override.Processing.BatchSize != 0 {
		base.Processing.BatchSize = override.Processing.BatchSize
	}
	if override.Processing.ConfidenceThreshold != 0 {
		base.Processing.ConfidenceThreshold = override.Processing.ConfidenceThreshold
	}
	if override.Processing.MaxRetries != 0 {
		base.Processing.MaxRetries = override.Processing.MaxRetries
	}
	if override.Processing.RetryDelaySeconds != 0 {
		base.Processing.RetryDelaySeconds = override.Processing.RetryDelaySeconds
	}

	if override.Paths.Data != "" {
		base.Paths.Data = override.Paths.Data
	}
	if override.Paths.Output != "" {
		base.Paths.Output = override.Paths.Output
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.File != "" {
		base.Logging.File = override.Logging.File
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	return base
}

func defaultConfig() Config {
	return Config{
		API: APIConfig{},
		Models: ModelConfig{
			Primary:     "gpt-4o-mini-2024-07-18",
			Fallback:    "gpt-4o-mini",
			MaxTokens:   4000,
			Temperature: 0.1,
		},
		RateLimits: RateLimitConfig{
			MaxRPM: 500,
			MaxTPM: 30000,
		},
		Processing: ProcessingConfig{
			BatchSize:           10,
			ConfidenceThreshold: 0.7,
			MaxRetries:          3,
			RetryDelaySeconds:   1,
		},
		Paths: PathConfig{
			Data:   "./data/tnmt_subtopic_data.csv",
			Output: "./output",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
