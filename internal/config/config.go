package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kapu/socialforge-go/internal/constants"
)

type Config struct {
	HTTP    HTTPConfig
	Gemini  GeminiConfig
	OpenAI  OpenAIConfig
	Bio     BioConfig
	Redis   RedisConfig
	Upload  UploadConfig
	Logging LoggingConfig
}

type HTTPConfig struct {
	Addr           string
	AllowedOrigins []string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey         string
	Model          string
	EnableFallback bool
}

type BioConfig struct {
	Timeout  time.Duration
	CacheTTL time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type UploadConfig struct {
	MaxBytes int64
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTP: HTTPConfig{
			Addr:           getEnv("HTTP_ADDR", ":8080"),
			AllowedOrigins: parseCommaSeparated(getEnv("HTTP_ALLOWED_ORIGINS", "*")),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			Model:          getEnv("OPENAI_MODEL", "gpt-5-mini"),
			EnableFallback: getEnvBool("OPENAI_ENABLE_FALLBACK", true),
		},
		Bio: BioConfig{
			Timeout:  time.Duration(getEnvInt("BIO_TIMEOUT_SECONDS", int(constants.BioConfig.DefaultTimeout/time.Second))) * time.Second,
			CacheTTL: time.Duration(getEnvInt("BIO_CACHE_TTL_MINUTES", int(constants.CacheTTL.GeneratedBio/time.Minute))) * time.Minute,
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Upload: UploadConfig{
			MaxBytes: getEnvInt64("UPLOAD_MAX_BYTES", constants.UploadConfig.DefaultMaxBytes),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks required settings. A missing GEMINI_API_KEY is allowed: the
// bio generator then answers with its fallback text only.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}
	if c.Bio.Timeout <= 0 {
		return fmt.Errorf("BIO_TIMEOUT_SECONDS must be positive")
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	if c.Redis.Enabled && c.Bio.CacheTTL <= 0 {
		return fmt.Errorf("BIO_CACHE_TTL_MINUTES must be positive when REDIS_ENABLED is set")
	}
	return nil
}

// LiveBioEnabled reports whether any provider credential is configured.
func (c *Config) LiveBioEnabled() bool {
	return c.Gemini.APIKey != "" || (c.OpenAI.EnableFallback && c.OpenAI.APIKey != "")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func parseCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
