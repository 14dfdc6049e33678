package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultAPIBaseURL = "https://demo.openmercato.com/api"

type Config struct {
	APIBaseURL         string        `yaml:"api_base_url"`
	APIKey             string        `yaml:"api_key"`
	HTTPPort           string        `yaml:"http_port"`
	HTTPTimeout        time.Duration `yaml:"http_timeout"`
	LogLevel           string        `yaml:"log_level"`
	Locale             string        `yaml:"locale"`
	Timezone           string        `yaml:"timezone"`
	RedisAddr          string        `yaml:"redis_addr"`
	RateLimitPerMinute int           `yaml:"rate_limit_per_minute"`
	JWTSecret          string        `yaml:"jwt_secret"`
}

// Load builds the configuration from defaults, the optional YAML file named by
// DEALS_CONFIG_PATH, and environment variables, in that order of precedence.
// A missing API key is not an error here; it is reported when deals are fetched.
func Load() (*Config, error) {
	cfg := &Config{
		APIBaseURL:         DefaultAPIBaseURL,
		HTTPPort:           "8080",
		HTTPTimeout:        10 * time.Second,
		LogLevel:           "info",
		Locale:             "en-US",
		Timezone:           "UTC",
		RateLimitPerMinute: 60,
	}

	if path := os.Getenv("DEALS_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.APIBaseURL = getEnv("OPEN_MERCATO_API_BASE_URL", cfg.APIBaseURL)
	cfg.APIKey = getEnv("OPEN_MERCATO_API_KEY", cfg.APIKey)
	cfg.HTTPPort = getEnv("HTTP_PORT", cfg.HTTPPort)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.Locale = getEnv("DEALS_LOCALE", cfg.Locale)
	cfg.Timezone = getEnv("DEALS_TIMEZONE", cfg.Timezone)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.JWTSecret = getEnv("DASHBOARD_JWT_SECRET", cfg.JWTSecret)

	if raw := os.Getenv("HTTP_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
		}
		cfg.HTTPTimeout = d
	}
	if raw := os.Getenv("RATE_LIMIT_PER_MINUTE"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %w", err)
		}
		cfg.RateLimitPerMinute = n
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
