package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// LLM
	GoogleAPIKey string

	// News API (RapidAPI crypto-news51)
	RapidAPIKey  string
	RapidAPIHost string

	// Social / web search
	TweetScoutAPIKey string
	TavilyAPIKey     string
	ExaAPIKey        string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisDB       int
	RedisPassword string

	// Cache / refresh policy
	CacheTTL     time.Duration // lifetime of cached tool results
	CronInterval time.Duration // wall-clock interval between cache re-warms

	// API rate limiting (requests per minute per client)
	APIRateLimit int
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8000"),

		GoogleAPIKey: os.Getenv("GOOGLE_API_KEY"),

		RapidAPIKey:  os.Getenv("RAPIDAPI_KEY"),
		RapidAPIHost: getEnvOrDefault("RAPIDAPI_HOST", "crypto-news51.p.rapidapi.com"),

		TweetScoutAPIKey: os.Getenv("TWEETSCOUT_API_KEY"),
		TavilyAPIKey:     os.Getenv("TAVILY_API_KEY"),
		ExaAPIKey:        os.Getenv("EXA_API_KEY"),

		RedisHost:     getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisDB:       getIntOrDefault("REDIS_DB", 0),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		// CACHE_TTL is seconds, CRON_INTERVAL is minutes. Both carried over
		// from the documented environment surface.
		CacheTTL:     time.Duration(getIntOrDefault("CACHE_TTL", 60*60*24)) * time.Second,
		CronInterval: time.Duration(getIntOrDefault("CRON_INTERVAL", 60)) * time.Minute,

		APIRateLimit: getIntOrDefault("API_RATE_LIMIT", 100),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
// Missing API keys are not fatal: each tool degrades to an error result at
// call time, so the service can still serve whatever data remains reachable.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if _, err := strconv.Atoi(c.HTTPPort); err != nil {
		return fmt.Errorf("HTTP_PORT must be numeric, got %q", c.HTTPPort)
	}

	if c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST cannot be empty")
	}

	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %v", c.CacheTTL)
	}

	if c.CronInterval <= 0 {
		return fmt.Errorf("CRON_INTERVAL must be positive, got %v", c.CronInterval)
	}

	if c.APIRateLimit <= 0 {
		return fmt.Errorf("API_RATE_LIMIT must be positive, got %d", c.APIRateLimit)
	}

	return nil
}

// RedisAddr returns the host:port address of the Redis backend.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}
