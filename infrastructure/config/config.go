package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL     string
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	ServerPort      string
	ServerHost      string
	Environment     string
	StoreTimeout    time.Duration
	BcryptCost      int
	AutoMigrate     bool

	RedisURL       string
	RedisPassword  string
	RedisKeyPrefix string

	RateLimitEnabled  bool
	RateLimitAttempts int
	RateLimitWindow   time.Duration
	// TrustProxyHeaders keys the rate limiter on X-Forwarded-For / X-Real-IP.
	TrustProxyHeaders bool

	LogLevel  string
	LogFormat string

	// CORS configuration
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
}

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")
	ErrMissingJWTSecret   = errors.New("JWT_SECRET is required")
	ErrInvalidTokenTTL    = errors.New("invalid token TTL format")
	ErrInvalidDuration    = errors.New("invalid duration, expected whole seconds")
)

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		ServerPort:     getEnvOrDefault("SERVER_PORT", getEnvOrDefault("PORT", "8080")),
		ServerHost:     getEnvOrDefault("SERVER_HOST", ""),
		Environment:    getEnvOrDefault("ENV", "development"),
		BcryptCost:     getEnvOrDefaultInt("BCRYPT_COST", 10),
		AutoMigrate:    getEnvOrDefaultBool("AUTO_MIGRATE", false),
		RedisURL:       getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisKeyPrefix: getEnvOrDefault("REDIS_KEY_PREFIX", "oauth:refresh:"),

		RateLimitEnabled:  getEnvOrDefaultBool("RATE_LIMIT_ENABLED", true),
		RateLimitAttempts: getEnvOrDefaultInt("RATE_LIMIT_ATTEMPTS", 20),
		TrustProxyHeaders: getEnvOrDefaultBool("TRUST_PROXY_HEADERS", false),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),

		CORSAllowCredentials: getEnvOrDefaultBool("CORS_ALLOW_CREDENTIALS", true),
		CORSAllowedOrigins:   parseAllowedOrigins(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "")),
	}

	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}

	accessTokenTTL, err := parseSeconds(getEnvOrDefault("JWT_ACCESS_TOKEN_TTL", "900"))
	if err != nil {
		return nil, ErrInvalidTokenTTL
	}
	cfg.AccessTokenTTL = accessTokenTTL

	refreshTokenTTL, err := parseSeconds(getEnvOrDefault("JWT_REFRESH_TOKEN_TTL", "172800"))
	if err != nil {
		return nil, ErrInvalidTokenTTL
	}
	cfg.RefreshTokenTTL = refreshTokenTTL

	storeTimeout, err := parseSeconds(getEnvOrDefault("STORE_TIMEOUT", "5"))
	if err != nil {
		return nil, ErrInvalidDuration
	}
	cfg.StoreTimeout = storeTimeout

	window, err := parseSeconds(getEnvOrDefault("RATE_LIMIT_WINDOW", "900"))
	if err != nil {
		return nil, ErrInvalidDuration
	}
	cfg.RateLimitWindow = window

	return cfg, nil
}

// IsProduction reports whether cookies should be marked Secure.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func parseSeconds(value string) (time.Duration, error) {
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if seconds <= 0 {
		return 0, ErrInvalidDuration
	}
	return time.Duration(seconds) * time.Second, nil
}

func parseAllowedOrigins(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			res = append(res, trimmed)
		}
	}
	return res
}
