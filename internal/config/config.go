package config

import (
	"os"
	"strconv"
)

// Config holds all configuration for the service
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	NATS      NATSConfig
	JWT       JWTConfig
	Email     EmailConfig
	RateLimit RateLimitConfig
	App       AppConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port string
	// AllowedOrigins is the CORS allow-list for browser clients
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// NATSConfig holds NATS configuration for event publishing
type NATSConfig struct {
	URL string
}

// JWTConfig holds token issuance configuration.
// Access tokens live 60 minutes, refresh tokens 24 hours.
type JWTConfig struct {
	AccessSecret       string
	RefreshSecret      string
	AccessExpiryMins   int
	RefreshExpiryHours int
}

// EmailConfig holds mail transport configuration.
// Backend "log" writes messages to the logger instead of sending them.
type EmailConfig struct {
	Backend      string // "smtp" or "log"
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

// RateLimitConfig holds request throttling configuration
type RateLimitConfig struct {
	AnonPerMinute int // anonymous callers, keyed by IP
	UserPerDay    int // authenticated users, keyed by user ID
}

// AppConfig holds application configuration
type AppConfig struct {
	Environment string
	LogLevel    string
}

// New creates a new configuration instance
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Host: getEnvWithDefault("SERVER_HOST", "0.0.0.0"),
			Port: getEnvWithDefault("SERVER_PORT", "8090"),
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
				"http://localhost:5173",
			},
		},
		Database: DatabaseConfig{
			Host:     getEnvWithDefault("DB_HOST", "localhost"),
			Port:     getEnvWithDefault("DB_PORT", "5432"),
			User:     getEnvWithDefault("DB_USER", "postgres"),
			Password: getEnvWithDefault("DB_PASSWORD", "postgres"),
			Name:     getEnvWithDefault("DB_NAME", "crm"),
			SSLMode:  getEnvWithDefault("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnvWithDefault("REDIS_HOST", "localhost"),
			Port:     getEnvWithDefault("REDIS_PORT", "6379"),
			Password: getEnvWithDefault("REDIS_PASSWORD", ""),
			DB:       getEnvAsIntWithDefault("REDIS_DB", 0),
		},
		NATS: NATSConfig{
			URL: getEnvWithDefault("NATS_URL", "nats://localhost:4222"),
		},
		JWT: JWTConfig{
			AccessSecret:       getEnvWithDefault("JWT_ACCESS_SECRET", "dev-access-secret"),
			RefreshSecret:      getEnvWithDefault("JWT_REFRESH_SECRET", "dev-refresh-secret"),
			AccessExpiryMins:   getEnvAsIntWithDefault("JWT_ACCESS_EXPIRY_MINS", 60),
			RefreshExpiryHours: getEnvAsIntWithDefault("JWT_REFRESH_EXPIRY_HOURS", 24),
		},
		Email: EmailConfig{
			Backend:      getEnvWithDefault("EMAIL_BACKEND", "log"),
			SMTPHost:     getEnvWithDefault("SMTP_HOST", "localhost"),
			SMTPPort:     getEnvWithDefault("SMTP_PORT", "587"),
			SMTPUser:     getEnvWithDefault("SMTP_USER", ""),
			SMTPPassword: getEnvWithDefault("SMTP_PASSWORD", ""),
			FromEmail:    getEnvWithDefault("FROM_EMAIL", "noreply@crm.com"),
			FromName:     getEnvWithDefault("FROM_NAME", "CRM"),
		},
		RateLimit: RateLimitConfig{
			AnonPerMinute: getEnvAsIntWithDefault("RATE_LIMIT_ANON_PER_MINUTE", 20),
			UserPerDay:    getEnvAsIntWithDefault("RATE_LIMIT_USER_PER_DAY", 5000),
		},
		App: AppConfig{
			Environment: getEnvWithDefault("APP_ENV", "development"),
			LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),
		},
	}
}

// getEnvWithDefault gets environment variable with a default fallback
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntWithDefault gets environment variable as integer with default fallback
func getEnvAsIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
