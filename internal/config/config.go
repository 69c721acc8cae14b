package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
	Chapa    ChapaConfig
	SMS      SMSConfig
	Payment  PaymentConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// ChapaConfig holds payment gateway configuration. A CHAPUBK_TEST public key
// puts the whole payment flow in sandbox mode.
type ChapaConfig struct {
	BaseURL   string
	SecretKey string
	PublicKey string
}

// SMSConfig holds the SMS provider configuration.
type SMSConfig struct {
	Endpoint string
	APIKey   string
	Sender   string
}

// PaymentConfig tunes the verification workflow.
type PaymentConfig struct {
	Currency          string
	VerifyInterval    time.Duration
	VerifyMaxAttempts int
	PendingTTL        time.Duration
	SweepInterval     time.Duration
}

// Load loads configuration from the environment, reading a .env file first
// if one is present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "tanapark"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "tanapark-service"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Chapa: ChapaConfig{
			BaseURL:   getEnv("CHAPA_BASE_URL", "https://api.chapa.co/v1"),
			SecretKey: getEnv("CHAPA_SECRET_KEY", ""),
			PublicKey: getEnv("CHAPA_PUBLIC_KEY", ""),
		},
		SMS: SMSConfig{
			Endpoint: getEnv("SMS_ENDPOINT", ""),
			APIKey:   getEnv("SMS_API_KEY", ""),
			Sender:   getEnv("SMS_SENDER", "TanaPark"),
		},
		Payment: PaymentConfig{
			Currency:          getEnv("PAYMENT_CURRENCY", "ETB"),
			VerifyInterval:    getDurationEnv("PAYMENT_VERIFY_INTERVAL", time.Second),
			VerifyMaxAttempts: getIntEnv("PAYMENT_VERIFY_MAX_ATTEMPTS", 10),
			PendingTTL:        getDurationEnv("PAYMENT_PENDING_TTL", 24*time.Hour),
			SweepInterval:     getDurationEnv("PAYMENT_SWEEP_INTERVAL", time.Hour),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
