package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the tenancy service
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	NATS      NATSConfig
	Auth      AuthConfig
	Tenancy   TenancyConfig
	Scheduler SchedulerConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host        string
	Port        string
	Environment string
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// RedisConfig holds Redis configuration for the subdomain cache
type RedisConfig struct {
	URL      string
	CacheTTL time.Duration
}

// NATSConfig holds NATS configuration for activity event streaming
type NATSConfig struct {
	URL           string
	Enabled       bool
	MaxReconnects int
	ReconnectWait time.Duration
}

// AuthConfig holds bearer token configuration
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// TenancyConfig holds tenant resolution and trial configuration
type TenancyConfig struct {
	BaseDomain         string
	ReservedSubdomains []string
	TrialDays          int
	ExpiringSoonDays   int
}

// SchedulerConfig holds the trial reminder sweep configuration
type SchedulerConfig struct {
	ReminderEnabled  bool
	ReminderSchedule string
}

// RateLimitConfig throttles the admin API per client
type RateLimitConfig struct {
	AdminRPS   float64
	AdminBurst int
}

// CORSConfig holds allowed dashboard origins
type CORSConfig struct {
	AllowedOrigins []string
}

// NewConfig creates a new Config from environment variables
func NewConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        getEnv("HOST", "0.0.0.0"),
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "tenancy"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			AutoMigrate:     getBoolEnv("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			CacheTTL: getDurationEnv("SUBDOMAIN_CACHE_TTL", time.Minute),
		},
		NATS: NATSConfig{
			URL:           getEnv("NATS_URL", "nats://nats:4222"),
			Enabled:       getBoolEnv("NATS_ENABLED", false),
			MaxReconnects: getIntEnv("NATS_MAX_RECONNECTS", -1),
			ReconnectWait: getDurationEnv("NATS_RECONNECT_WAIT", 2*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			Issuer:    getEnv("JWT_ISSUER", "tenancy-service"),
		},
		Tenancy: TenancyConfig{
			BaseDomain:         getEnv("BASE_DOMAIN", "localhost"),
			ReservedSubdomains: getSliceEnv("RESERVED_SUBDOMAINS", []string{"www", "api", "admin", "app"}),
			TrialDays:          getIntEnv("TRIAL_DAYS", 14),
			ExpiringSoonDays:   getIntEnv("TRIAL_EXPIRING_SOON_DAYS", 7),
		},
		Scheduler: SchedulerConfig{
			ReminderEnabled:  getBoolEnv("TRIAL_REMINDER_ENABLED", false),
			ReminderSchedule: getEnv("TRIAL_REMINDER_SCHEDULE", "0 9 * * *"),
		},
		RateLimit: RateLimitConfig{
			AdminRPS:   getFloatEnv("ADMIN_RATE_LIMIT_RPS", 5),
			AdminBurst: getIntEnv("ADMIN_RATE_LIMIT_BURST", 20),
		},
		CORS: CORSConfig{
			AllowedOrigins: getSliceEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
	}
}

// Validate checks settings without which the service cannot run safely
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Tenancy.ExpiringSoonDays < 0 {
		return fmt.Errorf("TRIAL_EXPIRING_SOON_DAYS must not be negative")
	}
	return nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" sslmode=" + c.SSLMode
}

// Address returns the listen address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsProd returns true if running in production environment
func (c *ServerConfig) IsProd() bool {
	return c.Environment == "prod" || c.Environment == "production"
}

// Helper functions

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}

func getSliceEnv(key string, fallback []string) []string {
	if value, exists := os.LookupEnv(key); exists {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
