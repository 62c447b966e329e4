// Package config loads application configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mentorhub/mentor-scheduling/internal/infrastructure/external/mail"
	"github.com/mentorhub/mentor-scheduling/internal/infrastructure/persistence/postgres"
	"github.com/mentorhub/mentor-scheduling/internal/infrastructure/persistence/redis"
	httpserver "github.com/mentorhub/mentor-scheduling/internal/interface/http"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig
	Database  postgres.Config
	Redis     redis.Config
	Mail      mail.Config
	HTTP      httpserver.Config
	Scheduler SchedulerConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string
	Environment Environment

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// LogFormat is json or text.
	LogFormat string

	// ShutdownTimeout bounds graceful shutdown of the binaries.
	ShutdownTimeout time.Duration
}

// SchedulerConfig holds background worker settings.
type SchedulerConfig struct {
	// Enabled turns the background scheduler on in the worker binary.
	Enabled bool

	// ReminderInterval is the cycle interval of the session reminder job.
	ReminderInterval time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:            getEnv("APP_NAME", "mentor-scheduling"),
			Environment:     Environment(getEnv("APP_ENV", string(EnvDevelopment))),
			LogLevel:        getEnv("LOG_LEVEL", "info"),
			LogFormat:       getEnv("LOG_FORMAT", "json"),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Database:  loadDatabaseConfig(),
		Redis:     loadRedisConfig(),
		Mail:      loadMailConfig(),
		HTTP:      loadHTTPConfig(),
		Scheduler: loadSchedulerConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDatabaseConfig() postgres.Config {
	return postgres.Config{
		URL:             getEnv("DATABASE_URL", ""),
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvInt("DB_PORT", 5432),
		Database:        getEnv("DB_NAME", "mentorhub"),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxConns:        int32(getEnvInt("DB_MAX_CONNS", 10)),
		MinConns:        int32(getEnvInt("DB_MIN_CONNS", 2)),
		MaxConnLifetime: getEnvDuration("DB_CONN_LIFETIME", time.Hour),
		MaxConnIdleTime: getEnvDuration("DB_CONN_IDLE_TIME", 30*time.Minute),
		ConnectTimeout:  getEnvDuration("DB_CONNECT_TIMEOUT", 10*time.Second),
	}
}

func loadRedisConfig() redis.Config {
	cfg := redis.DefaultConfig()
	cfg.Host = getEnv("REDIS_HOST", cfg.Host)
	cfg.Port = getEnvInt("REDIS_PORT", cfg.Port)
	cfg.Password = getEnv("REDIS_PASSWORD", "")
	cfg.DB = getEnvInt("REDIS_DB", 0)
	cfg.Disabled = getEnvBool("REDIS_DISABLED", false)
	return cfg
}

func loadMailConfig() mail.Config {
	cfg := mail.DefaultConfig()
	cfg.Host = getEnv("SMTP_HOST", "")
	cfg.Port = getEnvInt("SMTP_PORT", cfg.Port)
	cfg.Username = getEnv("SMTP_USERNAME", "")
	cfg.Password = getEnv("SMTP_PASSWORD", "")
	cfg.From = getEnv("SMTP_FROM", "")
	cfg.Timeout = getEnvDuration("SMTP_TIMEOUT", cfg.Timeout)
	cfg.RetryAttempts = getEnvInt("SMTP_RETRY_ATTEMPTS", cfg.RetryAttempts)
	cfg.Disabled = getEnvBool("SMTP_DISABLED", false)
	return cfg
}

func loadHTTPConfig() httpserver.Config {
	cfg := httpserver.DefaultConfig()
	cfg.Host = getEnv("HTTP_HOST", cfg.Host)
	cfg.Port = getEnvInt("HTTP_PORT", cfg.Port)
	cfg.ReadTimeout = getEnvDuration("HTTP_READ_TIMEOUT", cfg.ReadTimeout)
	cfg.WriteTimeout = getEnvDuration("HTTP_WRITE_TIMEOUT", cfg.WriteTimeout)
	cfg.EnableCORS = getEnvBool("HTTP_ENABLE_CORS", cfg.EnableCORS)
	if origins := getEnv("HTTP_ALLOWED_ORIGINS", ""); origins != "" {
		cfg.AllowedOrigins = strings.Split(origins, ",")
	}
	return cfg
}

func loadSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:          getEnvBool("SCHEDULER_ENABLED", true),
		ReminderInterval: getEnvDuration("SCHEDULER_REMINDER_INTERVAL", 5*time.Minute),
	}
}

// Validate checks the loaded configuration for inconsistencies.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		return fmt.Errorf("config: unknown environment %q", c.App.Environment)
	}

	if c.Database.URL == "" && c.Database.Host == "" {
		return fmt.Errorf("config: DATABASE_URL or DB_HOST is required")
	}
	if c.Scheduler.ReminderInterval <= 0 {
		return fmt.Errorf("config: SCHEDULER_REMINDER_INTERVAL must be positive")
	}
	if err := c.Mail.Validate(); err != nil {
		// Mail is optional in development; everywhere else a broken SMTP
		// setup should fail fast.
		if c.App.Environment != EnvDevelopment {
			return err
		}
		c.Mail.Disabled = true
	}
	return nil
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

// ══════════════════════════════════════════════════════════════════════════════
// ENV HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func getEnv(key, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
