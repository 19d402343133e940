package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database  DatabaseConfig
	JWT       JWTConfig
	App       AppConfig
	SMTP      SMTPConfig
	Deadline  DeadlineConfig
	RateLimit RateLimitConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxConns        int
	MinConns        int
	MaxConnIdleTime time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	RefreshExpiration string
	AccessExpiration  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port          int
	Env           string
	LogLevel      string
	FrontendURL   string
	CORSOrigins   []string
	RunMigrations bool
}

// SMTPConfig holds outgoing mail settings. An empty Host disables sending.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// DeadlineConfig controls the evaluation window and the reminder sweep.
type DeadlineConfig struct {
	EvaluationPeriodDays int
	SweepInterval        time.Duration
	SweepEnabled         bool
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}
	maxIdle, err := time.ParseDuration(getEnv("DB_MAX_CONN_IDLE_TIME", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONN_IDLE_TIME: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            dbPort,
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		Name:            getEnv("DB_NAME", "performance_review"),
		SSLMode:         getEnv("DB_SSL_MODE", "disable"),
		MaxConns:        maxConns,
		MinConns:        minConns,
		MaxConnIdleTime: maxIdle,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	runMigrations, err := strconv.ParseBool(getEnv("RUN_MIGRATIONS", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid RUN_MIGRATIONS: %w", err)
	}

	frontendURL := getEnv("FRONTEND_URL", "http://localhost:3000")
	corsOrigins := getEnvSlice("CORS_ALLOWED_ORIGINS")
	if len(corsOrigins) == 0 {
		corsOrigins = []string{frontendURL}
	}

	config.App = AppConfig{
		Port:          appPort,
		Env:           getEnv("APP_ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		FrontendURL:   frontendURL,
		CORSOrigins:   corsOrigins,
		RunMigrations: runMigrations,
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		RefreshExpiration: getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h"),
		AccessExpiration:  getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// SMTP configuration
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     smtpPort,
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "no-reply@localhost"),
		FromName: getEnv("SMTP_FROM_NAME", "Evaluación de Desempeño"),
	}

	// Deadline configuration
	periodDays, err := strconv.Atoi(getEnv("EVALUATION_PERIOD_DAYS", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid EVALUATION_PERIOD_DAYS: %w", err)
	}

	sweepInterval, err := time.ParseDuration(getEnv("DEADLINE_SWEEP_INTERVAL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEADLINE_SWEEP_INTERVAL: %w", err)
	}

	sweepEnabled, err := strconv.ParseBool(getEnv("DEADLINE_SWEEP_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEADLINE_SWEEP_ENABLED: %w", err)
	}

	config.Deadline = DeadlineConfig{
		EvaluationPeriodDays: periodDays,
		SweepInterval:        sweepInterval,
		SweepEnabled:         sweepEnabled,
	}

	// Rate limit configuration
	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}

	burst, err := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	config.RateLimit = RateLimitConfig{
		RequestsPerSecond: rps,
		Burst:             burst,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if _, err := time.ParseDuration(c.JWT.RefreshExpiration); err != nil {
		return fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_TIME: %w", err)
	}
	if c.Deadline.EvaluationPeriodDays <= 0 {
		return fmt.Errorf("EVALUATION_PERIOD_DAYS must be positive")
	}
	if c.Deadline.SweepInterval <= 0 {
		return fmt.Errorf("DEADLINE_SWEEP_INTERVAL must be positive")
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
