package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET_KEY", "jwt-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 25, cfg.Database.MaxConns)
	assert.Equal(t, 5*time.Minute, cfg.Database.MaxConnIdleTime)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, 60, cfg.Deadline.EvaluationPeriodDays)
	assert.Equal(t, 24*time.Hour, cfg.Deadline.SweepInterval)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.App.CORSOrigins)
	assert.Empty(t, cfg.SMTP.Host)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("EVALUATION_PERIOD_DAYS", "30")
	t.Setenv("DEADLINE_SWEEP_INTERVAL", "1h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("RATE_LIMIT_BURST", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Deadline.EvaluationPeriodDays)
	assert.Equal(t, time.Hour, cfg.Deadline.SweepInterval)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.App.CORSOrigins)
	assert.Equal(t, 3, cfg.RateLimit.Burst)
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"DB_PORT":                 "not-a-number",
		"DEADLINE_SWEEP_INTERVAL": "daily",
		"RUN_MIGRATIONS":          "maybe",
		"DB_MAX_CONNS":            "many",
		"DB_MAX_CONN_IDLE_TIME":   "forever",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(key, value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidate_RequiresSecrets(t *testing.T) {
	cfg := &Config{
		JWT:       JWTConfig{Secret: "x", AccessExpiration: "1h", RefreshExpiration: "2h"},
		Deadline:  DeadlineConfig{EvaluationPeriodDays: 60, SweepInterval: time.Hour},
		RateLimit: RateLimitConfig{RequestsPerSecond: 1, Burst: 1},
	}
	assert.EqualError(t, cfg.Validate(), "DB_PASSWORD is required")

	cfg.Database.Password = "pw"
	assert.NoError(t, cfg.Validate())

	cfg.JWT.Secret = ""
	assert.EqualError(t, cfg.Validate(), "JWT_SECRET_KEY is required")
}

func TestDatabaseURL(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: 5433, User: "u", Password: "p", Name: "reviews", SSLMode: "disable",
	}}
	assert.Equal(t, "postgres://u:p@db:5433/reviews?sslmode=disable", cfg.DatabaseURL())
}
