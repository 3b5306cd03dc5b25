// Package config loads service configuration from environment variables.
//
// A .env file in the working directory is loaded first (if present) via godotenv;
// real environment variables always take precedence over values in the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// MinSecretLength is the minimum accepted length of JWT_SECRET in bytes.
const MinSecretLength = 32

// Config holds all runtime settings for the records service.
type Config struct {
	Service   ServiceConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Logging   LoggingConfig
	Tracing   TracingConfig
	Profiling ProfilingConfig
	Shutdown  ShutdownConfig
}

// ServiceConfig identifies the running service.
type ServiceConfig struct {
	Name    string
	Version string
	Env     string
	Port    string
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	MaxConns int32
}

// AuthConfig holds the authentication core settings.
//
// JWTSecret must never be logged; use String() on Config for diagnostics.
type AuthConfig struct {
	JWTSecret         string
	BcryptCost        int
	TokenLeeway       string
	UserLookupTimeout string
}

// LoggingConfig controls zerolog output.
type LoggingConfig struct {
	Level string
}

// TracingConfig controls the OpenTelemetry exporter.
type TracingConfig struct {
	Enabled    bool
	Endpoint   string
	SampleRate float64
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	Enabled  bool
	Endpoint string
}

// ShutdownConfig controls graceful shutdown timings.
type ShutdownConfig struct {
	Timeout             string
	ReadinessDrainDelay string
}

// Load reads configuration from the environment, applying defaults for
// everything except the signing secret.
func Load() *Config {
	// Missing .env is fine; environment variables are the source of truth.
	_ = godotenv.Load()

	return &Config{
		Service: ServiceConfig{
			Name:    getEnv("SERVICE_NAME", "records-service"),
			Version: getEnv("VERSION", "dev"),
			Env:     getEnv("ENV", "development"),
			Port:    getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "records"),
			User:     getEnv("DB_USER", "records"),
			Password: getEnv("DB_PASSWORD", ""),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(getEnvInt("DB_POOL_MAX_CONNECTIONS", 10)),
		},
		Auth: AuthConfig{
			JWTSecret:         os.Getenv("JWT_SECRET"),
			BcryptCost:        getEnvInt("BCRYPT_COST", bcrypt.DefaultCost),
			TokenLeeway:       getEnv("TOKEN_LEEWAY", "0s"),
			UserLookupTimeout: getEnv("USER_LOOKUP_TIMEOUT", "5s"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Tracing: TracingConfig{
			Enabled:    getEnvBool("TRACING_ENABLED", false),
			Endpoint:   getEnv("OTEL_COLLECTOR_ENDPOINT", "localhost:4318"),
			SampleRate: getEnvFloat("OTEL_SAMPLE_RATE", 0.1),
		},
		Profiling: ProfilingConfig{
			Enabled:  getEnvBool("PROFILING_ENABLED", false),
			Endpoint: getEnv("PYROSCOPE_ENDPOINT", "http://localhost:4040"),
		},
		Shutdown: ShutdownConfig{
			Timeout:             getEnv("SHUTDOWN_TIMEOUT", "10s"),
			ReadinessDrainDelay: getEnv("READINESS_DRAIN_DELAY", "0s"),
		},
	}
}

// Validate reports the first configuration problem found.
// A missing signing secret is a startup error; there is no built-in fallback.
func (c *Config) Validate() error {
	var errs []error

	if c.Service.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if len(c.Auth.JWTSecret) < MinSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET too short (min %d bytes)", MinSecretLength))
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, c.Auth.BcryptCost))
	}
	if d, err := time.ParseDuration(c.Auth.TokenLeeway); err != nil || d < 0 {
		errs = append(errs, fmt.Errorf("invalid TOKEN_LEEWAY %q", c.Auth.TokenLeeway))
	}
	if d, err := time.ParseDuration(c.Auth.UserLookupTimeout); err != nil || d <= 0 {
		errs = append(errs, fmt.Errorf("invalid USER_LOOKUP_TIMEOUT %q", c.Auth.UserLookupTimeout))
	}
	if _, err := time.ParseDuration(c.Shutdown.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_TIMEOUT %q", c.Shutdown.Timeout))
	}
	if _, err := time.ParseDuration(c.Shutdown.ReadinessDrainDelay); err != nil {
		errs = append(errs, fmt.Errorf("invalid READINESS_DRAIN_DELAY %q", c.Shutdown.ReadinessDrainDelay))
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("OTEL_SAMPLE_RATE must be within [0, 1], got %v", c.Tracing.SampleRate))
	}

	return errors.Join(errs...)
}

// DSN builds the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port,
		c.Database.Name, c.Database.SSLMode)
}

// GetTokenLeewayDuration returns the clock-skew tolerance for token expiry.
func (c *Config) GetTokenLeewayDuration() time.Duration {
	return parseDurationOr(c.Auth.TokenLeeway, 0)
}

// GetUserLookupTimeoutDuration returns the bound applied to principal resolution.
func (c *Config) GetUserLookupTimeoutDuration() time.Duration {
	return parseDurationOr(c.Auth.UserLookupTimeout, 5*time.Second)
}

// GetShutdownTimeoutDuration returns the graceful shutdown timeout.
func (c *Config) GetShutdownTimeoutDuration() time.Duration {
	return parseDurationOr(c.Shutdown.Timeout, 10*time.Second)
}

// GetReadinessDrainDelayDuration returns how long /ready reports 503 before HTTP shutdown.
func (c *Config) GetReadinessDrainDelayDuration() time.Duration {
	return parseDurationOr(c.Shutdown.ReadinessDrainDelay, 0)
}

// String renders the configuration with secrets redacted.
func (c *Config) String() string {
	secret := "<unset>"
	if c.Auth.JWTSecret != "" {
		secret = "<redacted>"
	}
	return fmt.Sprintf("service=%s version=%s env=%s port=%s db=%s@%s:%s/%s jwt_secret=%s bcrypt_cost=%d",
		c.Service.Name, c.Service.Version, c.Service.Env, c.Service.Port,
		c.Database.User, c.Database.Host, c.Database.Port, c.Database.Name,
		secret, c.Auth.BcryptCost)
}

func parseDurationOr(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func getEnvFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return def
	}
	return v
}
