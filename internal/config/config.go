package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/wxyClark/LaravelX-AI/pkg/jwt"
)

// minProductionSecretLen is the HS256 key length required outside development
const minProductionSecretLen = 32

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Log        LogConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Revocation RevocationConfig
	RateLimit  RateLimitConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           string
	Env            string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// DatabaseConfig holds SurrealDB connection settings
type DatabaseConfig struct {
	Host      string
	Port      string
	Namespace string
	Database  string
	User      string
	Password  string
}

// JWTConfig holds token signing settings
type JWTConfig struct {
	Secret string
	Issuer string
}

// RevocationConfig holds the optional Redis denylist settings
type RevocationConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// RateLimitConfig holds per-client throttling for the auth routes
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// Load reads configuration from an optional config file and environment
// variables. Environment variables win; SERVER_PORT overrides server.port.
func Load() (*Config, error) {
	v := newViper()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return FromViper(v), nil
}

// FromViper builds a Config from an already populated viper instance
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("server.port"),
			Env:            v.GetString("server.env"),
			ReadTimeout:    v.GetDuration("server.read_timeout"),
			WriteTimeout:   v.GetDuration("server.write_timeout"),
			AllowedOrigins: stringList(v, "cors.allowed_origins"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
		Database: DatabaseConfig{
			Host:      v.GetString("db.host"),
			Port:      v.GetString("db.port"),
			Namespace: v.GetString("db.namespace"),
			Database:  v.GetString("db.database"),
			User:      v.GetString("db.user"),
			Password:  v.GetString("db.password"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			Issuer: v.GetString("jwt.issuer"),
		},
		Revocation: RevocationConfig{
			Enabled:       v.GetBool("revocation.enabled"),
			RedisAddr:     v.GetString("redis.addr"),
			RedisPassword: v.GetString("redis.password"),
			RedisDB:       v.GetInt("redis.db"),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("rate_limit.rps"),
			Burst: v.GetInt("rate_limit.burst"),
		},
	}
}

// newViper returns a viper instance with defaults and env binding applied
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("log.level", "info")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "8000")
	v.SetDefault("db.namespace", "sso")
	v.SetDefault("db.database", "main")
	v.SetDefault("db.user", "root")
	v.SetDefault("db.password", "root")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "http://localhost")

	v.SetDefault("revocation.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("rate_limit.rps", 1.0)
	v.SetDefault("rate_limit.burst", 60)

	return v
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// TokenConfig returns the signing material for jwt.NewCodec. The returned
// value owns its own copy of the secret.
func (c *Config) TokenConfig() *jwt.Config {
	return &jwt.Config{
		Secret: []byte(c.JWT.Secret),
		Issuer: c.JWT.Issuer,
	}
}

// LogLevel maps LOG_LEVEL onto a slog level, defaulting to info
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	// Server validation
	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.Server.Env != "development" && c.Server.Env != "production" && c.Server.Env != "test" {
		errs = append(errs, fmt.Errorf("SERVER_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must have at least one origin"))
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got '%s'", c.Log.Level))
	}

	// Database validation
	if c.Database.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.Database.Port == "" {
		errs = append(errs, errors.New("DB_PORT is required"))
	}
	if c.Database.Namespace == "" {
		errs = append(errs, errors.New("DB_NAMESPACE is required"))
	}
	if c.Database.Database == "" {
		errs = append(errs, errors.New("DB_DATABASE is required"))
	}

	// JWT validation
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if c.IsProduction() && len(c.JWT.Secret) < minProductionSecretLen {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes in production", minProductionSecretLen))
	}

	// Revocation validation
	if c.Revocation.Enabled && c.Revocation.RedisAddr == "" {
		errs = append(errs, errors.New("REDIS_ADDR is required when REVOCATION_ENABLED is true"))
	}

	// Rate limit validation
	if c.RateLimit.RPS <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS must be positive"))
	}
	if c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_BURST must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// stringList reads a list that may come from YAML or a comma separated
// environment variable
func stringList(v *viper.Viper, key string) []string {
	raw, ok := v.Get(key).(string)
	if !ok {
		return v.GetStringSlice(key)
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
