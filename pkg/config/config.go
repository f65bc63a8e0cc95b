package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bramblewiki/bramble/pkg/observability"
)

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Security      SecurityConfig
	Cache         CacheConfig
	Audit         AuditConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// DatabaseConfig holds the SQLite database settings backing users, groups,
// and the audit trail.
type DatabaseConfig struct {
	Path string
}

// SecurityConfig holds the authorization engine's settings.
type SecurityConfig struct {
	// PolicyPath is the YAML policy file; empty means the built-in
	// default policy.
	PolicyPath string
	// WatchPolicy reloads the policy file on change.
	WatchPolicy bool
	// RoleCacheSize bounds the per-session effective-role cache.
	RoleCacheSize int
	// SessionCookie is the cookie carrying the session ID.
	SessionCookie string
}

// CacheConfig holds decision cache settings.
type CacheConfig struct {
	// Size bounds the in-process decision cache.
	Size int
	// TTL bounds how long the Redis tier keeps a decision.
	TTL time.Duration
	// RedisAddr enables the shared Redis tier when non-empty.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// AuditConfig holds audit trail settings.
type AuditConfig struct {
	Enabled bool
	// FilePath is the JSON-lines audit log; empty disables the file sink.
	FilePath string
	// Database mirrors records into the SQL audit table.
	Database bool
}

// ObservabilityConfig holds observability settings.
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool

	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("BRAMBLE_HOST", "0.0.0.0"),
			Port:            getEnv("BRAMBLE_PORT", "8080"),
			ReadTimeout:     getEnvDuration("BRAMBLE_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("BRAMBLE_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("BRAMBLE_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("BRAMBLE_SHUTDOWN_TIMEOUT", 30*time.Second),
			HealthPort:      getEnv("BRAMBLE_HEALTH_PORT", "9090"),
		},
		Database: DatabaseConfig{
			Path: getEnv("BRAMBLE_DB_PATH", "bramble.db"),
		},
		Security: SecurityConfig{
			PolicyPath:    getEnv("BRAMBLE_POLICY_PATH", ""),
			WatchPolicy:   getEnvBool("BRAMBLE_POLICY_WATCH", true),
			RoleCacheSize: getEnvInt("BRAMBLE_ROLE_CACHE_SIZE", 1024),
			SessionCookie: getEnv("BRAMBLE_SESSION_COOKIE", "bramble_session"),
		},
		Cache: CacheConfig{
			Size:          getEnvInt("BRAMBLE_DECISION_CACHE_SIZE", 4096),
			TTL:           getEnvDuration("BRAMBLE_DECISION_CACHE_TTL", 5*time.Minute),
			RedisAddr:     getEnv("BRAMBLE_REDIS_ADDR", ""),
			RedisPassword: getEnv("BRAMBLE_REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("BRAMBLE_REDIS_DB", 0),
		},
		Audit: AuditConfig{
			Enabled:  getEnvBool("BRAMBLE_AUDIT_ENABLED", true),
			FilePath: getEnv("BRAMBLE_AUDIT_FILE", ""),
			Database: getEnvBool("BRAMBLE_AUDIT_DATABASE", true),
		},
		Observability: ObservabilityConfig{
			LogLevel:           observability.ParseLevel(getEnv("BRAMBLE_LOG_LEVEL", "info")),
			MetricsEnabled:     getEnvBool("BRAMBLE_METRICS_ENABLED", true),
			OTelEnabled:        getEnvBool("BRAMBLE_OTEL_ENABLED", false),
			OTelEndpoint:       getEnv("BRAMBLE_OTEL_ENDPOINT", "localhost:4317"),
			OTelServiceName:    getEnv("BRAMBLE_OTEL_SERVICE_NAME", "bramble"),
			OTelServiceVersion: getEnv("BRAMBLE_OTEL_SERVICE_VERSION", "dev"),
			OTelInsecure:       getEnvBool("BRAMBLE_OTEL_INSECURE", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("invalid server port %q", c.Server.Port)
	}
	if _, err := strconv.Atoi(c.Server.HealthPort); err != nil {
		return fmt.Errorf("invalid health port %q", c.Server.HealthPort)
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must differ")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path must not be empty")
	}
	if c.Security.RoleCacheSize <= 0 {
		return fmt.Errorf("role cache size must be positive")
	}
	if c.Cache.Size <= 0 {
		return fmt.Errorf("decision cache size must be positive")
	}
	if c.Security.WatchPolicy && c.Security.PolicyPath == "" {
		// Watching the built-in policy is meaningless but harmless; just
		// turn it off.
		c.Security.WatchPolicy = false
	}
	if c.Observability.OTelEnabled && c.Observability.OTelEndpoint == "" {
		return fmt.Errorf("OTel endpoint required when OTel is enabled")
	}
	return nil
}

// Addr returns the main listen address.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// HealthAddr returns the health/metrics listen address.
func (c *ServerConfig) HealthAddr() string {
	return c.Host + ":" + c.HealthPort
}

// getEnv returns an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
