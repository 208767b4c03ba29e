package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Upstreams     UpstreamsConfig
	Auth          AuthConfig
	Refresh       RefreshConfig
	Observability ObservabilityConfig
	RateLimit     RateLimitConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	StaticDir    string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// UpstreamsConfig holds base URLs and credentials for the backend services
// the dashboard aggregates: lead automation, SDR platform, billing calculator
// and the reporting service.
type UpstreamsConfig struct {
	LeadsBaseURL  string
	LeadsAPIKey   string
	SDRBaseURL    string
	SDRAPIKey     string
	CalcBaseURL   string
	CalcAPIKey    string
	ReportBaseURL string
	ReportAPIKey  string
	Timeout       time.Duration
}

// AuthConfig holds operator authentication configuration
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// RefreshConfig holds background refresh intervals
type RefreshConfig struct {
	DashboardInterval time.Duration
	WhatsAppInterval  time.Duration
}

// ObservabilityConfig holds logging and tracing configuration
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string
	OTELEnabled    bool
	ServiceName    string
	ServiceVersion string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  parseDuration("SERVER_READ_TIMEOUT", "15s"),
			WriteTimeout: parseDuration("SERVER_WRITE_TIMEOUT", "15s"),
			IdleTimeout:  parseDuration("SERVER_IDLE_TIMEOUT", "60s"),
			StaticDir:    getEnv("SERVER_STATIC_DIR", "web/dist"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "opsdash"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "opsdash"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    parseInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    parseInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: parseDuration("DB_CONN_MAX_LIFETIME", "5m"),
		},
		Upstreams: UpstreamsConfig{
			LeadsBaseURL:  getEnv("LEADS_API_URL", "http://localhost:8090"),
			LeadsAPIKey:   getEnv("LEADS_API_KEY", ""),
			SDRBaseURL:    getEnv("SDR_API_URL", "http://localhost:8091"),
			SDRAPIKey:     getEnv("SDR_API_KEY", ""),
			CalcBaseURL:   getEnv("CALC_API_URL", "http://localhost:8092"),
			CalcAPIKey:    getEnv("CALC_API_KEY", ""),
			ReportBaseURL: getEnv("REPORT_API_URL", "http://localhost:8093"),
			ReportAPIKey:  getEnv("REPORT_API_KEY", ""),
			Timeout:       parseDuration("UPSTREAM_TIMEOUT", "10s"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("AUTH_JWT_SECRET", ""),
			TokenTTL:  parseDuration("AUTH_TOKEN_TTL", "24h"),
		},
		Refresh: RefreshConfig{
			DashboardInterval: parseDuration("REFRESH_DASHBOARD_INTERVAL", "30s"),
			WhatsAppInterval:  parseDuration("REFRESH_WHATSAPP_INTERVAL", "5s"),
		},
		Observability: ObservabilityConfig{
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "json"),
			OTELEnabled:    parseBool("OTEL_ENABLED", false),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "opsdash"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "0.1.0"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: float64(parseInt("RATELIMIT_RPS", 20)),
			Burst:             parseInt("RATELIMIT_BURST", 40),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required")
	}
	if c.Refresh.DashboardInterval <= 0 {
		return fmt.Errorf("REFRESH_DASHBOARD_INTERVAL must be positive")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func parseBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func parseDuration(key string, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	d, err := time.ParseDuration(value)
	if err != nil {
		// Fallback to default
		d, _ = time.ParseDuration(defaultValue)
	}
	return d
}
