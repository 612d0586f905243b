package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Database drivers understood by the bootstrap
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port           string   `yaml:"port" env:"SERVER_PORT"`
		Mode           string   `yaml:"mode" env:"SERVER_MODE"`
		StoragePath    string   `yaml:"storage_path" env:"SERVER_STORAGE_PATH"`
		MaxUploadBytes int64    `yaml:"max_upload_bytes" env:"SERVER_MAX_UPLOAD_BYTES"`
		CookieSecure   bool     `yaml:"cookie_secure" env:"SERVER_COOKIE_SECURE"`
		AllowedOrigins []string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS"`
	} `yaml:"server"`

	Database struct {
		Driver            string `yaml:"driver" env:"DB_DRIVER"`
		Host              string `yaml:"host" env:"DB_HOST"`
		Port              string `yaml:"port" env:"DB_PORT"`
		User              string `yaml:"user" env:"DB_USER"`
		Password          string `yaml:"password" env:"DB_PASSWORD"`
		DBName            string `yaml:"dbname" env:"DB_NAME"`
		SSLMode           string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns      int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns      int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime   string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		ConnMaxIdleTime   string `yaml:"conn_max_idle_time" env:"DB_CONN_MAX_IDLE_TIME"`
		HealthCheckPeriod string `yaml:"health_check_period" env:"DB_HEALTH_CHECK_PERIOD"`
		AutoMigrate       bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE"`
	} `yaml:"database"`

	JWT struct {
		Secret            string `yaml:"secret" env:"JWT_SECRET"`
		SessionExpiration string `yaml:"session_expiration" env:"JWT_SESSION_EXPIRATION"`
		Issuer            string `yaml:"issuer" env:"JWT_ISSUER"`
		CookieName        string `yaml:"cookie_name" env:"JWT_COOKIE_NAME"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Registration struct {
		EnforceCapacity bool `yaml:"enforce_capacity" env:"REGISTRATION_ENFORCE_CAPACITY"`
		ValidateFields  bool `yaml:"validate_fields" env:"REGISTRATION_VALIDATE_FIELDS"`
	} `yaml:"registration"`

	GenAI struct {
		Endpoint string `yaml:"endpoint" env:"GENAI_ENDPOINT"`
		APIKey   string `yaml:"api_key" env:"GENAI_API_KEY"`
		Model    string `yaml:"model" env:"GENAI_MODEL"`
		Timeout  string `yaml:"timeout" env:"GENAI_TIMEOUT"`
	} `yaml:"genai"`

	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB"`
	} `yaml:"redis"`

	RateLimit struct {
		LoginPerMinute int `yaml:"login_per_minute" env:"RATE_LIMIT_LOGIN_PER_MINUTE"`
		LoginBurst     int `yaml:"login_burst" env:"RATE_LIMIT_LOGIN_BURST"`
	} `yaml:"rate_limit"`

	Admin struct {
		Name     string `yaml:"name" env:"ADMIN_NAME"`
		Email    string `yaml:"email" env:"ADMIN_EMAIL"`
		Password string `yaml:"password" env:"ADMIN_PASSWORD"`
	} `yaml:"admin"`

	Metrics struct {
		Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED"`
		Path    string `yaml:"path" env:"METRICS_PATH"`
	} `yaml:"metrics"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables
	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.StoragePath = "./storage"
	config.Server.MaxUploadBytes = 20 << 20
	config.Server.AllowedOrigins = []string{"http://localhost:3000"}

	// Database defaults
	config.Database.Driver = DriverPostgres
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "portal"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.ConnMaxIdleTime = "30m"
	config.Database.HealthCheckPeriod = "1m"
	config.Database.AutoMigrate = true

	// JWT defaults
	config.JWT.SessionExpiration = "24h"
	config.JWT.Issuer = "deptportal"
	config.JWT.CookieName = "session"

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Registration.EnforceCapacity = true
	config.Registration.ValidateFields = true

	config.GenAI.Endpoint = "https://generativelanguage.googleapis.com/v1beta"
	config.GenAI.Model = "gemini-1.5-flash"
	config.GenAI.Timeout = "30s"

	config.RateLimit.LoginPerMinute = 10
	config.RateLimit.LoginBurst = 5

	config.Admin.Name = "Administrator"

	config.Metrics.Enabled = true
	config.Metrics.Path = "/metrics"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case DriverPostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}

	for name, raw := range map[string]string{
		"conn_max_lifetime":   config.Database.ConnMaxLifetime,
		"conn_max_idle_time":  config.Database.ConnMaxIdleTime,
		"health_check_period": config.Database.HealthCheckPeriod,
	} {
		if raw == "" {
			continue
		}
		if _, err := time.ParseDuration(raw); err != nil {
			return fmt.Errorf("invalid database %s: %w", name, err)
		}
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.SessionExpiration); err != nil {
		return fmt.Errorf("invalid JWT session expiration format: %w", err)
	}

	if _, err := time.ParseDuration(config.GenAI.Timeout); err != nil {
		return fmt.Errorf("invalid genai timeout format: %w", err)
	}

	if config.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// SessionTTL returns the parsed session lifetime
func (c *Config) SessionTTL() time.Duration {
	d, err := time.ParseDuration(c.JWT.SessionExpiration)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// GenAITimeout returns the parsed outbound AI timeout
func (c *Config) GenAITimeout() time.Duration {
	d, err := time.ParseDuration(c.GenAI.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}
