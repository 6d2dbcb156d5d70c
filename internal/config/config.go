package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
	Auth      AuthConfig      `yaml:"auth" envconfig:"AUTH"`
	Alerts    AlertsConfig    `yaml:"alerts" envconfig:"ALERTS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// PathsConfig overrides the directories derived from the executable location.
// Relative values are resolved against the executable directory.
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR"`
	ExportsDir string `yaml:"exports_dir" envconfig:"EXPORTS_DIR"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// ExportConfig controls the tabular exporter surfaces
type ExportConfig struct {
	BOM           bool   `yaml:"bom" envconfig:"BOM"`
	MaxRecords    int    `yaml:"max_records" envconfig:"MAX_RECORDS"`
	MaxBodyBytes  int64  `yaml:"max_body_bytes" envconfig:"MAX_BODY_BYTES"`
	DefaultFormat string `yaml:"default_format" envconfig:"DEFAULT_FORMAT"`
}

// AuthConfig configures the role lookup collaborator.
// StaticRoles maps a role to a "|" separated list of user ids.
type AuthConfig struct {
	Enabled     bool              `yaml:"enabled" envconfig:"ENABLED"`
	Mode        string            `yaml:"mode" envconfig:"MODE"`
	BaseURL     string            `yaml:"base_url" envconfig:"BASE_URL"`
	APIKey      string            `yaml:"api_key" envconfig:"API_KEY"`
	ExportRole  string            `yaml:"export_role" envconfig:"EXPORT_ROLE"`
	StaticRoles map[string]string `yaml:"static_roles" envconfig:"STATIC_ROLES"`
	Timeout     time.Duration     `yaml:"timeout" envconfig:"TIMEOUT"`
}

// AlertsConfig contains configuration of the live countdown feed
type AlertsConfig struct {
	Enabled         bool          `yaml:"enabled" envconfig:"ENABLED"`
	TickInterval    time.Duration `yaml:"tick_interval" envconfig:"TICK_INTERVAL"`
	SendBuffer      int           `yaml:"send_buffer" envconfig:"SEND_BUFFER"`
	MaxWatches      int           `yaml:"max_watches" envconfig:"MAX_WATCHES"`
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// Load loads configuration from defaults, the config file and environment variables
func Load() (*Config, error) {
	cfg := Default()

	// Load from config file if exists
	if configFile := getConfigFilePath(); configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Environment variables take precedence. Fields have no default tags so
	// unset variables leave the file/default value alone.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration and normalizes enumerations
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	c.Logging.Format = DefaultLogFormat

	switch strings.ToLower(c.Logging.Output) {
	case "console", "file", "both":
		c.Logging.Output = strings.ToLower(c.Logging.Output)
	default:
		return fmt.Errorf("invalid logging output: %q", c.Logging.Output)
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/herdbook.log"
	}

	if c.Export.MaxRecords <= 0 {
		return fmt.Errorf("export max records must be positive")
	}

	if c.Export.MaxBodyBytes <= 0 {
		return fmt.Errorf("export max body bytes must be positive")
	}

	switch c.Export.DefaultFormat {
	case "csv", "xlsx":
	default:
		return fmt.Errorf("invalid default export format: %q", c.Export.DefaultFormat)
	}

	if c.Auth.Enabled {
		switch c.Auth.Mode {
		case "static":
		case "remote":
			if c.Auth.BaseURL == "" {
				return fmt.Errorf("auth base url is required in remote mode")
			}
		default:
			return fmt.Errorf("invalid auth mode: %q", c.Auth.Mode)
		}
		if c.Auth.ExportRole == "" {
			return fmt.Errorf("auth export role must be set when auth is enabled")
		}
	}

	if c.Alerts.Enabled {
		if c.Alerts.TickInterval <= 0 {
			return fmt.Errorf("alerts tick interval must be positive")
		}
		if c.Alerts.SendBuffer <= 0 {
			return fmt.Errorf("alerts send buffer must be positive")
		}
	}

	switch c.Telemetry.TraceExporter {
	case "stdout", "none":
	default:
		return fmt.Errorf("unsupported trace exporter: %q", c.Telemetry.TraceExporter)
	}

	switch c.Telemetry.MetricExporter {
	case "prometheus", "none":
	default:
		return fmt.Errorf("unsupported metric exporter: %q", c.Telemetry.MetricExporter)
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry sample ratio must be within [0, 1]")
	}

	return nil
}

// Validate exposes validation for configs built outside Load
func (c *Config) Validate() error {
	return c.validate()
}

// StaticRoleAssignments expands Auth.StaticRoles into role -> user ids
func (c *Config) StaticRoleAssignments() map[string][]string {
	out := make(map[string][]string, len(c.Auth.StaticRoles))
	for role, users := range c.Auth.StaticRoles {
		for _, user := range strings.Split(users, "|") {
			if user = strings.TrimSpace(user); user != "" {
				out[role] = append(out[role], user)
			}
		}
	}
	return out
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(ConfigFileEnv); explicit != "" {
		return explicit
	}

	// Check for config file in common locations
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:       DefaultLogLevel,
			Format:      DefaultLogFormat,
			Output:      "console",
			FilePath:    "logs/herdbook.log",
			Development: false,
		},
		Export: ExportConfig{
			BOM:           false,
			MaxRecords:    DefaultMaxRecords,
			MaxBodyBytes:  DefaultMaxBodyBytes,
			DefaultFormat: "csv",
		},
		Auth: AuthConfig{
			Enabled:    false,
			Mode:       "static",
			ExportRole: DefaultExportRole,
			Timeout:    DefaultRoleCheckTimeout,
		},
		Alerts: AlertsConfig{
			Enabled:         true,
			TickInterval:    DefaultAlertTick,
			SendBuffer:      DefaultAlertSendBuffer,
			MaxWatches:      DefaultMaxWatches,
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		Telemetry: TelemetryConfig{
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
	}
}
