package config

import "time"

// Application constants
const (
	// Application Info
	AppName    = "herdbook"
	AppVersion = "0.3.0"

	// EnvPrefix namespaces every environment variable, e.g. HERDBOOK_SERVER_PORT.
	EnvPrefix = "HERDBOOK"

	// ConfigFileEnv points at an explicit YAML config file.
	ConfigFileEnv = "HERDBOOK_CONFIG"

	// File Paths (relative to the data root)
	DefaultDataDir    = "data"
	DefaultExportsDir = "exports"
	DefaultCacheDir   = "cache"
	DefaultLogsDir    = "logs"

	// Export limits
	DefaultMaxRecords   = 50000
	DefaultMaxBodyBytes = 10 << 20

	// Role lookup
	DefaultRoleCheckTimeout = 5 * time.Second
	DefaultExportRole       = "manager"

	// Alerts
	DefaultAlertTick       = time.Hour
	DefaultAlertSendBuffer = 64
	DefaultMaxWatches      = 500
	WebSocketPingPeriod    = 30 * time.Second
	WebSocketPongWait      = 60 * time.Second

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)
