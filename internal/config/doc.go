// Package config provides centralized configuration management for herdbook.
// It handles loading configuration from multiple sources, validation, and the
// resolution of every file system path the service writes to.
//
// # Configuration Sources
//
// Configuration is assembled in the following order, later sources winning:
//
//  1. Default() values
//  2. A YAML file (HERDBOOK_CONFIG, or config.yaml / configs/config.yaml)
//  3. Environment variables prefixed with HERDBOOK_
//
// # Environment Variables
//
// Nested sections map onto underscore separated names:
//
//	HERDBOOK_SERVER_PORT=8080
//	HERDBOOK_LOGGING_LEVEL=debug
//	HERDBOOK_AUTH_ENABLED=true
//	HERDBOOK_AUTH_STATIC_ROLES=manager:u-1|u-2,vet:u-3
//	HERDBOOK_ALERTS_TICK_INTERVAL=15m
//
// # Path Management
//
// Paths is the single source of truth for directories:
//
//	paths, err := cfg.ResolvePaths()
//	exportPath := paths.GetExportPath("herd.csv")
package config
