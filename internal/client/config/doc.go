// Package config loads runtime configuration for the devsync CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment: DEVSYNC_* variables, seeded from a .env file if present.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   REST API base URL
//	-n string   notifications websocket URL
//	-d string   local database path
//	-p int      page size
//	-t int      request timeout (seconds)
//	-i int      online status check interval (seconds)
//
// # JSON schema
//
//	{
//	  "api_base_url": "http://localhost:8080/api",
//	  "notifications_url": "ws://localhost:8080/notifications",
//	  "database_path": "devsync.db",
//	  "page_size": 10,
//	  "request_timeout": "10s",
//	  "reconnect_delay": "2s",
//	  "online_check_interval": "3s",
//	  "log_backend": "zap",
//	  "log_level": "info",
//	  "log_format": "console"
//	}
package config
