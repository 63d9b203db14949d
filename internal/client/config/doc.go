// Package config loads runtime configuration for the babylog CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file (or the one named by -env-file), exported to the process
//     environment without overriding existing variables.
//  3. Optional JSON file selected via -c or -config.
//  4. BABYLOG_* environment variables.
//  5. Command-line flags, which override everything else.
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "10s" or
// integer nanoseconds:
//
//	{
//	  "db_path": "babylog.db",
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "http_addr": "127.0.0.1:8686",
//	  "time_zone": "Europe/Riga",
//	  "log_level": "info",
//	  "request_timeout": "10s"
//	}
//
// # Environment
//
//	BABYLOG_DB_PATH, BABYLOG_SERVER_ADDR, BABYLOG_HTTP_ADDR, BABYLOG_TZ,
//	BABYLOG_LOG_LEVEL, BABYLOG_LOG_FORMAT, BABYLOG_REQUEST_TIMEOUT
package config
