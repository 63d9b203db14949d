package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the babylog CLI.
//
// Fields:
//   - DBPath: SQLite file backing the local key-value store.
//   - ServerEndpointAddr: host:port of the sync gRPC endpoint.
//   - HTTPAddr: listen address of the local HTTP API (serve command).
//   - TimeZone: IANA zone used for calendar days; "Local" means the host zone.
//   - LogLevel, LogFormat: slog level and handler ("text" or "json").
//   - RequestTimeout: per-call deadline for sync requests.
type Config struct {
	DBPath             string        `env:"DB_PATH"`
	ServerEndpointAddr string        `env:"SERVER_ADDR"`
	HTTPAddr           string        `env:"HTTP_ADDR"`
	TimeZone           string        `env:"TZ"`
	LogLevel           string        `env:"LOG_LEVEL"`
	LogFormat          string        `env:"LOG_FORMAT"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DBPath = "babylog.db"
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.HTTPAddr = "127.0.0.1:8686"
	c.TimeZone = "Local"
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.RequestTimeout = 10 * time.Second
}

// Location resolves TimeZone.
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" || c.TimeZone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// LoadConfig builds a Config from defaults, then an optional .env file, a
// JSON file, BABYLOG_* environment variables and finally the flags found in
// args. Later sources take precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := loadDotEnv(args); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
