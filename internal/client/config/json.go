package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/babylog/internal/flagx"
	"github.com/dmitrijs2005/babylog/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Missing keys
// leave the corresponding Config field untouched.
type JsonConfig struct {
	DBPath             *string         `json:"db_path"`
	ServerEndpointAddr *string         `json:"server_endpoint_addr"`
	HTTPAddr           *string         `json:"http_addr"`
	TimeZone           *string         `json:"time_zone"`
	LogLevel           *string         `json:"log_level"`
	LogFormat          *string         `json:"log_format"`
	RequestTimeout     *timex.Duration `json:"request_timeout"`
}

// parseJson overlays cfg with the file named by -c/-config in args.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	set(&cfg.DBPath, jc.DBPath)
	set(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	set(&cfg.HTTPAddr, jc.HTTPAddr)
	set(&cfg.TimeZone, jc.TimeZone)
	set(&cfg.LogLevel, jc.LogLevel)
	set(&cfg.LogFormat, jc.LogFormat)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	return nil
}

func set(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
