package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/babylog/internal/flagx"
)

// flagNames lists every spelling parseFlags understands. The CLI declares
// the same flags so cobra accepts them.
var flagNames = []string{
	"-d", "--d", "-db", "--db",
	"-a", "--a", "-server", "--server",
	"-http", "--http",
	"-tz", "--tz",
	"-log-level", "--log-level",
	"-log-format", "--log-format",
	"-timeout", "--timeout",
}

// parseFlags overlays cfg with the flags found in args. Anything it does not
// own is filtered out first.
//
//	-d, --db string          SQLite database file
//	-a, --server string      address:port of the sync server
//	--http string            local HTTP API listen address
//	--tz string              time zone for calendar days
//	--log-level string       debug, info, warn or error
//	--log-format string      text or json
//	--timeout duration       sync request timeout
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("babylog", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "database file")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "database file")
	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "sync server address")
	fs.StringVar(&cfg.ServerEndpointAddr, "server", cfg.ServerEndpointAddr, "sync server address")
	fs.StringVar(&cfg.HTTPAddr, "http", cfg.HTTPAddr, "local http api address")
	fs.StringVar(&cfg.TimeZone, "tz", cfg.TimeZone, "time zone")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "sync request timeout")

	if err := fs.Parse(flagx.FilterArgs(args, flagNames)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
