package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/babylog/internal/flagx"
)

var flagNames = []string{
	"-a", "-d", "-s", "-t", "-u", "-p", "-b", "-g", "-e",
	"-memory", "--memory",
	"-otel", "--otel",
	"-log-level", "--log-level",
}

// parseFlags populates cfg from command-line flags.
//
//	-a string       gRPC bind address (e.g., ":50051")
//	-d string       PostgreSQL DSN
//	-memory         use the in-memory store
//	-s string       JWT HMAC secret key
//	-t duration     token validity (e.g., "8760h")
//	-u string       S3 access key
//	-p string       S3 secret key
//	-b string       S3 bucket name
//	-g string       S3 region
//	-e string       S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-otel string    OTLP/HTTP collector URL
//	-log-level      debug, info, warn or error
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("babylog-server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.EndpointAddrGRPC, "a", cfg.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.BoolVar(&cfg.UseMemoryStore, "memory", cfg.UseMemoryStore, "use the in-memory store")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "secret key")
	fs.DurationVar(&cfg.TokenValidityDuration, "t", cfg.TokenValidityDuration, "token validity")
	fs.StringVar(&cfg.S3AccessKey, "u", cfg.S3AccessKey, "S3 access key")
	fs.StringVar(&cfg.S3SecretKey, "p", cfg.S3SecretKey, "S3 secret key")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket")
	fs.StringVar(&cfg.S3Region, "g", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3BaseEndpoint, "e", cfg.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&cfg.OTelEndpoint, "otel", cfg.OTelEndpoint, "OTLP/HTTP collector URL")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, flagNames)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
