package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/babylog/internal/flagx"
	"github.com/dmitrijs2005/babylog/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration file.
// Durations accept "720h" style strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC      *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN           *string         `json:"database_dsn"`
	UseMemoryStore        *bool           `json:"use_memory_store"`
	SecretKey             *string         `json:"secret_key"`
	TokenValidityDuration *timex.Duration `json:"token_validity_duration"`
	S3AccessKey           *string         `json:"s3_access_key"`
	S3SecretKey           *string         `json:"s3_secret_key"`
	S3Bucket              *string         `json:"s3_bucket"`
	S3Region              *string         `json:"s3_region"`
	S3BaseEndpoint        *string         `json:"s3_base_endpoint"`
	OTelEndpoint          *string         `json:"otel_endpoint"`
	LogLevel              *string         `json:"log_level"`
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

	set(&cfg.EndpointAddrGRPC, jc.EndpointAddrGRPC)
	set(&cfg.DatabaseDSN, jc.DatabaseDSN)
	set(&cfg.UseMemoryStore, jc.UseMemoryStore)
	set(&cfg.SecretKey, jc.SecretKey)
	if jc.TokenValidityDuration != nil {
		cfg.TokenValidityDuration = jc.TokenValidityDuration.Duration
	}
	set(&cfg.S3AccessKey, jc.S3AccessKey)
	set(&cfg.S3SecretKey, jc.S3SecretKey)
	set(&cfg.S3Bucket, jc.S3Bucket)
	set(&cfg.S3Region, jc.S3Region)
	set(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	set(&cfg.OTelEndpoint, jc.OTelEndpoint)
	set(&cfg.LogLevel, jc.LogLevel)
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
