package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() Config {
	var c Config
	c.LoadDefaults()
	return c
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, "secretKey", c.SecretKey)
	assert.Equal(t, 365*24*time.Hour, c.TokenValidityDuration)
	assert.Equal(t, "babylog-photos", c.S3Bucket)
	assert.Equal(t, "us-east-1", c.S3Region)
	assert.False(t, c.UseMemoryStore)
	assert.Empty(t, c.OTelEndpoint)
	require.NoError(t, c.Validate())
}

func TestLoadConfig_DefaultsWhenNothingGiven(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(defaults(), *cfg))
}

func TestParseJson(t *testing.T) {
	path := writeFile(t, "server.json", `{
		"endpoint_addr_grpc": ":6000",
		"use_memory_store": true,
		"token_validity_duration": "48h",
		"otel_endpoint": "http://otel:4318"
	}`)

	c := defaults()
	require.NoError(t, parseJson(&c, []string{"-c", path}))

	want := defaults()
	want.EndpointAddrGRPC = ":6000"
	want.UseMemoryStore = true
	want.TokenValidityDuration = 48 * time.Hour
	want.OTelEndpoint = "http://otel:4318"
	assert.Empty(t, cmp.Diff(want, c))

	bad := writeFile(t, "bad.json", `[`)
	assert.Error(t, parseJson(&c, []string{"-config", bad}))
	assert.Error(t, parseJson(&c, []string{"-config", filepath.Join(t.TempDir(), "missing.json")}))
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		mut  func(*Config)
	}{
		{
			name: "address and dsn",
			args: []string{"-a", ":7000", "-d", "postgres://x"},
			mut: func(c *Config) {
				c.EndpointAddrGRPC = ":7000"
				c.DatabaseDSN = "postgres://x"
			},
		},
		{
			name: "memory and token validity",
			args: []string{"-memory", "-t=2h"},
			mut: func(c *Config) {
				c.UseMemoryStore = true
				c.TokenValidityDuration = 2 * time.Hour
			},
		},
		{
			name: "s3 settings",
			args: []string{"-u", "ak", "-p", "sk", "-b", "photos", "-g", "eu-west-1", "-e", "http://minio:9000"},
			mut: func(c *Config) {
				c.S3AccessKey = "ak"
				c.S3SecretKey = "sk"
				c.S3Bucket = "photos"
				c.S3Region = "eu-west-1"
				c.S3BaseEndpoint = "http://minio:9000"
			},
		},
		{
			name: "unknown flags are ignored",
			args: []string{"-test.v", "--otel", "http://c:4318", "-log-level=debug"},
			mut: func(c *Config) {
				c.OTelEndpoint = "http://c:4318"
				c.LogLevel = "debug"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaults()
			require.NoError(t, parseFlags(&c, tt.args))

			want := defaults()
			tt.mut(&want)
			assert.Empty(t, cmp.Diff(want, c))
		})
	}

	c := defaults()
	assert.Error(t, parseFlags(&c, []string{"-t", "soon"}))
}

func TestParseEnv(t *testing.T) {
	t.Setenv("BABYLOG_GRPC_ADDR", ":8000")
	t.Setenv("BABYLOG_MEMORY", "true")
	t.Setenv("BABYLOG_TOKEN_VALIDITY", "1h")

	c := defaults()
	require.NoError(t, parseEnv(&c))
	assert.Equal(t, ":8000", c.EndpointAddrGRPC)
	assert.True(t, c.UseMemoryStore)
	assert.Equal(t, time.Hour, c.TokenValidityDuration)

	t.Setenv("BABYLOG_MEMORY", "maybe")
	assert.Error(t, parseEnv(&c))
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	envFile := writeFile(t, "server.env", "BABYLOG_SECRET_KEY=from-dotenv\nBABYLOG_S3_BUCKET=dotenv-bucket\n")
	jsonFile := writeFile(t, "server.json", `{"s3_bucket": "json-bucket", "s3_region": "json-region", "endpoint_addr_grpc": ":1"}`)
	t.Setenv("BABYLOG_S3_REGION", "env-region")
	t.Cleanup(func() {
		_ = os.Unsetenv("BABYLOG_SECRET_KEY")
		_ = os.Unsetenv("BABYLOG_S3_BUCKET")
	})

	cfg, err := LoadConfig([]string{"-env-file", envFile, "-c", jsonFile, "-a", ":2"})
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", cfg.SecretKey)
	assert.Equal(t, "dotenv-bucket", cfg.S3Bucket, "env (from .env) beats json")
	assert.Equal(t, "env-region", cfg.S3Region)
	assert.Equal(t, ":2", cfg.EndpointAddrGRPC, "flags win")
}

func TestValidate(t *testing.T) {
	c := defaults()
	c.SecretKey = ""
	assert.Error(t, c.Validate())

	c = defaults()
	c.DatabaseDSN = ""
	assert.Error(t, c.Validate())
	c.UseMemoryStore = true
	assert.NoError(t, c.Validate())

	c.TokenValidityDuration = 0
	assert.Error(t, c.Validate())
}

func TestLoadConfig_InvalidIsRejected(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := LoadConfig([]string{"-s="})
	assert.Error(t, err)
}
