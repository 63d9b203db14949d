package server

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/babylog/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func memoryConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.UseMemoryStore = true
	cfg.EndpointAddrGRPC = "127.0.0.1:0"
	return cfg
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	logs := &syncBuffer{}
	app, err := NewApp(context.Background(), memoryConfig(), logs)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "Starting gRPC server")
	}, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.Contains(t, logs.String(), `"app":"babylog-server"`)
}

func TestApp_RunReportsListenError(t *testing.T) {
	cfg := memoryConfig()
	cfg.S3Bucket = ""
	cfg.EndpointAddrGRPC = "127.0.0.1:99999"

	app, err := NewApp(context.Background(), cfg, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Error(t, app.Run(context.Background()))
}

func TestNewApp_DatabaseFailure(t *testing.T) {
	orig := openDB
	t.Cleanup(func() { openDB = orig })
	openDB = func(context.Context, string, string, time.Duration) (*sql.DB, error) {
		return nil, errors.New("connection refused")
	}

	cfg := memoryConfig()
	cfg.UseMemoryStore = false
	_, err := NewApp(context.Background(), cfg, &bytes.Buffer{})
	assert.ErrorContains(t, err, "db init error: connection refused")
}
