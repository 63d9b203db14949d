// Package server wires the babylog sync server: storage, photo presigning,
// the broker, the sync service and the gRPC endpoint.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/babylog/internal/dbx"
	"github.com/dmitrijs2005/babylog/internal/logging"
	"github.com/dmitrijs2005/babylog/internal/server/broker"
	"github.com/dmitrijs2005/babylog/internal/server/config"
	gs "github.com/dmitrijs2005/babylog/internal/server/grpc"
	"github.com/dmitrijs2005/babylog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/babylog/internal/server/services"
	"github.com/dmitrijs2005/babylog/internal/server/storage"
	"github.com/dmitrijs2005/babylog/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

const (
	serviceName     = "babylog-server"
	dbPingTimeout   = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

// openDB is a seam for tests.
var openDB = dbx.Open

type App struct {
	config *config.Config
	logger logging.Logger
	repos  repomanager.RepositoryManager
	grpc   *gs.GRPCServer
}

// NewApp opens storage and builds the service graph. Logs go to w as JSON.
func NewApp(ctx context.Context, cfg *config.Config, w io.Writer) (*App, error) {
	logger := logging.New(w, "json", cfg.LogLevel).With("app", serviceName)

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var photos storage.PhotoStore
	if cfg.S3Bucket != "" {
		photos, err = storage.NewS3PhotoStore(ctx, storage.S3Options{
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
		})
		if err != nil {
			_ = repos.Close()
			return nil, fmt.Errorf("photo storage: %w", err)
		}
	}

	sync := services.NewSyncService(repos, broker.New(broker.DefaultBuffer), services.Options{
		SecretKey:     []byte(cfg.SecretKey),
		TokenValidity: cfg.TokenValidityDuration,
		Logger:        logger,
		Photos:        photos,
	})

	return &App{
		config: cfg,
		logger: logger,
		repos:  repos,
		grpc:   gs.NewGRPCServer(cfg.EndpointAddrGRPC, logger, sync),
	}, nil
}

func openRepositories(ctx context.Context, cfg *config.Config) (repomanager.RepositoryManager, error) {
	if cfg.UseMemoryStore {
		return repomanager.NewMemoryRepositoryManager(), nil
	}

	db, err := openDB(ctx, repomanager.DriverName, cfg.DatabaseDSN, dbPingTimeout)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	repos := repomanager.NewPostgresRepositoryManager(db)
	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close()
		return nil, err
	}
	return repos, nil
}

// Run serves until ctx is cancelled or the gRPC server fails, then flushes
// traces and closes storage.
func (app *App) Run(ctx context.Context) error {
	shutdownTracing, err := telemetry.Setup(ctx, serviceName, app.config.OTelEndpoint)
	if err != nil {
		app.logger.Warn(ctx, "tracing disabled", "error", err)
	}

	app.logger.Info(ctx, "Starting app...", "memory", app.config.UseMemoryStore)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.grpc.Run(gctx)
	})
	runErr := g.Wait()

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	err = errors.Join(runErr, shutdownTracing(stopCtx), app.repos.Close())

	app.logger.Info(ctx, "App stopped")
	return err
}
