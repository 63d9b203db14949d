package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/babylog/internal/client/client"
	"github.com/dmitrijs2005/babylog/internal/client/config"
	"github.com/dmitrijs2005/babylog/internal/client/models"
	"github.com/dmitrijs2005/babylog/internal/client/repositories/kv"
	"github.com/dmitrijs2005/babylog/internal/client/services"
	"github.com/dmitrijs2005/babylog/internal/common"
	"github.com/dmitrijs2005/babylog/internal/logging"
)

// App is the state shared by all commands of one process.
type App struct {
	args   []string
	cfg    *config.Config
	dl     *services.DataLayer
	log    logging.Logger
	remote client.Client
	db     *sql.DB
	reader *bufio.Reader
	stderr io.Writer
}

func NewApp(args []string, stdin io.Reader, stderr io.Writer) *App {
	return &App{args: args, reader: bufio.NewReader(stdin), stderr: stderr}
}

// open loads configuration and the data layer unless already done.
func (a *App) open(ctx context.Context) error {
	if a.dl != nil {
		return nil
	}

	cfg, err := config.LoadConfig(a.args)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	log := logging.New(a.stderr, cfg.LogFormat, cfg.LogLevel).With("app", "babylog")

	db, err := kv.OpenSQLite(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", cfg.DBPath, err)
	}
	remote, err := client.NewGRPCClient(cfg.ServerEndpointAddr, cfg.RequestTimeout)
	if err != nil {
		_ = db.Close()
		return err
	}

	dl, err := services.NewDataLayer(services.Deps{
		Store:    kv.NewSQLiteStore(db),
		Location: loc,
		Logger:   log,
		Remote:   remote,
	})
	if err != nil {
		_ = remote.Close()
		_ = db.Close()
		return err
	}
	dl.Bootstrap(ctx)

	a.cfg, a.log, a.db, a.remote, a.dl = cfg, log, db, remote, dl
	log.Debug(ctx, "data layer ready", "db", cfg.DBPath, "tz", loc.String())
	return nil
}

func (a *App) Close() error {
	var errs []error
	if a.remote != nil {
		errs = append(errs, a.remote.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

// activeProfile returns the active profile or a hint on how to create one.
func (a *App) activeProfile(ctx context.Context) (models.BabyProfile, error) {
	p, ok := a.dl.ActiveBabyProfile(ctx)
	if !ok {
		return models.BabyProfile{}, fmt.Errorf("%w: add one with 'babylog profile add NAME --dob YYYY-MM-DD'", common.ErrNoProfile)
	}
	return p, nil
}

func (a *App) preferences(ctx context.Context) models.Preferences {
	return a.dl.LoadPreferences(ctx)
}

// status renders the shell prompt decoration: active baby and running timers.
func (a *App) status(ctx context.Context) string {
	if a.dl == nil {
		return ""
	}
	p, ok := a.dl.ActiveBabyProfile(ctx)
	if !ok {
		return ""
	}
	s := p.Name
	if m, running := a.dl.Elapsed(ctx, models.TimerKindSleep); running {
		s += fmt.Sprintf(", sleeping %dm", m)
	}
	if m, running := a.dl.Elapsed(ctx, models.TimerKindBreast); running {
		s += fmt.Sprintf(", feeding %dm", m)
	}
	return fmt.Sprintf("(%s)", s)
}
