// Package server wires configuration, storage, services and transports
// into a runnable passkeeper server.
package server

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/passkeeper/internal/cryptox"
	"github.com/dmitrijs2005/passkeeper/internal/logging"
	"github.com/dmitrijs2005/passkeeper/internal/server/auth"
	"github.com/dmitrijs2005/passkeeper/internal/server/cleanup"
	"github.com/dmitrijs2005/passkeeper/internal/server/config"
	"github.com/dmitrijs2005/passkeeper/internal/server/httpserver"
	"github.com/dmitrijs2005/passkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/passkeeper/internal/server/services"
	"golang.org/x/sync/errgroup"
)

// openStore is a seam for tests.
var openStore = repomanager.Open

type App struct {
	config     *config.Config
	logger     logging.Logger
	store      *repomanager.Store
	httpServer *httpserver.Server
	cleaner    *cleanup.Worker
}

// NewApp validates c, opens the store and builds the services. The caller
// must eventually call Run, which closes the store on exit.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	master, err := cryptox.ParseMasterKey(c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	keys, err := cryptox.NewKeyRing(master)
	if err != nil {
		return nil, fmt.Errorf("key init error: %w", err)
	}

	store, err := openStore(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if store.Conn == nil {
		logger.Warn(ctx, "Using in-memory store, data will not survive a restart")
	}

	us, err := services.NewUserService(store, auth.NewBcryptHasher(c.BcryptCost), c)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("user service init error: %w", err)
	}
	cs := services.NewCredentialService(store, keys, c)
	es := services.NewExportService(cs, c)

	return &App{
		config:     c,
		logger:     logger,
		store:      store,
		httpServer: httpserver.NewServer(c, logger, us, cs, es),
		cleaner:    cleanup.NewWorker(us, c.CleanupInterval, logger),
	}, nil
}

// Run serves until ctx is canceled or a component fails.
func (app *App) Run(ctx context.Context) error {
	app.logger.Info(ctx, "Starting app...")

	defer func() {
		if err := app.store.Close(); err != nil {
			app.logger.Error(context.Background(), "db close error", "error", err)
		}
	}()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.httpServer.Run(ctx)
	})
	g.Go(func() error {
		return app.cleaner.Run(ctx)
	})

	err := g.Wait()
	app.logger.Info(context.Background(), "App stopped")
	return err
}
