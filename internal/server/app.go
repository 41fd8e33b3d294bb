// Package server wires configuration, storage, services and the network
// listeners of the finance tracker into one App.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/fintracker/internal/cryptox"
	"github.com/dmitrijs2005/fintracker/internal/dbx"
	"github.com/dmitrijs2005/fintracker/internal/logging"
	"github.com/dmitrijs2005/fintracker/internal/server/archive"
	"github.com/dmitrijs2005/fintracker/internal/server/config"
	"github.com/dmitrijs2005/fintracker/internal/server/httpapi"
	"github.com/dmitrijs2005/fintracker/internal/server/mailer"
	"github.com/dmitrijs2005/fintracker/internal/server/repositories/memory"
	"github.com/dmitrijs2005/fintracker/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fintracker/internal/server/services"

	gs "github.com/dmitrijs2005/fintracker/internal/server/grpc"
)

type App struct {
	config *config.Config
	logger logging.Logger

	pool *dbx.Pool
	db   *sql.DB
	deps services.Deps

	Auth      *services.AuthService
	Workspace *services.WorkspaceService
	Items     *services.ItemService
	Sharing   *services.SharingService

	cancel context.CancelFunc
	wg     sync.WaitGroup
	failed chan struct{}
	once   sync.Once
}

// NewApp opens storage, applies migrations and builds the services. It does
// not start any listener.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(os.Stdout, c.LogLevel, c.LogFormat).With("app", "fintracker")
	app := &App{config: c, logger: logger, failed: make(chan struct{})}

	if err := app.initStorage(ctx); err != nil {
		return nil, err
	}

	codec, err := cryptox.NewEmailCodec(c.EmailEncryptionKey, c.EmailHMACKey)
	if err != nil {
		app.closeStorage()
		return nil, fmt.Errorf("email codec: %w", err)
	}

	var m mailer.Mailer
	if c.IsProduction() {
		m = mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     c.SMTPHost,
			Port:     c.SMTPPort,
			User:     c.SMTPUser,
			Password: c.SMTPPassword,
			From:     c.EmailFrom,
		})
	} else {
		m = mailer.NewLogMailer(logger)
	}

	var store archive.Store
	if c.ArchiveEnabled {
		s3, err := archive.NewS3Store(ctx, archive.Settings{
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
		})
		if err != nil {
			app.closeStorage()
			return nil, fmt.Errorf("archive init error: %w", err)
		}
		store = s3
	}

	app.Auth, err = services.NewAuthService(app.deps, c, codec, m)
	if err != nil {
		app.closeStorage()
		return nil, err
	}
	app.Workspace = services.NewWorkspaceService(app.deps, store)
	app.Items = services.NewItemService(app.deps)
	app.Sharing = services.NewSharingService(app.deps)

	return app, nil
}

func (app *App) initStorage(ctx context.Context) error {
	switch app.config.Storage {
	case config.StorageMemory:
		app.logger.Warn(ctx, "using in-memory storage, data is lost on exit")
		store := memory.NewStore()
		app.deps = services.Deps{
			Tx:    store,
			Repos: memory.NewManager(store),
			Log:   app.logger,
		}
		return nil
	default:
		app.pool = dbx.NewPool("pgx")
		db, err := app.pool.Open(ctx, app.config.DatabaseDSN)
		if err != nil {
			return fmt.Errorf("db init error: %w", err)
		}
		repos := repomanager.NewPostgresRepositoryManager()
		if err := repos.RunMigrations(ctx, db); err != nil {
			_ = app.pool.CloseAll()
			return fmt.Errorf("migrations: %w", err)
		}
		app.db = db
		app.deps = services.Deps{
			DB:    db,
			Tx:    dbx.SQLRunner{DB: db},
			Repos: repos,
			Log:   app.logger,
		}
		return nil
	}
}

func (app *App) closeStorage() {
	if app.pool != nil {
		if err := app.pool.CloseAll(); err != nil {
			app.logger.Error(context.Background(), "closing database", "error", err)
		}
	}
}

// Logger returns the application logger.
func (app *App) Logger() logging.Logger {
	return app.logger
}

// Failed is closed when a listener stops with an error.
func (app *App) Failed() <-chan struct{} {
	return app.failed
}

func (app *App) fail(ctx context.Context, component string, err error) {
	app.logger.Error(ctx, "component failed", "component", component, "error", err)
	app.once.Do(func() { close(app.failed) })
}

// pinger returns nil for memory storage so health checks always pass.
func (app *App) pinger() gs.Pinger {
	if app.db == nil {
		return nil
	}
	return app.db
}

// Start launches the HTTP API, the gRPC health server and the reset token
// janitor. They run until Stop.
func (app *App) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	app.cancel = cancel

	app.logger.Info(ctx, "Starting app...", "env", app.config.Env, "storage", app.config.Storage)

	opts := httpapi.Options{
		Address:        app.config.HTTPAddr,
		Production:     app.config.IsProduction(),
		AllowedOrigins: app.config.AllowedOrigins,
		RateLimit:      app.config.RateLimitEnabled,
	}
	if app.db != nil {
		opts.DB = app.db
	}
	api := httpapi.NewServer(opts, app.logger, app.Auth, app.Workspace, app.Items, app.Sharing)
	health := gs.NewHealthServer(app.config.GRPCHealthAddr, app.logger, app.pinger(), 5*time.Second)

	app.wg.Add(3)
	go func() {
		defer app.wg.Done()
		if err := api.Run(ctx); err != nil {
			app.fail(ctx, "http", err)
		}
	}()
	go func() {
		defer app.wg.Done()
		if err := health.Run(ctx); err != nil {
			app.fail(ctx, "grpc_health", err)
		}
	}()
	go func() {
		defer app.wg.Done()
		app.runJanitor(ctx)
	}()

	return nil
}

// runJanitor deletes expired password reset tokens on every tick.
func (app *App) runJanitor(ctx context.Context) {
	interval := app.config.JanitorInterval
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := app.Auth.PurgeExpiredResetTokens(ctx)
			if err != nil {
				app.logger.Warn(ctx, "reset token cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Debug(ctx, "reset tokens purged", "count", n)
			}
		}
	}
}

// Stop cancels the listeners, waits for them within ctx and closes storage.
func (app *App) Stop(ctx context.Context) error {
	if app.cancel != nil {
		app.cancel()
	}

	done := make(chan struct{})
	go func() {
		app.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = errors.New("timed out waiting for listeners to stop")
	}

	if app.pool != nil {
		err = errors.Join(err, app.pool.CloseAll())
	}
	app.logger.Info(context.Background(), "App stopped")
	return err
}
