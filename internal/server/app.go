// Package server wires the devsync backend together: PostgreSQL storage,
// avatar object storage, the REST API and the notification hub.
package server

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/devsync/internal/logging"
	"github.com/dmitrijs2005/devsync/internal/server/config"
	"github.com/dmitrijs2005/devsync/internal/server/httpapi"
	"github.com/dmitrijs2005/devsync/internal/server/notify"
	"github.com/dmitrijs2005/devsync/internal/server/objectstore"
	"github.com/dmitrijs2005/devsync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/devsync/internal/server/services"
	"golang.org/x/sync/errgroup"
)

var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}
	newRepositoryManager = repomanager.NewPostgresRepositoryManager
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	hub    *notify.Hub
	server *httpapi.Server
}

// NewApp connects to the database, applies migrations and builds the HTTP
// server. The returned App owns the database handle.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	us := services.NewUserService(db, rm, c)
	ds := services.NewDeveloperService(db, rm, objectstore.NewS3Store(c), logger)
	hub := notify.NewHub(logger)
	srv := httpapi.NewServer(c.HTTPAddr, logger, us, ds, hub, int64(c.MaxAvatarSize))

	return &App{config: c, logger: logger, db: db, hub: hub, server: srv}, nil
}

// Run serves until ctx is done or one of the components fails.
func (app *App) Run(ctx context.Context) error {
	app.logger.Info(ctx, "Starting app...")
	defer func() {
		if err := app.db.Close(); err != nil {
			app.logger.Warn(ctx, "db close error", "error", err)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.hub.Run(gctx) })
	g.Go(func() error { return app.server.Run(gctx) })

	err := g.Wait()
	app.logger.Info(ctx, "App stopped")
	return err
}
