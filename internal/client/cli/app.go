package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/devsync/internal/client/client"
	"github.com/dmitrijs2005/devsync/internal/client/config"
	"github.com/dmitrijs2005/devsync/internal/client/reconcile"
	"github.com/dmitrijs2005/devsync/internal/client/services"
	"github.com/dmitrijs2005/devsync/internal/client/signal"
	"github.com/dmitrijs2005/devsync/internal/client/storage"
	"github.com/dmitrijs2005/devsync/internal/logging"
)

type Mode string

const (
	ModeOffline  Mode = "offline"
	ModeOnline   Mode = "online"
	ModeDisabled Mode = "disabled"
)

type App struct {
	config      *config.Config
	log         logging.Logger
	db          *sql.DB
	authService services.AuthService
	devService  services.DeveloperService

	// background loops started after a successful login
	runners  []func(ctx context.Context)
	stopSync context.CancelFunc
	wg       sync.WaitGroup

	mu       sync.RWMutex
	Mode     Mode
	userName string
	loggedIn bool

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config, log logging.Logger) (*App, error) {
	ctx := context.Background()

	db, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	session := storage.NewSession(db)
	apiClient, err := client.NewHTTPClient(c.APIBaseURL, c.RequestTimeout, session)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	ws := signal.NewWebSocket(c.NotificationsURL,
		signal.WithReconnectDelay(c.ReconnectDelay),
		signal.WithTokenSource(session),
		signal.WithLogger(log.With("module", "signal")),
	)

	app := &App{
		config:      c,
		log:         log,
		db:          db,
		authService: services.NewAuthService(apiClient, db),
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}

	engine := reconcile.NewEngine(apiClient, storage.NewCache(db), storage.NewQueue(db), ws,
		reconcile.WithPageSize(c.PageSize),
		reconcile.WithRequestTimeout(c.RequestTimeout),
		reconcile.WithDrainHook(app.reportDrain),
		reconcile.WithLogger(log.With("module", "reconcile")),
	)
	app.devService = services.NewDeveloperService(engine, apiClient)
	app.runners = []func(context.Context){ws.Run, engine.Run}

	return app, nil
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.Mode != mode
	a.Mode = mode
	a.mu.Unlock()

	if changed {
		a.logger().Info(context.Background(), "switched mode", "mode", string(mode))
	}
}

func (a *App) mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.Mode
}

func (a *App) logger() logging.Logger {
	if a.log == nil {
		return logging.Discard()
	}
	return a.log
}

func (a *App) writer() io.Writer {
	if a.out == nil {
		return io.Discard
	}
	return a.out
}

func (a *App) isLoggedIn() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loggedIn
}

func (a *App) setSession(userName string, loggedIn bool) {
	a.mu.Lock()
	a.userName = userName
	a.loggedIn = loggedIn
	a.mu.Unlock()
}

func (a *App) getStatus() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s := ""
	if a.userName != "" {
		s = a.userName + " "
	}
	if a.Mode != "" {
		s = s + string(a.Mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Run logs in, starts the connectivity watcher and blocks in the REPL until
// the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.close()

	printlnFn("Welcome to devsync CLI (type 'help' for commands)")
	_ = a.Login(ctx)

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) close() {
	a.stopBackground()
	if a.db != nil {
		_ = a.db.Close()
	}
}

// startBackground launches the sync loops for the signed-in user. Calling it
// again restarts them.
func (a *App) startBackground(ctx context.Context) {
	a.stopBackground()
	if len(a.runners) == 0 {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	a.stopSync = cancel
	for _, run := range a.runners {
		a.wg.Add(1)
		go func(run func(context.Context)) {
			defer a.wg.Done()
			run(runCtx)
		}(run)
	}
}

func (a *App) stopBackground() {
	if a.stopSync == nil {
		return
	}
	a.stopSync()
	a.wg.Wait()
	a.stopSync = nil
}

func (a *App) reportDrain(r reconcile.DrainReport) {
	msg := fmt.Sprintf("Synced %d queued developer(s)", r.Submitted)
	if r.Failed > 0 {
		msg += fmt.Sprintf(", %d rejected", r.Failed)
	}
	if r.Remaining > 0 {
		msg += fmt.Sprintf(", %d still pending", r.Remaining)
	}
	fmt.Fprintln(a.writer(), msg)
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	if !a.isLoggedIn() {
		return
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.authService.Ping(pingCtx)
	cancel()

	if err != nil {
		if a.mode() == ModeOnline {
			a.setMode(ModeOffline)
		}
		return
	}
	if a.mode() != ModeOnline {
		a.setMode(ModeOnline)
	}
}
